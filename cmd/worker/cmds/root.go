package cmds

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/pandodao/generic"
	"github.com/pandodao/lock-wallet/core"
	"github.com/pandodao/lock-wallet/worker/reconciler"
	"github.com/spf13/cobra"
)

type Cmd struct {
	Conversions core.ConversionStore
	Reconciler  *reconciler.Reconciler
}

func (c *Cmd) Run(ctx context.Context, args []string) error {
	root := &cobra.Command{
		Use:   "lock-wallet-worker",
		Short: "lock-wallet worker maintenance commands",
	}

	root.AddCommand(c.reconcileCmd())
	root.AddCommand(c.exportConversionsCmd())

	root.SetArgs(args)
	root.SetOut(os.Stdout)

	return root.ExecuteContext(ctx)
}

func (c *Cmd) reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "restore missing lock and unlock transactions once",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := c.Reconciler.RunOnce(cmd.Context())
			if err != nil {
				return err
			}

			return jsonPrint(cmd, map[string]int{"restored": n})
		},
	}
}

type conversionRow struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	Status         string    `json:"status"`
	SourceAmount   string    `json:"source_amount"`
	SourceCurrency string    `json:"source_currency"`
	TargetAmount   string    `json:"target_amount"`
	TargetCurrency string    `json:"target_currency"`
	UnlockDate     time.Time `json:"unlock_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func conversionRowFrom(c *core.LockedConversion) conversionRow {
	return conversionRow{
		ID:             c.ID,
		AccountID:      c.AccountID,
		Status:         string(c.Status),
		SourceAmount:   c.SourceAmount.String(),
		SourceCurrency: c.SourceCurrency,
		TargetAmount:   c.TargetAmount.String(),
		TargetCurrency: c.TargetCurrency,
		UnlockDate:     c.UnlockDate,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (c *Cmd) exportConversionsCmd() *cobra.Command {
	var since time.Duration

	cmd := &cobra.Command{
		Use:   "export-conversions",
		Short: "export locked conversions updated recently",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				from   = time.Now().Add(-since)
				after  string
				result []conversionRow
			)

			const limit = 500
			for {
				conversions, err := c.Conversions.ListUpdated(ctx, from, after, limit)
				if err != nil {
					return err
				}

				result = append(result, generic.MapSlice(conversions, conversionRowFrom)...)
				if len(conversions) < limit {
					break
				}

				last := conversions[len(conversions)-1]
				from, after = last.UpdatedAt, last.ID
			}

			return jsonPrint(cmd, result)
		},
	}

	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "look back window")
	return cmd
}

func jsonPrint(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
