package cmd

import (
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var lockOpt struct {
	SourceWalletID   string          `json:"source_wallet_id"`
	TargetWalletID   string          `json:"target_wallet_id"`
	SourceAmount     decimal.Decimal `json:"source_amount"`
	LockPeriodMonths int             `json:"lock_period_months"`

	amount string
}

// lockCmd represents the lock command
var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "lock an amount at the current exchange rate",
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := decimal.NewFromString(lockOpt.amount)
		if err != nil {
			return err
		}

		lockOpt.SourceAmount = amount

		resp, err := call(cmd, getClient().R().SetBody(lockOpt), http.MethodPost, "/locked-conversions")
		if err != nil {
			return err
		}

		return printJson(cmd, resp.Body())
	},
}

func init() {
	rootCmd.AddCommand(lockCmd)

	lockCmd.Flags().StringVar(&lockOpt.SourceWalletID, "from", "", "source wallet id")
	lockCmd.Flags().StringVar(&lockOpt.TargetWalletID, "to", "", "target wallet id")
	lockCmd.Flags().StringVar(&lockOpt.amount, "amount", "0", "source amount")
	lockCmd.Flags().IntVar(&lockOpt.LockPeriodMonths, "months", 1, "lock period in months")
}
