package cmd

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
)

var listOpt struct {
	status string
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "list locked conversions",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := getClient().R()
		if listOpt.status != "" {
			r.SetQueryParam("status", listOpt.status)
		}

		resp, err := call(cmd, r, http.MethodGet, "/locked-conversions")
		if err != nil {
			return err
		}

		return printJson(cmd, resp.Body())
	},
}

var transactionsOpt struct {
	wallet string
	limit  int
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "list ledger transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := getClient().R()
		if transactionsOpt.wallet != "" {
			r.SetQueryParam("wallet_id", transactionsOpt.wallet)
		}

		if transactionsOpt.limit > 0 {
			r.SetQueryParam("limit", strconv.Itoa(transactionsOpt.limit))
		}

		resp, err := call(cmd, r, http.MethodGet, "/transactions")
		if err != nil {
			return err
		}

		return printJson(cmd, resp.Body())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(transactionsCmd)

	listCmd.Flags().StringVar(&listOpt.status, "status", "", "ACTIVE or UNLOCKED")
	transactionsCmd.Flags().StringVar(&transactionsOpt.wallet, "wallet", "", "wallet id (optional)")
	transactionsCmd.Flags().IntVar(&transactionsOpt.limit, "limit", 0, "max transactions")
}
