package cmd

import (
	"net/http"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "inspect a locked conversion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := getClient().R().SetPathParam("id", args[0])
		resp, err := call(cmd, r, http.MethodGet, "/locked-conversions/{id}")
		if err != nil {
			return err
		}

		return printJson(cmd, resp.Body())
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <id>",
	Short: "release a matured locked conversion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := getClient().R().SetPathParam("id", args[0])
		resp, err := call(cmd, r, http.MethodPost, "/locked-conversions/{id}/unlock")
		if err != nil {
			return err
		}

		return printJson(cmd, resp.Body())
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(unlockCmd)
}
