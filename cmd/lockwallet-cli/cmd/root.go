package cmd

import (
	"encoding/json"
	"os"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/twitchtv/twirp"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lockwallet-cli",
	Short: "http cmd for lock-wallet service",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("endpoint", "l", "http://localhost:8080", "api endpoint")
	rootCmd.PersistentFlags().StringP("account", "a", "", "caller account id")
	rootCmd.PersistentFlags().String("account-header", "X-Account-Id", "header carrying the account id")
	viper.BindPFlag("endpoint", rootCmd.PersistentFlags().Lookup("endpoint"))
	viper.BindPFlag("account", rootCmd.PersistentFlags().Lookup("account"))
	viper.BindPFlag("account_header", rootCmd.PersistentFlags().Lookup("account-header"))
	viper.SetEnvPrefix("lockwallet")
	viper.AutomaticEnv()
}

func getClient() *resty.Client {
	return resty.New().
		SetBaseURL(viper.GetString("endpoint")+"/api").
		SetHeader(viper.GetString("account_header"), viper.GetString("account")).
		SetHeader("Accept", "application/json")
}

type twirpBody struct {
	Code string            `json:"code"`
	Msg  string            `json:"msg"`
	Meta map[string]string `json:"meta"`
}

// call runs the request and turns a non 2xx reply into a twirp error.
func call(cmd *cobra.Command, r *resty.Request, method, url string) (*resty.Response, error) {
	var body twirpBody
	resp, err := r.SetContext(cmd.Context()).SetError(&body).Execute(method, url)
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		if body.Code == "" {
			return nil, twirp.NewError(twirp.Unknown, resp.Status())
		}

		terr := twirp.NewError(twirp.ErrorCode(body.Code), body.Msg)
		for k, v := range body.Meta {
			terr = terr.WithMeta(k, v)
		}

		return nil, terr
	}

	return resp, nil
}

func printJson(cmd *cobra.Command, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	cmd.Println(string(b))
	return nil
}
