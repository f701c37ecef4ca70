package cmd

import (
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Inspects and funds accounts",
}

var accountInfoCmd = &cobra.Command{
	Use:   "info <address>",
	Short: "Gets an account's balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.GetAccount(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var accountTransfersCmd = &cobra.Command{
	Use:   "transfers <address>",
	Short: "Lists transfers to and from an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.GetAccountTransfers(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var accountFundCmd = &cobra.Command{
	Use:   "fund <address> <amount>",
	Short: "Mints test funds into an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := uint64Arg(args[1], "amount")
		if err != nil {
			return err
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.Fund(args[0], amount)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	accountCmd.AddCommand(accountInfoCmd)
	accountCmd.AddCommand(accountTransfersCmd)
	accountCmd.AddCommand(accountFundCmd)
	rootCmd.AddCommand(accountCmd)
}
