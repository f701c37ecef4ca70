package cmd

import (
	"fmt"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/spf13/cobra"
)

var auctionCmd = &cobra.Command{
	Use:   "auction",
	Short: "Creates and inspects auctions",
}

var auctionCreateCmd = &cobra.Command{
	Use:   "create <name> [beneficiary]",
	Short: "Creates an auction",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var beneficiary string
		if len(args) == 2 {
			beneficiary = args[1]
		}
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.CreateAuction(args[0], beneficiary)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var auctionInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Gets an auction's state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.GetAuction(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

var auctionListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists all auctions",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.GetAuctions()
		if err != nil {
			return err
		}
		for _, a := range res {
			fmt.Printf("%s\t%s\t%d/%d bidders\n", a.Name, a.Phase, a.BidderCount, auction.MaxBidders)
		}
		return nil
	},
}

var auctionTransfersCmd = &cobra.Command{
	Use:   "transfers <name>",
	Short: "Lists an auction's escrow transfers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		res, err := client.GetAuctionTransfers(args[0])
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	auctionCmd.AddCommand(auctionCreateCmd)
	auctionCmd.AddCommand(auctionInfoCmd)
	auctionCmd.AddCommand(auctionListCmd)
	auctionCmd.AddCommand(auctionTransfersCmd)
	rootCmd.AddCommand(auctionCmd)
}
