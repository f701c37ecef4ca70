package cmd

import (
	"encoding/hex"
	"fmt"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"strings"
)

var attachedValue uint64

type bidOut struct {
	Slot       int          `json:"slot"`
	Commitment gcrypto.Hash `json:"commitment"`
	Nonce      string       `json:"nonce"`
	Mnemonic   string       `json:"mnemonic"`
}

var bidCmd = &cobra.Command{
	Use:   "bid <auction> <sender> <bid>",
	Short: "Commits to a sealed bid",
	Long: "Commits to a sealed bid with a fresh random nonce. The nonce is needed to reveal " +
		"the bid later and is not stored anywhere else.",
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		bid, err := uint64Arg(args[2], "bid")
		if err != nil {
			return err
		}
		if bid > auction.MaxBid {
			return errors.Errorf("bids cannot exceed %d", auction.MaxBid)
		}
		value := attachedValue
		if value == 0 {
			value = auction.MaxBid
		}

		nonce := auction.NewNonce()
		mnemonic, err := auction.NonceMnemonic(nonce)
		if err != nil {
			return err
		}
		commitment := auction.CreateCommitment(bid, nonce)

		client, err := apiClient()
		if err != nil {
			return err
		}
		slot, err := client.Bid(args[0], args[1], value, commitment)
		if err != nil {
			return err
		}

		fmt.Println("Your bid has been committed. Store the nonce below; you will need it to reveal.")
		return printJSON(&bidOut{
			Slot:       slot,
			Commitment: commitment,
			Nonce:      hex.EncodeToString(nonce),
			Mnemonic:   mnemonic,
		})
	},
}

var revealCmd = &cobra.Command{
	Use:   "reveal <auction> <sender> <bid> <nonce>",
	Short: "Reveals a committed bid",
	Long:  "Reveals a committed bid. The nonce may be given as hex or as its 24-word mnemonic.",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		bid, err := uint64Arg(args[2], "bid")
		if err != nil {
			return err
		}
		nonce, err := parseNonce(args[3])
		if err != nil {
			return err
		}

		client, err := apiClient()
		if err != nil {
			return err
		}
		if err := client.Reveal(args[0], args[1], attachedValue, bid, nonce); err != nil {
			return err
		}
		fmt.Println("Bid revealed.")
		return nil
	},
}

var settleCmd = &cobra.Command{
	Use:   "settle <auction> <sender>",
	Short: "Settles an auction once its check window has closed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := apiClient()
		if err != nil {
			return err
		}
		out, err := client.Settle(args[0], args[1], attachedValue)
		if out == nil {
			return err
		}
		if err != nil {
			cmdLogger.Warning("settlement returned an outcome with an error", "err", err)
		}
		return printJSON(out)
	},
}

func parseNonce(in string) ([]byte, error) {
	if strings.Contains(strings.TrimSpace(in), " ") {
		return auction.NonceFromMnemonic(in)
	}
	nonce, err := hex.DecodeString(in)
	if err != nil {
		return nil, errors.Wrap(err, "invalid nonce hex")
	}
	if len(nonce) != auction.NonceSize {
		return nil, errors.Errorf("nonce must be %d bytes", auction.NonceSize)
	}
	return nonce, nil
}

func init() {
	bidCmd.Flags().Uint64Var(&attachedValue, "value", 0, "Value to attach; defaults to the required deposit")
	revealCmd.Flags().Uint64Var(&attachedValue, "value", 0, "Value to attach; it is returned")
	settleCmd.Flags().Uint64Var(&attachedValue, "value", 0, "Value to attach; it is returned")
	rootCmd.AddCommand(bidCmd)
	rootCmd.AddCommand(revealCmd)
	rootCmd.AddCommand(settleCmd)
}
