package cmd

import (
	"encoding/hex"
	"github.com/kurumiimari/vickrey"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var utilCmd = &cobra.Command{
	Use:   "util",
	Short: "Offline helpers",
}

type commitmentOut struct {
	Bid        uint64       `json:"bid"`
	Nonce      string       `json:"nonce"`
	Mnemonic   string       `json:"mnemonic"`
	Commitment gcrypto.Hash `json:"commitment"`
}

var utilCommitmentCmd = &cobra.Command{
	Use:   "commitment <bid> [nonce]",
	Short: "Computes a bid commitment, generating a nonce if none is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bid, err := uint64Arg(args[0], "bid")
		if err != nil {
			return err
		}
		var nonce []byte
		if len(args) == 2 {
			nonce, err = parseNonce(args[1])
			if err != nil {
				return err
			}
		} else {
			nonce = auction.NewNonce()
		}
		mnemonic, err := auction.NonceMnemonic(nonce)
		if err != nil {
			return err
		}
		return printJSON(&commitmentOut{
			Bid:        bid,
			Nonce:      hex.EncodeToString(nonce),
			Mnemonic:   mnemonic,
			Commitment: auction.CreateCommitment(bid, nonce),
		})
	},
}

type addressOut struct {
	Address string       `json:"address"`
	Hash    gcrypto.Hash `json:"hash"`
}

var utilEscrowCmd = &cobra.Command{
	Use:   "escrow <auction>",
	Short: "Prints the escrow address of an auction name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := auction.EscrowAddress(auction.AuctionID(args[0]))
		return printJSON(&addressOut{
			Address: addr.String(vickrey.Config.Params),
			Hash:    addr.Hash,
		})
	},
}

var utilAddressCmd = &cobra.Command{
	Use:   "address <seed>",
	Short: "Derives a test address from a seed string",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "" {
			return errors.New("seed cannot be empty")
		}
		addr := auction.NewAddressFromSeed([]byte(args[0]))
		return printJSON(&addressOut{
			Address: addr.String(vickrey.Config.Params),
			Hash:    addr.Hash,
		})
	},
}

func init() {
	utilCmd.AddCommand(utilCommitmentCmd)
	utilCmd.AddCommand(utilEscrowCmd)
	utilCmd.AddCommand(utilAddressCmd)
	rootCmd.AddCommand(utilCmd)
}
