package cmd

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/ledger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var withhold string

type demoResult struct {
	Outcome  *auction.Outcome  `json:"outcome"`
	Error    string            `json:"error,omitempty"`
	Balances map[string]uint64 `json:"balances"`
	Journal  []*ledger.Entry   `json:"journal"`
}

var demoCmd = &cobra.Command{
	Use:   "demo [bid-a] [bid-b]",
	Short: "Runs a complete two-party auction against an in-memory ledger",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bids := []uint64{600, 400}
		for i, arg := range args {
			bid, err := uint64Arg(arg, "bid")
			if err != nil {
				return err
			}
			bids[i] = bid
		}
		res, err := runDemo(bids[0], bids[1], withhold)
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

// runDemo plays one auction between "alice" and "bob" with "house" as the
// beneficiary. withhold names a bidder who never reveals.
func runDemo(bidA, bidB uint64, withhold string) (*demoResult, error) {
	switch withhold {
	case "", "alice", "bob":
	default:
		return nil, errors.Errorf("cannot withhold %q, must be alice or bob", withhold)
	}

	params := auction.ParamsRegtest
	names := []string{"alice", "bob", "house"}
	addrs := make(map[string]*auction.Address)
	l := ledger.NewMemLedger()
	for _, name := range names {
		addrs[name] = auction.NewAddressFromSeed([]byte(name))
		if name != "house" {
			l.Credit(addrs[name], params.MaxBid)
		}
	}

	escrow := auction.EscrowAddress(auction.AuctionID("demo"))
	engine := auction.NewEngine(params, l.Account(escrow), auction.WithBeneficiary(addrs["house"]))

	bids := map[string]uint64{
		"alice": bidA,
		"bob":   bidB,
	}
	nonces := make(map[string][]byte)
	for _, name := range []string{"alice", "bob"} {
		nonces[name] = auction.NewNonce()
		commitment := auction.CreateCommitment(bids[name], nonces[name])
		err := l.Call(addrs[name], escrow, params.MaxBid, func(msg *auction.Msg) error {
			_, err := engine.SubmitBidder(msg, commitment)
			return err
		})
		if err != nil {
			return nil, errors.Wrapf(err, "error submitting %s", name)
		}
	}

	l.Mine(params.BidDuration)
	for _, name := range []string{"alice", "bob"} {
		if name == withhold {
			continue
		}
		err := l.Call(addrs[name], escrow, 0, func(msg *auction.Msg) error {
			return engine.RevealBid(msg, bids[name], nonces[name])
		})
		if err != nil {
			return nil, errors.Wrapf(err, "error revealing %s", name)
		}
	}

	l.Mine(params.CheckDuration)
	var out *auction.Outcome
	settleErr := l.Call(addrs["house"], escrow, 0, func(msg *auction.Msg) error {
		var err error
		out, err = engine.Settle(msg)
		return err
	})
	if out == nil {
		return nil, errors.Wrap(settleErr, "error settling")
	}

	res := &demoResult{
		Outcome:  out,
		Balances: make(map[string]uint64),
		Journal:  l.Journal(),
	}
	if settleErr != nil {
		res.Error = auction.ErrorCode(settleErr)
	}
	for _, name := range names {
		res.Balances[name] = l.Balance(addrs[name])
	}
	res.Balances["escrow"] = l.Balance(escrow)
	return res, nil
}

func init() {
	demoCmd.Flags().StringVar(&withhold, "withhold", "", "Name of a bidder (alice or bob) who never reveals")
	rootCmd.AddCommand(demoCmd)
}
