package auction_test

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/kurumiimari/vickrey/ledger"
	"github.com/stretchr/testify/require"
	"testing"
)

const startingBalance = 5000

var (
	alice = auction.NewAddressFromSeed([]byte("alice"))
	bob   = auction.NewAddressFromSeed([]byte("bob"))
	carol = auction.NewAddressFromSeed([]byte("carol"))
	house = auction.NewAddressFromSeed([]byte("house"))
)

type harness struct {
	t      *testing.T
	l      *ledger.MemLedger
	escrow *auction.Address
	e      *auction.Engine
}

func newHarness(t *testing.T, opts ...auction.EngineOption) *harness {
	l := ledger.NewMemLedger()
	escrow := auction.EscrowAddress(auction.AuctionID(t.Name()))
	for _, addr := range []*auction.Address{alice, bob, carol} {
		l.Credit(addr, startingBalance)
	}
	return &harness{
		t:      t,
		l:      l,
		escrow: escrow,
		e:      auction.NewEngine(auction.ParamsRegtest, l.Account(escrow), opts...),
	}
}

func nonce(seed byte) []byte {
	out := make([]byte, auction.NonceSize)
	for i := range out {
		out[i] = seed + byte(i)
	}
	return out
}

func commit(bid uint64, seed byte) gcrypto.Hash {
	return auction.CreateCommitment(bid, nonce(seed))
}

func (h *harness) submit(sender *auction.Address, value uint64, commitment gcrypto.Hash) (int, error) {
	var idx int
	err := h.l.Call(sender, h.escrow, value, func(msg *auction.Msg) error {
		var err error
		idx, err = h.e.SubmitBidder(msg, commitment)
		return err
	})
	return idx, err
}

func (h *harness) reveal(sender *auction.Address, value uint64, bid uint64, seed byte) error {
	return h.l.Call(sender, h.escrow, value, func(msg *auction.Msg) error {
		return h.e.RevealBid(msg, bid, nonce(seed))
	})
}

func (h *harness) settle(sender *auction.Address) (*auction.Outcome, error) {
	var out *auction.Outcome
	err := h.l.Call(sender, h.escrow, 0, func(msg *auction.Msg) error {
		var err error
		out, err = h.e.Settle(msg)
		return err
	})
	return out, err
}

// admitBoth admits alice and bob at the current height.
func (h *harness) admitBoth(aliceBid, bobBid uint64) {
	idx, err := h.submit(alice, auction.MaxBid, commit(aliceBid, 1))
	require.NoError(h.t, err)
	require.Equal(h.t, 0, idx)
	idx, err = h.submit(bob, auction.MaxBid, commit(bobBid, 2))
	require.NoError(h.t, err)
	require.Equal(h.t, 1, idx)
}

func (h *harness) requireBalance(addr *auction.Address, exp uint64) {
	require.EqualValues(h.t, exp, h.l.Balance(addr))
}

// requireConserved checks that no value was created or destroyed across
// the participants, the escrow and the beneficiary.
func (h *harness) requireConserved() {
	var total uint64
	for _, addr := range []*auction.Address{alice, bob, carol, house, h.escrow} {
		total += h.l.Balance(addr)
	}
	require.EqualValues(h.t, 3*startingBalance, total)
}
