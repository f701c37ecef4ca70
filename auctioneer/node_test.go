package auctioneer

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/kurumiimari/vickrey/ledgerdb"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gopkg.in/tomb.v2"
	"io/ioutil"
	"os"
	"testing"
)

var (
	alice = auction.NewAddressFromSeed([]byte("alice"))
	bob   = auction.NewAddressFromSeed([]byte("bob"))
	carol = auction.NewAddressFromSeed([]byte("carol"))
	house = auction.NewAddressFromSeed([]byte("house"))
)

type testNode struct {
	*Node
	tmb    *tomb.Tomb
	engine *ledgerdb.Engine
}

func startNode(t *testing.T, dir string, params *auction.Params) *testNode {
	engine, err := ledgerdb.NewEngine(dir)
	require.NoError(t, err)
	require.NoError(t, ledgerdb.MigrateDB(engine))

	tmb := new(tomb.Tomb)
	hm := NewHeightMonitor(tmb, engine, nil, 0)
	require.NoError(t, hm.Start())
	node := NewNode(tmb, params, engine, hm)
	require.NoError(t, node.Start())
	return &testNode{
		Node:   node,
		tmb:    tmb,
		engine: engine,
	}
}

func (n *testNode) stop(t *testing.T) {
	n.tmb.Kill(nil)
	require.NoError(t, n.tmb.Wait())
	require.NoError(t, n.engine.Close())
}

func setupNode(t *testing.T) (*testNode, func()) {
	dir, err := ioutil.TempDir("", "auctioneer_*")
	require.NoError(t, err)
	node := startNode(t, dir, auction.ParamsRegtest)
	return node, func() {
		node.stop(t)
		require.NoError(t, os.RemoveAll(dir))
	}
}

func testNonce(seed byte) []byte {
	out := make([]byte, auction.NonceSize)
	for i := range out {
		out[i] = seed ^ byte(i)
	}
	return out
}

func testCommit(bid uint64, seed byte) gcrypto.Hash {
	return auction.CreateCommitment(bid, testNonce(seed))
}

func requireBalance(t *testing.T, n *testNode, addr *auction.Address, exp uint64) {
	bal, err := n.Balance(addr)
	require.NoError(t, err)
	require.EqualValues(t, exp, bal)
}

func fundAll(t *testing.T, n *testNode) {
	for _, addr := range []*auction.Address{alice, bob, carol} {
		bal, err := n.Fund(addr, 5000)
		require.NoError(t, err)
		require.EqualValues(t, 5000, bal)
	}
}

func TestNode_FullAuction(t *testing.T) {
	n, done := setupNode(t)
	defer done()
	fundAll(t, n)

	info, err := n.CreateAuction("lot-1", house)
	require.NoError(t, err)
	require.Equal(t, auction.PhaseAdmitting, info.Phase)
	require.Equal(t, house.String(auction.ParamsRegtest), info.Beneficiary)
	escrow := auction.EscrowAddress(auction.AuctionID("lot-1"))
	require.Equal(t, escrow.String(auction.ParamsRegtest), info.Escrow)

	slot, err := n.Submit("lot-1", alice, 1500, testCommit(600, 1))
	require.NoError(t, err)
	require.Equal(t, 0, slot)
	requireBalance(t, n, alice, 4000)
	slot, err = n.Submit("lot-1", bob, 1000, testCommit(400, 2))
	require.NoError(t, err)
	require.Equal(t, 1, slot)
	requireBalance(t, n, escrow, 2000)

	_, err = n.Mine(auction.BidDuration)
	require.NoError(t, err)
	info, err = n.Auction("lot-1")
	require.NoError(t, err)
	require.Equal(t, auction.PhaseChecking, info.Phase)
	require.Nil(t, info.Slots[0].Bid)

	require.NoError(t, n.Reveal("lot-1", alice, 0, 600, testNonce(1)))
	require.NoError(t, n.Reveal("lot-1", bob, 0, 400, testNonce(2)))
	info, err = n.Auction("lot-1")
	require.NoError(t, err)
	require.EqualValues(t, 600, *info.Slots[0].Bid)
	require.Equal(t, auction.BidDuration, *info.CheckWindowStart)

	_, err = n.Settle("lot-1", carol, 0)
	require.True(t, errors.Is(err, auction.ErrTooEarly))

	_, err = n.Mine(auction.CheckDuration)
	require.NoError(t, err)
	out, err := n.Settle("lot-1", carol, 0)
	require.NoError(t, err)
	require.Equal(t, auction.OutcomeWinner, out.Kind)
	require.Equal(t, alice.String(auction.ParamsRegtest), out.Winner)
	require.EqualValues(t, 400, out.Price)
	require.Len(t, out.Transfers, 3)

	requireBalance(t, n, alice, 4600)
	requireBalance(t, n, bob, 5000)
	requireBalance(t, n, house, 400)
	requireBalance(t, n, escrow, 0)

	again, err := n.Settle("lot-1", bob, 0)
	require.True(t, errors.Is(err, auction.ErrAlreadySettled))
	require.Equal(t, out, again)
	requireBalance(t, n, bob, 5000)

	transfers, err := n.Transfers("lot-1")
	require.NoError(t, err)
	// two deposits, one excess return and three settlement payments
	require.Len(t, transfers, 6)
	require.Equal(t, ledgerdb.TransferDeposit, transfers[0].Kind)
	require.EqualValues(t, 1500, transfers[0].Amount)
	require.Equal(t, ledgerdb.TransferPayment, transfers[1].Kind)
	require.EqualValues(t, 500, transfers[1].Amount)

	info, err = n.Auction("lot-1")
	require.NoError(t, err)
	require.Equal(t, auction.PhaseSettled, info.Phase)
	require.Equal(t, out, info.Outcome)
}

func TestNode_RejectionsRefund(t *testing.T) {
	n, done := setupNode(t)
	defer done()
	fundAll(t, n)
	_, err := n.CreateAuction("lot-1", nil)
	require.NoError(t, err)

	_, err = n.Submit("lot-1", alice, 999, testCommit(600, 1))
	require.True(t, errors.Is(err, auction.ErrInsufficientFunds))
	requireBalance(t, n, alice, 5000)

	_, err = n.Submit("lot-1", alice, 1000, testCommit(600, 1))
	require.NoError(t, err)
	_, err = n.Submit("lot-1", bob, 1000, testCommit(400, 2))
	require.NoError(t, err)
	_, err = n.Submit("lot-1", carol, 1000, testCommit(300, 3))
	require.True(t, errors.Is(err, auction.ErrPoolFull))
	requireBalance(t, n, carol, 5000)

	err = n.Reveal("lot-1", alice, 0, 600, testNonce(1))
	require.True(t, errors.Is(err, auction.ErrTooEarly))
}

func TestNode_InsufficientBalance(t *testing.T) {
	n, done := setupNode(t)
	defer done()
	_, err := n.CreateAuction("lot-1", nil)
	require.NoError(t, err)
	_, err = n.Fund(alice, 500)
	require.NoError(t, err)

	_, err = n.Submit("lot-1", alice, 1000, testCommit(600, 1))
	require.True(t, errors.Is(err, ledgerdb.ErrInsufficientBalance))
	requireBalance(t, n, alice, 500)
	info, err := n.Auction("lot-1")
	require.NoError(t, err)
	require.Equal(t, 0, info.BidderCount)

	transfers, err := n.AccountTransfers(alice)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	require.Equal(t, ledgerdb.TransferFaucet, transfers[0].Kind)
}

func TestNode_CommitmentReuse(t *testing.T) {
	n, done := setupNode(t)
	defer done()
	fundAll(t, n)
	_, err := n.CreateAuction("lot-1", nil)
	require.NoError(t, err)
	_, err = n.CreateAuction("lot-2", nil)
	require.NoError(t, err)

	c := testCommit(600, 1)
	_, err = n.Submit("lot-1", alice, 1000, c)
	require.NoError(t, err)
	_, err = n.Submit("lot-2", bob, 1000, c)
	require.True(t, errors.Is(err, ErrCommitmentReused))
	requireBalance(t, n, bob, 5000)

	info, err := n.Auction("lot-2")
	require.NoError(t, err)
	require.Equal(t, 0, info.BidderCount)

	// A rejected commitment is not registered.
	_, err = n.Submit("lot-1", bob, 10, testCommit(1, 9))
	require.True(t, errors.Is(err, auction.ErrInsufficientFunds))
	_, err = n.Submit("lot-2", bob, 1000, testCommit(1, 9))
	require.NoError(t, err)
}

func TestNode_Restart(t *testing.T) {
	dir, err := ioutil.TempDir("", "auctioneer_*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	n := startNode(t, dir, auction.ParamsRegtest)
	fundAll(t, n)
	_, err = n.CreateAuction("lot-1", house)
	require.NoError(t, err)
	_, err = n.Submit("lot-1", alice, 1000, testCommit(600, 1))
	require.NoError(t, err)
	_, err = n.Submit("lot-1", bob, 1000, testCommit(400, 2))
	require.NoError(t, err)
	_, err = n.Mine(auction.BidDuration)
	require.NoError(t, err)
	require.NoError(t, n.Reveal("lot-1", alice, 0, 600, testNonce(1)))
	n.stop(t)

	n = startNode(t, dir, auction.ParamsRegtest)
	defer n.stop(t)
	require.Equal(t, auction.BidDuration, n.Status().Height)
	require.Equal(t, 1, n.Status().Auctions)

	info, err := n.Auction("lot-1")
	require.NoError(t, err)
	require.Equal(t, 2, info.BidderCount)
	require.True(t, info.Slots[0].Revealed)
	require.False(t, info.Slots[1].Revealed)
	require.Equal(t, house.String(auction.ParamsRegtest), info.Beneficiary)

	_, err = n.Submit("lot-1", carol, 1000, testCommit(600, 1))
	require.True(t, errors.Is(err, ErrCommitmentReused))

	require.NoError(t, n.Reveal("lot-1", bob, 0, 400, testNonce(2)))
	_, err = n.Mine(auction.CheckDuration)
	require.NoError(t, err)
	out, err := n.Settle("lot-1", alice, 0)
	require.NoError(t, err)
	require.EqualValues(t, 400, out.Price)
	requireBalance(t, n, house, 400)
}

func TestNode_Names(t *testing.T) {
	n, done := setupNode(t)
	defer done()

	for _, name := range []string{"", "Lot", "lot 1", "-lot", "lot/1"} {
		_, err := n.CreateAuction(name, nil)
		require.True(t, errors.Is(err, ErrInvalidAuctionName), name)
	}

	_, err := n.CreateAuction("b-lot", nil)
	require.NoError(t, err)
	_, err = n.CreateAuction("a_lot", nil)
	require.NoError(t, err)
	_, err = n.CreateAuction("b-lot", nil)
	require.True(t, errors.Is(err, ErrAuctionExists))

	_, err = n.Auction("missing")
	require.True(t, errors.Is(err, ErrAuctionNotFound))
	_, err = n.Submit("missing", alice, 1000, testCommit(1, 1))
	require.True(t, errors.Is(err, ErrAuctionNotFound))
	_, err = n.Transfers("missing")
	require.True(t, errors.Is(err, ErrAuctionNotFound))

	all := n.Auctions()
	require.Len(t, all, 2)
	require.Equal(t, "a_lot", all[0].Name)
	require.Equal(t, "b-lot", all[1].Name)
}

func TestNode_MainnetRestrictions(t *testing.T) {
	dir, err := ioutil.TempDir("", "auctioneer_*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	n := startNode(t, dir, auction.ParamsMain)
	defer n.stop(t)

	_, err = n.Fund(alice, 100)
	require.True(t, errors.Is(err, ErrFaucetDisabled))
	_, err = n.Mine(1)
	require.True(t, errors.Is(err, ErrMiningDisabled))
}

func TestNode_FundAndMineValidation(t *testing.T) {
	n, done := setupNode(t)
	defer done()

	_, err := n.Fund(alice, 0)
	require.True(t, errors.Is(err, ErrInvalidAmount))
	_, err = n.Mine(0)
	require.True(t, errors.Is(err, ErrInvalidAmount))

	height, err := n.Mine(3)
	require.NoError(t, err)
	require.Equal(t, 3, height)
	require.Equal(t, 3, n.Status().Height)
	require.Equal(t, "regtest", n.Status().Network)
}

func TestNode_LedgerFaultHalts(t *testing.T) {
	dir, err := ioutil.TempDir("", "auctioneer_*")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	n := startNode(t, dir, auction.ParamsRegtest)
	fundAll(t, n)
	_, err = n.CreateAuction("lot-1", house)
	require.NoError(t, err)
	_, err = n.Submit("lot-1", alice, 1000, testCommit(600, 1))
	require.NoError(t, err)
	_, err = n.Submit("lot-1", bob, 1000, testCommit(400, 2))
	require.NoError(t, err)
	_, err = n.Mine(auction.BidDuration)
	require.NoError(t, err)
	require.NoError(t, n.Reveal("lot-1", alice, 0, 600, testNonce(1)))
	require.NoError(t, n.Reveal("lot-1", bob, 0, 400, testNonce(2)))
	_, err = n.Mine(auction.CheckDuration)
	require.NoError(t, err)

	escrow := auction.EscrowAddress(auction.AuctionID("lot-1"))
	require.NoError(t, n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		return ledgerdb.Debit(tx, escrow, 2000)
	}))

	_, err = n.Settle("lot-1", carol, 250)
	require.True(t, errors.Is(err, auction.ErrLedgerFault))
	requireBalance(t, n, carol, 5000)
	requireBalance(t, n, alice, 4000)
	requireBalance(t, n, house, 0)

	info, err := n.Auction("lot-1")
	require.NoError(t, err)
	require.Equal(t, auction.PhaseHalted, info.Phase)
	require.Nil(t, info.Outcome)

	_, err = n.Settle("lot-1", carol, 250)
	require.True(t, errors.Is(err, auction.ErrHalted))
	requireBalance(t, n, carol, 5000)
	require.True(t, errors.Is(n.Reveal("lot-1", alice, 0, 600, testNonce(1)), auction.ErrHalted))
	n.stop(t)

	n = startNode(t, dir, auction.ParamsRegtest)
	defer n.stop(t)
	info, err = n.Auction("lot-1")
	require.NoError(t, err)
	require.Equal(t, auction.PhaseHalted, info.Phase)
	_, err = n.Settle("lot-1", carol, 0)
	require.True(t, errors.Is(err, auction.ErrHalted))
}
