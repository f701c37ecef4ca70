package auctioneer

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/kurumiimari/vickrey/ledger"
	"github.com/kurumiimari/vickrey/ledgerdb"
	"github.com/kurumiimari/vickrey/log"
	"github.com/pkg/errors"
	"gopkg.in/tomb.v2"
	"regexp"
	"runtime"
	"sort"
	"sync"
)

var nodeLogger = log.ModuleLogger("node")

var (
	ErrAuctionNotFound    = ledgerdb.ErrAuctionNotFound
	ErrAuctionExists      = ledgerdb.ErrAuctionExists
	ErrInvalidAuctionName = errors.New("auction names must be 1-63 lowercase letters, digits, '-' or '_'")
	ErrCommitmentReused   = errors.New("commitment already used on this node")
	ErrFaucetDisabled     = errors.New("faucet is disabled on this network")
	ErrMiningDisabled     = errors.New("manual mining is disabled on this network")
	ErrInvalidAmount      = errors.New("amount must be positive")
)

var auctionNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// Node hosts any number of named auctions, each an independent engine over
// its own escrow account. Calls into one auction are serialized; calls into
// different auctions only contend on the database.
type Node struct {
	tmb      *tomb.Tomb
	params   *auction.Params
	engine   *ledgerdb.Engine
	hm       *HeightMonitor
	bloom    *CommitmentBloom
	auctions map[string]*hostedAuction
	aMtx     sync.RWMutex
}

type hostedAuction struct {
	name          string
	id            gcrypto.Hash
	escrow        *auction.Address
	createdHeight int
	engine        *auction.Engine
	lastPhase     auction.Phase
	mtx           sync.Mutex
}

type NodeStatus struct {
	Status   string `json:"status"`
	Network  string `json:"network"`
	Height   int    `json:"height"`
	Auctions int    `json:"auctions"`
	MemUsage uint64 `json:"mem_usage"`
}

func NewNode(tmb *tomb.Tomb, params *auction.Params, engine *ledgerdb.Engine, hm *HeightMonitor) *Node {
	return &Node{
		tmb:      tmb,
		params:   params,
		engine:   engine,
		hm:       hm,
		auctions: make(map[string]*hostedAuction),
	}
}

// Start restores every persisted auction and the commitment filter.
func (n *Node) Start() error {
	if err := n.params.Validate(); err != nil {
		return errors.Wrap(err, "invalid network parameters")
	}

	var records []*ledgerdb.Auction
	var bloomBytes []byte
	var commitments []gcrypto.Hash
	err := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		var err error
		records, err = ledgerdb.GetAuctions(tx)
		if err != nil {
			return err
		}
		bloomBytes, err = ledgerdb.GetCommitmentBloom(tx)
		if err != nil {
			return err
		}
		if bloomBytes == nil {
			commitments, err = ledgerdb.GetCommitments(tx)
		}
		return err
	})
	if err != nil {
		return errors.Wrap(err, "error loading auctions")
	}

	if bloomBytes == nil {
		n.bloom = NewCommitmentBloom(commitments)
	} else if n.bloom, err = CommitmentBloomFromBytes(bloomBytes); err != nil {
		return err
	}

	n.aMtx.Lock()
	for _, rec := range records {
		ha, err := n.restore(rec)
		if err != nil {
			n.aMtx.Unlock()
			return errors.Wrapf(err, "error restoring auction %s", rec.Name)
		}
		n.auctions[rec.Name] = ha
	}
	n.aMtx.Unlock()
	nodeLogger.Info("restored auctions", "count", len(records))

	heights := n.hm.Subscribe()
	n.tmb.Go(func() error {
		return n.watchPhases(heights)
	})
	return nil
}

func (n *Node) Params() *auction.Params {
	return n.params
}

func (n *Node) Status() *NodeStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	n.aMtx.RLock()
	count := len(n.auctions)
	n.aMtx.RUnlock()

	return &NodeStatus{
		Status:   "OK",
		Network:  n.params.Name,
		Height:   n.hm.LastHeight(),
		Auctions: count,
		MemUsage: memStats.HeapAlloc,
	}
}

func (n *Node) CreateAuction(name string, beneficiary *auction.Address) (*AuctionInfo, error) {
	if !auctionNameRe.MatchString(name) {
		return nil, ErrInvalidAuctionName
	}

	n.aMtx.Lock()
	defer n.aMtx.Unlock()
	if n.auctions[name] != nil {
		return nil, errors.Wrapf(ErrAuctionExists, "auction %s", name)
	}

	id := auction.AuctionID(name)
	ha := &hostedAuction{
		name:   name,
		id:     id,
		escrow: auction.EscrowAddress(id),
		engine: auction.NewEngine(
			n.params,
			frozenLedger(n.hm.LastHeight()),
			auction.WithBeneficiary(beneficiary),
			auction.WithLogger(auctionLogger(name)),
		),
		lastPhase: auction.PhaseAdmitting,
	}

	err := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		height, err := ledgerdb.GetHeight(tx)
		if err != nil {
			return err
		}
		snap, err := ha.engine.Snapshot().Encode()
		if err != nil {
			return err
		}
		ha.createdHeight = height
		return ledgerdb.CreateAuction(tx, &ledgerdb.Auction{
			Name:          name,
			AuctionID:     id,
			Escrow:        ha.escrow,
			Beneficiary:   beneficiary,
			Snapshot:      snap,
			CreatedHeight: height,
		})
	})
	if err != nil {
		return nil, err
	}
	n.auctions[name] = ha
	nodeLogger.Info("created auction", "name", name, "escrow", ha.escrow.String(n.params))
	return n.info(ha), nil
}

func (n *Node) Auction(name string) (*AuctionInfo, error) {
	ha, err := n.hosted(name)
	if err != nil {
		return nil, err
	}
	return n.info(ha), nil
}

func (n *Node) Auctions() []*AuctionInfo {
	hosted := n.hostedAuctions()
	out := make([]*AuctionInfo, len(hosted))
	for i, ha := range hosted {
		out[i] = n.info(ha)
	}
	return out
}

// Submit deposits value from sender into the auction's escrow and admits
// the sender with commitment. A commitment seen in any auction on this
// node is rejected before any value moves.
func (n *Node) Submit(name string, sender *auction.Address, value uint64, commitment gcrypto.Hash) (int, error) {
	ha, err := n.hosted(name)
	if err != nil {
		return -1, err
	}

	slot := -1
	err = n.invoke(ha, sender, value, func(tx ledgerdb.Transactor) error {
		if len(commitment) != gcrypto.HashSize || !n.bloom.Test(commitment) {
			return nil
		}
		used, err := ledgerdb.HasCommitment(tx, commitment)
		if err != nil {
			return err
		}
		if used {
			return ErrCommitmentReused
		}
		return nil
	}, func(tx ledgerdb.Transactor, msg *auction.Msg) error {
		var err error
		slot, err = ha.engine.SubmitBidder(msg, commitment)
		return err
	}, func(tx ledgerdb.Transactor, height int) error {
		if err := ledgerdb.InsertCommitment(tx, commitment, ha.name, height); err != nil {
			return err
		}
		n.bloom.Add(commitment)
		return ledgerdb.SaveCommitmentBloom(tx, n.bloom.Bytes())
	})
	return slot, err
}

func (n *Node) Reveal(name string, sender *auction.Address, value uint64, bid uint64, nonce []byte) error {
	ha, err := n.hosted(name)
	if err != nil {
		return err
	}
	return n.invoke(ha, sender, value, nil, func(tx ledgerdb.Transactor, msg *auction.Msg) error {
		return ha.engine.RevealBid(msg, bid, nonce)
	}, nil)
}

// Settle returns the outcome alongside ErrPartialReveal, ErrNoReveal and
// ErrAlreadySettled.
func (n *Node) Settle(name string, sender *auction.Address, value uint64) (*OutcomeInfo, error) {
	ha, err := n.hosted(name)
	if err != nil {
		return nil, err
	}
	var out *auction.Outcome
	err = n.invoke(ha, sender, value, nil, func(tx ledgerdb.Transactor, msg *auction.Msg) error {
		var err error
		out, err = ha.engine.Settle(msg)
		return err
	}, nil)
	return n.outcomeInfo(out), err
}

func (n *Node) Transfers(name string) ([]*ledgerdb.Transfer, error) {
	if _, err := n.hosted(name); err != nil {
		return nil, err
	}
	var out []*ledgerdb.Transfer
	err := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		var err error
		out, err = ledgerdb.GetTransfers(tx, name)
		return err
	})
	return out, err
}

func (n *Node) Fund(addr *auction.Address, amount uint64) (uint64, error) {
	if !n.params.AllowFaucet {
		return 0, ErrFaucetDisabled
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}
	var balance uint64
	err := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		if err := ledger.Faucet(tx, addr, amount); err != nil {
			return err
		}
		var err error
		balance, err = ledgerdb.GetBalance(tx, addr)
		return err
	})
	if err != nil {
		return 0, err
	}
	nodeLogger.Debug("funded account", "address", addr.String(n.params), "amount", amount)
	return balance, nil
}

func (n *Node) Balance(addr *auction.Address) (uint64, error) {
	var balance uint64
	err := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		var err error
		balance, err = ledgerdb.GetBalance(tx, addr)
		return err
	})
	return balance, err
}

func (n *Node) AccountTransfers(addr *auction.Address) ([]*ledgerdb.Transfer, error) {
	var out []*ledgerdb.Transfer
	err := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		var err error
		out, err = ledgerdb.GetAccountTransfers(tx, addr)
		return err
	})
	return out, err
}

// Mine advances the local clock by count heights.
func (n *Node) Mine(count int) (int, error) {
	if !n.params.AllowFaucet {
		return 0, ErrMiningDisabled
	}
	if count <= 0 {
		return 0, ErrInvalidAmount
	}
	return n.hm.Advance(count)
}

// invoke runs one engine call inside a database transaction. check may
// veto the call before any value moves; after a non-reverted call the
// snapshot is persisted, and onAdmit runs if the call admitted a bidder.
func (n *Node) invoke(
	ha *hostedAuction,
	sender *auction.Address,
	value uint64,
	check func(tx ledgerdb.Transactor) error,
	call func(tx ledgerdb.Transactor, msg *auction.Msg) error,
	onAdmit func(tx ledgerdb.Transactor, height int) error,
) error {
	ha.mtx.Lock()
	defer ha.mtx.Unlock()

	msg := &auction.Msg{
		Sender: sender,
		Value:  value,
	}
	var called bool
	var callErr error
	err := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		if check != nil {
			if err := check(tx); err != nil {
				return err
			}
		}

		l, err := ledger.NewSQLLedger(tx, ha.name, ha.escrow)
		if err != nil {
			return err
		}
		if err := l.Deposit(sender, value); err != nil {
			return err
		}

		countBefore := ha.engine.BidderCount()
		ha.engine.Rebind(l)
		called = true
		callErr = call(tx, msg)
		if auction.IsReverted(callErr) || auction.IsFatal(callErr) {
			return callErr
		}

		if onAdmit != nil && ha.engine.BidderCount() > countBefore {
			if err := onAdmit(tx, l.Height()); err != nil {
				return err
			}
		}

		snap, err := ha.engine.Snapshot().Encode()
		if err != nil {
			return err
		}
		return ledgerdb.UpdateAuctionSnapshot(tx, ha.name, snap)
	})
	ha.engine.Rebind(frozenLedger(n.hm.LastHeight()))

	if auction.IsFatal(callErr) {
		nodeLogger.Error("auction halted", "name", ha.name, "err", callErr)
		if hErr := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
			return ledgerdb.SetAuctionHalted(tx, ha.name)
		}); hErr != nil {
			nodeLogger.Error("error persisting halt", "name", ha.name, "err", hErr)
		}
	}

	if err != nil {
		if called && !auction.IsReverted(callErr) {
			// The engine ran but its effects were rolled back, so reload
			// the last persisted state.
			if rErr := n.reload(ha); rErr != nil {
				nodeLogger.Error("error reloading auction", "name", ha.name, "err", rErr)
			}
		}
		return err
	}
	return callErr
}

func (n *Node) reload(ha *hostedAuction) error {
	var rec *ledgerdb.Auction
	err := n.engine.Transaction(func(tx ledgerdb.Transactor) error {
		var err error
		rec, err = ledgerdb.GetAuction(tx, ha.name)
		return err
	})
	if err != nil {
		return err
	}
	restored, err := n.restore(rec)
	if err != nil {
		return err
	}
	ha.engine = restored.engine
	return nil
}

func (n *Node) restore(rec *ledgerdb.Auction) (*hostedAuction, error) {
	snap, err := auction.DecodeSnapshot(rec.Snapshot)
	if err != nil {
		return nil, err
	}
	if rec.Halted {
		snap.Halted = true
	}
	engine, err := auction.RestoreEngine(
		n.params,
		frozenLedger(n.hm.LastHeight()),
		snap,
		auction.WithLogger(auctionLogger(rec.Name)),
	)
	if err != nil {
		return nil, err
	}
	return &hostedAuction{
		name:          rec.Name,
		id:            rec.AuctionID,
		escrow:        rec.Escrow,
		createdHeight: rec.CreatedHeight,
		engine:        engine,
		lastPhase:     engine.Phase(),
	}, nil
}

func (n *Node) hosted(name string) (*hostedAuction, error) {
	n.aMtx.RLock()
	defer n.aMtx.RUnlock()
	ha := n.auctions[name]
	if ha == nil {
		return nil, errors.Wrapf(ErrAuctionNotFound, "auction %s", name)
	}
	return ha, nil
}

func (n *Node) hostedAuctions() []*hostedAuction {
	n.aMtx.RLock()
	out := make([]*hostedAuction, 0, len(n.auctions))
	for _, ha := range n.auctions {
		out = append(out, ha)
	}
	n.aMtx.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].createdHeight != out[j].createdHeight {
			return out[i].createdHeight < out[j].createdHeight
		}
		return out[i].name < out[j].name
	})
	return out
}

func (n *Node) watchPhases(heights <-chan int) error {
	for {
		select {
		case height, ok := <-heights:
			if !ok {
				return nil
			}
			for _, ha := range n.hostedAuctions() {
				ha.mtx.Lock()
				ha.engine.Rebind(frozenLedger(height))
				phase := ha.engine.Phase()
				if phase != ha.lastPhase {
					nodeLogger.Info(
						"auction phase changed",
						"name", ha.name,
						"from", ha.lastPhase,
						"to", phase,
						"height", height,
					)
					ha.lastPhase = phase
				}
				ha.mtx.Unlock()
			}
		case <-n.tmb.Dying():
			return nil
		}
	}
}

func auctionLogger(name string) log.Logger {
	return log.ModuleLogger("auction").Child("auction", name)
}

// frozenLedger serves heights to an engine between calls. Engines never
// transfer outside a call, so Transfer always fails.
type frozenLedger int

func (f frozenLedger) Height() int {
	return int(f)
}

func (f frozenLedger) Transfer(*auction.Address, uint64) error {
	return errors.New("transfer outside of a call")
}
