package ledger

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/ledgerdb"
	"github.com/pkg/errors"
	"sync"
)

// ErrInsufficientBalance is shared by every ledger in this package.
var ErrInsufficientBalance = ledgerdb.ErrInsufficientBalance

// Entry is one balance movement recorded by a MemLedger.
type Entry struct {
	Height int
	From   *auction.Address
	To     *auction.Address
	Amount uint64
}

// MemLedger is an in-memory multi-account ledger with a manually advanced
// height. Every auction escrow is an ordinary account.
type MemLedger struct {
	height   int
	balances map[string]uint64
	journal  []*Entry
	failErr  error
	mtx      sync.Mutex

	// OnTransfer, when set, runs after every transfer out of an escrow
	// account. It is called without the ledger lock held so it may call
	// back into an engine.
	OnTransfer func(escrow, to *auction.Address, amount uint64)
}

func NewMemLedger() *MemLedger {
	return &MemLedger{
		balances: make(map[string]uint64),
	}
}

func (m *MemLedger) Height() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.height
}

func (m *MemLedger) Mine(n int) int {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.height += n
	return m.height
}

// Credit mints amount into addr.
func (m *MemLedger) Credit(addr *auction.Address, amount uint64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.balances[addr.Key()] += amount
	m.record(nil, addr, amount)
}

func (m *MemLedger) Balance(addr *auction.Address) uint64 {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	return m.balances[addr.Key()]
}

// FailTransfers makes every subsequent escrow transfer return err. Pass
// nil to clear.
func (m *MemLedger) FailTransfers(err error) {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	m.failErr = err
}

func (m *MemLedger) Journal() []*Entry {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	out := make([]*Entry, len(m.journal))
	copy(out, m.journal)
	return out
}

// Account returns the auction.Ledger view of escrow.
func (m *MemLedger) Account(escrow *auction.Address) auction.Ledger {
	return &escrowAccount{
		m:      m,
		escrow: escrow,
	}
}

// Call moves value from sender into escrow and runs fn with the matching
// message. If fn reports a reverted call the deposit is moved back.
func (m *MemLedger) Call(
	sender *auction.Address,
	escrow *auction.Address,
	value uint64,
	fn func(msg *auction.Msg) error,
) error {
	if err := m.move(sender, escrow, value); err != nil {
		return err
	}

	err := fn(&auction.Msg{
		Sender: sender,
		Value:  value,
	})
	if auction.IsReverted(err) {
		if mvErr := m.move(escrow, sender, value); mvErr != nil {
			panic(mvErr)
		}
	}
	return err
}

func (m *MemLedger) move(from, to *auction.Address, amount uint64) error {
	m.mtx.Lock()
	defer m.mtx.Unlock()
	if amount == 0 {
		return nil
	}
	if m.balances[from.Key()] < amount {
		return errors.Wrapf(ErrInsufficientBalance, "need %d, have %d", amount, m.balances[from.Key()])
	}
	m.balances[from.Key()] -= amount
	m.balances[to.Key()] += amount
	m.record(from, to, amount)
	return nil
}

func (m *MemLedger) record(from, to *auction.Address, amount uint64) {
	m.journal = append(m.journal, &Entry{
		Height: m.height,
		From:   from,
		To:     to,
		Amount: amount,
	})
}

type escrowAccount struct {
	m      *MemLedger
	escrow *auction.Address
}

func (e *escrowAccount) Height() int {
	return e.m.Height()
}

func (e *escrowAccount) Transfer(to *auction.Address, amount uint64) error {
	e.m.mtx.Lock()
	failErr := e.m.failErr
	e.m.mtx.Unlock()
	if failErr != nil {
		return failErr
	}

	if err := e.m.move(e.escrow, to, amount); err != nil {
		return err
	}
	if e.m.OnTransfer != nil {
		e.m.OnTransfer(e.escrow, to, amount)
	}
	return nil
}
