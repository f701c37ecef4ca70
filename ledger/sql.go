package ledger

import (
	"github.com/google/uuid"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/ledgerdb"
	"time"
)

// SQLLedger is the auction.Ledger view of one escrow account inside a
// ledgerdb transaction. The height is read once when the ledger is opened,
// so every check within a call sees the same clock.
type SQLLedger struct {
	tx          ledgerdb.Transactor
	auctionName string
	escrow      *auction.Address
	height      int
}

func NewSQLLedger(tx ledgerdb.Transactor, auctionName string, escrow *auction.Address) (*SQLLedger, error) {
	height, err := ledgerdb.GetHeight(tx)
	if err != nil {
		return nil, err
	}
	return &SQLLedger{
		tx:          tx,
		auctionName: auctionName,
		escrow:      escrow,
		height:      height,
	}, nil
}

func (s *SQLLedger) Height() int {
	return s.height
}

func (s *SQLLedger) Transfer(to *auction.Address, amount uint64) error {
	return s.move(s.escrow, to, amount, ledgerdb.TransferPayment)
}

// Deposit moves the value attached to a call from the sender into escrow.
func (s *SQLLedger) Deposit(from *auction.Address, amount uint64) error {
	return s.move(from, s.escrow, amount, ledgerdb.TransferDeposit)
}

func (s *SQLLedger) move(from, to *auction.Address, amount uint64, kind ledgerdb.TransferKind) error {
	if amount == 0 {
		return nil
	}
	if err := ledgerdb.Debit(s.tx, from, amount); err != nil {
		return err
	}
	if err := ledgerdb.Credit(s.tx, to, amount); err != nil {
		return err
	}
	return ledgerdb.InsertTransfer(s.tx, &ledgerdb.Transfer{
		ID:          uuid.New().String(),
		AuctionName: s.auctionName,
		From:        from,
		To:          to,
		Amount:      amount,
		Kind:        kind,
		Height:      s.height,
		CreatedAt:   time.Now(),
	})
}

// Faucet mints amount into addr. Only networks that allow a faucet call it.
func Faucet(tx ledgerdb.Transactor, addr *auction.Address, amount uint64) error {
	height, err := ledgerdb.GetHeight(tx)
	if err != nil {
		return err
	}
	if err := ledgerdb.Credit(tx, addr, amount); err != nil {
		return err
	}
	return ledgerdb.InsertTransfer(tx, &ledgerdb.Transfer{
		ID:        uuid.New().String(),
		To:        addr,
		Amount:    amount,
		Kind:      ledgerdb.TransferFaucet,
		Height:    height,
		CreatedAt: time.Now(),
	})
}
