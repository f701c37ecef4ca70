package ledgerdb

import (
	"database/sql"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/pkg/errors"
	"time"
)

type TransferKind string

const (
	TransferDeposit TransferKind = "DEPOSIT"
	TransferPayment TransferKind = "PAYMENT"
	TransferFaucet  TransferKind = "FAUCET"
)

type Transfer struct {
	ID          string           `json:"id"`
	AuctionName string           `json:"auction_name,omitempty"`
	From        *auction.Address `json:"from"`
	To          *auction.Address `json:"to"`
	Amount      uint64           `json:"amount"`
	Kind        TransferKind     `json:"kind"`
	Height      int              `json:"height"`
	CreatedAt   time.Time        `json:"created_at"`
}

const selectTransfersQuery = `
SELECT id, auction_name, from_address, to_address, amount, kind, height, created_at
FROM transfers
`

func InsertTransfer(tx Transactor, t *Transfer) error {
	var from sql.NullString
	if t.From != nil {
		from.String = t.From.Key()
		from.Valid = true
	}
	var auctionName sql.NullString
	if t.AuctionName != "" {
		auctionName.String = t.AuctionName
		auctionName.Valid = true
	}

	_, err := tx.Exec(`
INSERT INTO transfers (id, auction_name, from_address, to_address, amount, kind, height, created_at, seq)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transfers))
`,
		t.ID,
		auctionName,
		from,
		t.To.Key(),
		t.Amount,
		t.Kind,
		t.Height,
		t.CreatedAt.Unix(),
	)
	return errors.WithStack(err)
}

func GetTransfers(q Querier, auctionName string) ([]*Transfer, error) {
	rows, err := q.Query(selectTransfersQuery+"WHERE auction_name = ? ORDER BY seq", auctionName)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return scanTransfers(rows)
}

func GetAccountTransfers(q Querier, addr *auction.Address) ([]*Transfer, error) {
	rows, err := q.Query(
		selectTransfersQuery+"WHERE from_address = ? OR to_address = ? ORDER BY seq",
		addr.Key(),
		addr.Key(),
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return scanTransfers(rows)
}

func scanTransfers(rows *sql.Rows) ([]*Transfer, error) {
	defer rows.Close()
	out := make([]*Transfer, 0)
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

func scanTransfer(s Scanner) (*Transfer, error) {
	t := new(Transfer)
	var auctionName sql.NullString
	var from sql.NullString
	var to string
	var createdAt int64
	err := s.Scan(
		&t.ID,
		&auctionName,
		&from,
		&to,
		&t.Amount,
		&t.Kind,
		&t.Height,
		&createdAt,
	)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	t.AuctionName = auctionName.String
	if from.Valid {
		if t.From, err = auction.NewAddressFromKey(from.String); err != nil {
			return nil, err
		}
	}
	if t.To, err = auction.NewAddressFromKey(to); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(createdAt, 0)
	return t, nil
}
