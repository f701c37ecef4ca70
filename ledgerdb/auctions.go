package ledgerdb

import (
	"database/sql"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/pkg/errors"
	"time"
)

var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrAuctionExists   = errors.New("auction already exists")
)

type Auction struct {
	Name          string
	AuctionID     gcrypto.Hash
	Escrow        *auction.Address
	Beneficiary   *auction.Address
	Snapshot      []byte
	Halted        bool
	CreatedHeight int
	UpdatedAt     time.Time
}

const selectAuctionsQuery = `
SELECT name, auction_id, escrow, beneficiary, snapshot, halted, created_height, updated_at
FROM auctions
`

func CreateAuction(tx Transactor, a *Auction) error {
	var exists bool
	row := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM auctions WHERE name = ?)", a.Name)
	if err := row.Scan(&exists); err != nil {
		return errors.WithStack(err)
	}
	if exists {
		return errors.Wrapf(ErrAuctionExists, "auction %s", a.Name)
	}

	var beneficiary sql.NullString
	if a.Beneficiary != nil {
		beneficiary.String = a.Beneficiary.Key()
		beneficiary.Valid = true
	}
	a.UpdatedAt = time.Now()
	_, err := tx.Exec(`
INSERT INTO auctions (name, auction_id, escrow, beneficiary, snapshot, halted, created_height, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		a.Name,
		a.AuctionID,
		a.Escrow.Key(),
		beneficiary,
		a.Snapshot,
		a.Halted,
		a.CreatedHeight,
		a.UpdatedAt.Unix(),
	)
	return errors.WithStack(err)
}

func GetAuction(q Querier, name string) (*Auction, error) {
	a, err := scanAuction(q.QueryRow(selectAuctionsQuery+"WHERE name = ?", name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrAuctionNotFound, "auction %s", name)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return a, nil
}

func GetAuctions(q Querier) ([]*Auction, error) {
	rows, err := q.Query(selectAuctionsQuery + "ORDER BY created_height, name")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	out := make([]*Auction, 0)
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

func UpdateAuctionSnapshot(tx Transactor, name string, snapshot []byte) error {
	return updateAuction(tx, "UPDATE auctions SET snapshot = ?, updated_at = ? WHERE name = ?", name, snapshot, time.Now().Unix(), name)
}

func SetAuctionHalted(tx Transactor, name string) error {
	return updateAuction(tx, "UPDATE auctions SET halted = 1, updated_at = ? WHERE name = ?", name, time.Now().Unix(), name)
}

func updateAuction(tx Transactor, q string, name string, args ...interface{}) error {
	res, err := tx.Exec(q, args...)
	if err != nil {
		return errors.WithStack(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.WithStack(err)
	}
	if n == 0 {
		return errors.Wrapf(ErrAuctionNotFound, "auction %s", name)
	}
	return nil
}

func scanAuction(s Scanner) (*Auction, error) {
	a := new(Auction)
	var escrow string
	var beneficiary sql.NullString
	var updatedAt int64
	err := s.Scan(
		&a.Name,
		&a.AuctionID,
		&escrow,
		&beneficiary,
		&a.Snapshot,
		&a.Halted,
		&a.CreatedHeight,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if a.Escrow, err = auction.NewAddressFromKey(escrow); err != nil {
		return nil, err
	}
	if beneficiary.Valid {
		if a.Beneficiary, err = auction.NewAddressFromKey(beneficiary.String); err != nil {
			return nil, err
		}
	}
	a.UpdatedAt = time.Unix(updatedAt, 0)
	return a, nil
}
