package ledgerdb

import (
	"database/sql"
	"github.com/kurumiimari/vickrey/gcrypto"
	"github.com/pkg/errors"
)

func HasCommitment(q Querier, commitment gcrypto.Hash) (bool, error) {
	var exists bool
	row := q.QueryRow("SELECT EXISTS(SELECT 1 FROM commitments WHERE commitment = ?)", commitment)
	if err := row.Scan(&exists); err != nil {
		return false, errors.WithStack(err)
	}
	return exists, nil
}

func InsertCommitment(tx Transactor, commitment gcrypto.Hash, auctionName string, height int) error {
	_, err := tx.Exec(
		"INSERT INTO commitments (commitment, auction_name, height) VALUES (?, ?, ?)",
		commitment,
		auctionName,
		height,
	)
	return errors.WithStack(err)
}

func GetCommitments(q Querier) ([]gcrypto.Hash, error) {
	rows, err := q.Query("SELECT commitment FROM commitments")
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()
	var out []gcrypto.Hash
	for rows.Next() {
		var h gcrypto.Hash
		if err := rows.Scan(&h); err != nil {
			return nil, errors.WithStack(err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	return out, nil
}

// GetCommitmentBloom returns nil if no filter has been saved yet.
func GetCommitmentBloom(q Querier) ([]byte, error) {
	var b []byte
	err := q.QueryRow("SELECT bloom FROM commitment_bloom WHERE id = 0").Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

func SaveCommitmentBloom(tx Transactor, bloom []byte) error {
	_, err := tx.Exec(`
INSERT INTO commitment_bloom (id, bloom) VALUES (0, ?)
ON CONFLICT(id) DO UPDATE SET bloom = excluded.bloom
`,
		bloom,
	)
	return errors.WithStack(err)
}
