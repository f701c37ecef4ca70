package ledgerdb

import "github.com/pkg/errors"

func GetHeight(q Querier) (int, error) {
	row := q.QueryRow("SELECT height FROM chain_state WHERE id = 0")
	if row.Err() != nil {
		return 0, errors.WithStack(row.Err())
	}
	var height int
	if err := row.Scan(&height); err != nil {
		return 0, errors.WithStack(err)
	}
	return height, nil
}

// SetHeight moves the stored height forward. Heights never decrease.
func SetHeight(tx Transactor, height int) error {
	curr, err := GetHeight(tx)
	if err != nil {
		return err
	}
	if height < curr {
		return errors.Errorf("height %d is below current height %d", height, curr)
	}
	_, err = tx.Exec("UPDATE chain_state SET height = ? WHERE id = 0", height)
	return errors.WithStack(err)
}
