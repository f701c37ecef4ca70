package ledgerdb

import (
	"database/sql"
	"github.com/kurumiimari/vickrey/auction"
	"github.com/pkg/errors"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

func GetBalance(q Querier, addr *auction.Address) (uint64, error) {
	row := q.QueryRow("SELECT balance FROM accounts WHERE address = ?", addr.Key())
	if row.Err() != nil {
		return 0, errors.WithStack(row.Err())
	}
	var balance uint64
	err := row.Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return balance, nil
}

func Credit(tx Transactor, addr *auction.Address, amount uint64) error {
	_, err := tx.Exec(`
INSERT INTO accounts (address, balance) VALUES (?, ?)
ON CONFLICT(address) DO UPDATE SET balance = balance + excluded.balance
`,
		addr.Key(),
		amount,
	)
	return errors.WithStack(err)
}

func Debit(tx Transactor, addr *auction.Address, amount uint64) error {
	balance, err := GetBalance(tx, addr)
	if err != nil {
		return err
	}
	if balance < amount {
		return errors.Wrapf(ErrInsufficientBalance, "need %d, have %d", amount, balance)
	}
	_, err = tx.Exec("UPDATE accounts SET balance = balance - ? WHERE address = ?", amount, addr.Key())
	return errors.WithStack(err)
}
