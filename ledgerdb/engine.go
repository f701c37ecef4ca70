package ledgerdb

import (
	"database/sql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"path"
	"sync"
)

const DBFilename = "vickrey.db"

type Engine struct {
	db  *sql.DB
	mtx sync.Mutex
}

type Scanner interface {
	Scan(dest ...interface{}) error
}

type Querier interface {
	Query(q string, args ...interface{}) (*sql.Rows, error)
	QueryRow(q string, args ...interface{}) *sql.Row
	Exec(q string, args ...interface{}) (sql.Result, error)
}

type Transactor interface {
	Querier
}

func NewEngine(dbPath string) (*Engine, error) {
	db, err := sql.Open("sqlite3", path.Join(dbPath, DBFilename)+"?_foreign_keys=on")
	if err != nil {
		return nil, errors.Wrap(err, "error opening DB")
	}
	db.SetMaxOpenConns(1)
	return &Engine{
		db: db,
	}, nil
}

// Transaction runs cb in a single database transaction. Returning an error
// from cb rolls everything back.
func (e *Engine) Transaction(cb func(tx Transactor) error) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	tx, err := e.db.Begin()
	if err != nil {
		return errors.Wrap(err, "error beginning transaction")
	}

	if err := cb(&transactor{tx: tx}); err != nil {
		cbErr := err
		if err := tx.Rollback(); err != nil {
			panic("error rolling back transaction!")
		}
		return cbErr
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}
	return nil
}

func (e *Engine) Close() error {
	return errors.WithStack(e.db.Close())
}

type transactor struct {
	tx *sql.Tx
}

func (t *transactor) Query(q string, args ...interface{}) (*sql.Rows, error) {
	return t.tx.Query(q, args...)
}

func (t *transactor) QueryRow(q string, args ...interface{}) *sql.Row {
	return t.tx.QueryRow(q, args...)
}

func (t *transactor) Exec(q string, args ...interface{}) (sql.Result, error) {
	return t.tx.Exec(q, args...)
}
