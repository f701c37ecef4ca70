package ledgerdb

import (
	"github.com/kurumiimari/vickrey/log"
	"github.com/pkg/errors"
	"time"
)

var logger = log.ModuleLogger("migrations")

const CreateMigrationsQuery = `
CREATE TABLE IF NOT EXISTS migrations (
	id INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	name VARCHAR NOT NULL,
	applied_at INTEGER NOT NULL
);
`

type Migration struct {
	Query string
	Name  string
}

var Migrations = []*Migration{
	{
		Query: `
CREATE TABLE chain_state (
	id INTEGER NOT NULL PRIMARY KEY CHECK (id = 0),
	height INTEGER NOT NULL
);

INSERT INTO chain_state (id, height) VALUES (0, 0);
`,
		Name: "create_chain_state",
	},
	{
		Query: `
CREATE TABLE accounts (
	address VARCHAR NOT NULL PRIMARY KEY,
	balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0)
);
`,
		Name: "create_accounts",
	},
	{
		Query: `
CREATE TABLE auctions (
	name VARCHAR NOT NULL PRIMARY KEY,
	auction_id VARCHAR(64) NOT NULL,
	escrow VARCHAR NOT NULL,
	beneficiary VARCHAR,
	snapshot BLOB NOT NULL,
	halted BOOLEAN NOT NULL DEFAULT 0,
	created_height INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE UNIQUE INDEX idx_uniq_auctions_auction_id ON auctions(auction_id);
`,
		Name: "create_auctions",
	},
	{
		Query: `
CREATE TABLE transfers (
	id VARCHAR(36) NOT NULL PRIMARY KEY,
	auction_name VARCHAR,
	from_address VARCHAR,
	to_address VARCHAR NOT NULL,
	amount INTEGER NOT NULL,
	kind VARCHAR NOT NULL,
	height INTEGER NOT NULL,
	created_at INTEGER NOT NULL,
	seq INTEGER NOT NULL
);

CREATE INDEX idx_transfers_auction_name ON transfers(auction_name);
CREATE INDEX idx_transfers_to_address ON transfers(to_address);
CREATE INDEX idx_transfers_from_address ON transfers(from_address);
`,
		Name: "create_transfers",
	},
	{
		Query: `
CREATE TABLE commitments (
	commitment VARCHAR(64) NOT NULL PRIMARY KEY,
	auction_name VARCHAR NOT NULL,
	height INTEGER NOT NULL,
	FOREIGN KEY (auction_name) REFERENCES auctions(name)
);

CREATE INDEX idx_commitments_auction_name ON commitments(auction_name);

CREATE TABLE commitment_bloom (
	id INTEGER NOT NULL PRIMARY KEY CHECK (id = 0),
	bloom BLOB NOT NULL
);
`,
		Name: "create_commitments",
	},
}

func MigrateDB(engine *Engine) error {
	return engine.Transaction(func(tx Transactor) error {
		logger.Debug("creating migrations table")
		_, err := tx.Exec(CreateMigrationsQuery)
		if err != nil {
			return errors.WithStack(err)
		}

		migRow := tx.QueryRow("SELECT COALESCE(MAX(id), 0) FROM migrations")
		if migRow.Err() != nil {
			return errors.WithStack(migRow.Err())
		}
		var latestMigID int
		if err := migRow.Scan(&latestMigID); err != nil {
			return errors.WithStack(err)
		}

		if latestMigID == len(Migrations) {
			logger.Info("migrations up to date")
			return nil
		}
		if latestMigID > len(Migrations) {
			return errors.Errorf("database is at migration %d, newer than this build", latestMigID)
		}

		logger.Info("running migrations", "from", latestMigID, "to", len(Migrations))
		for i := latestMigID; i < len(Migrations); i++ {
			mig := Migrations[i]
			logger.Debug("executing migration", "name", mig.Name, "version", i)
			if err := ExecMigration(tx, mig); err != nil {
				return err
			}
		}
		logger.Info("successfully migrated database")
		return nil
	})
}

func ExecMigration(tx Transactor, migration *Migration) error {
	if _, err := tx.Exec(migration.Query); err != nil {
		return errors.Wrapf(err, "error executing migration %s", migration.Name)
	}
	_, err := tx.Exec(
		"INSERT INTO migrations (name, applied_at) VALUES (?, ?)",
		migration.Name,
		time.Now().Unix(),
	)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
