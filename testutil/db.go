package testutil

import (
	"github.com/kurumiimari/vickrey/ledgerdb"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"os"
	"testing"
)

// SetupEngine opens a migrated database in a fresh temporary directory.
func SetupEngine(t *testing.T) (*ledgerdb.Engine, func()) {
	dirName, err := ioutil.TempDir("", "ledgerdb_*")
	require.NoError(t, err)

	engine, err := ledgerdb.NewEngine(dirName)
	require.NoError(t, err)
	require.NoError(t, ledgerdb.MigrateDB(engine))
	return engine, func() {
		require.NoError(t, engine.Close())
		require.NoError(t, os.RemoveAll(dirName))
	}
}
