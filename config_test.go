package vickrey

import (
	"github.com/kurumiimari/vickrey/auction"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) (string, func()) {
	dir, err := ioutil.TempDir("", "config_*")
	require.NoError(t, err)
	path := filepath.Join(dir, "vickrey.yml")
	require.NoError(t, ioutil.WriteFile(path, []byte(body), 0o600))
	return path, func() {
		require.NoError(t, os.RemoveAll(dir))
	}
}

func TestLoadFileConfig(t *testing.T) {
	path, done := writeConfig(t, `
network: regtest
log_level: debug
api_key: secret
api_port: 15000
block_interval: 250ms
`)
	defer done()

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	require.Equal(t, "regtest", cfg.Network)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "secret", cfg.APIKey)
	require.Equal(t, 250*time.Millisecond, cfg.BlockInterval)

	params, err := cfg.ApplyTo(auction.ParamsRegtest)
	require.NoError(t, err)
	require.Equal(t, 15000, params.APIPort)
	require.Equal(t, 250*time.Millisecond, params.BlockInterval)
	require.Equal(t, 14139, auction.ParamsRegtest.APIPort)
}

func TestLoadFileConfig_Missing(t *testing.T) {
	cfg, err := LoadFileConfig(filepath.Join(os.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)
	require.Equal(t, new(FileConfig), cfg)
}

func TestLoadFileConfig_Invalid(t *testing.T) {
	path, done := writeConfig(t, "api_port: [1, 2")
	defer done()
	_, err := LoadFileConfig(path)
	require.Error(t, err)

	path2, done2 := writeConfig(t, "api_port: 70000")
	defer done2()
	_, err = LoadFileConfig(path2)
	require.Error(t, err)

	cfg := &FileConfig{BlockInterval: -time.Second}
	_, err = cfg.ApplyTo(auction.ParamsMain)
	require.Error(t, err)
}
