package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: \"9090\"\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, ChainTypeMemory, cfg.Chain.ChainType)
	assert.Equal(t, 2*time.Minute, cfg.Chain.TxTimeout)
	assert.Equal(t, 60, cfg.Task.Interval)
	assert.Equal(t, int64(500), cfg.Task.BatchSize)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, "info", cfg.Log.GetLevel())
}

func TestLoadFileEthereumRequiresContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "chain:\n  chain_type: ethereum\n  rpc_url: http://localhost:8545\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "chain.contract.address")
}

func TestLoadFileEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidateRejectsUnknownChain(t *testing.T) {
	cfg := &Config{Chain: ChainConfig{ChainType: "solana"}}
	assert.ErrorContains(t, cfg.Validate(), "unsupported chain type")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "cf", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=cf sslmode=disable", d.DSN())
}
