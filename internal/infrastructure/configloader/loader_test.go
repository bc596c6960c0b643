package configloader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
network:
  rpcURL: "https://mainnet.base.org"
  poolAddress: "0xA238Dd80C259a72e81d7e4664a9801593F98d1c5"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "base", cfg.Network.Name)
	assert.Equal(t, int64(8453), cfg.Network.ChainID)
	assert.Equal(t, 20, cfg.RPCClient.RateLimit)
	assert.Equal(t, 40, cfg.RPCClient.BurstLimit)
	assert.Equal(t, 100, cfg.RPCClient.MaxCallsPerBatch)
	assert.Equal(t, 12, cfg.Cache.TTLSeconds)
	assert.False(t, cfg.Stress.ShockDebtPrices)
}

func TestLoadExplicitValuesWin(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
network:
  name: "arbitrum"
  chainID: 42161
  rpcURL: "https://arb1.arbitrum.io/rpc"
  poolAddress: "0x794a61358D6845594F94dc1DB02A252b5b4814aD"
rpcClient:
  rateLimit: 5
stress:
  shockDebtPrices: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "arbitrum", cfg.Network.Name)
	assert.Equal(t, int64(42161), cfg.Network.ChainID)
	assert.Equal(t, 5, cfg.RPCClient.RateLimit)
	assert.True(t, cfg.Stress.ShockDebtPrices)
}

func TestLoadRequiredFields(t *testing.T) {
	t.Run("missing rpc url", func(t *testing.T) {
		path := writeConfig(t, `
network:
  poolAddress: "0xA238Dd80C259a72e81d7e4664a9801593F98d1c5"
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rpcURL")
	})

	t.Run("missing pool address", func(t *testing.T) {
		path := writeConfig(t, `
network:
  rpcURL: "https://mainnet.base.org"
`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "poolAddress")
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "network: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
}
