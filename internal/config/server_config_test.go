package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/wallet/chain"
)

func TestPrintServiceEnv(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()
	_, err := json.MarshalIndent(cfg.Redacted(), "", "  ")
	require.NoError(t, err)
}

func TestDefaults(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, config.SettleModeFixed, cfg.Bridge.SettleMode)
	assert.Equal(t, uint64(1), cfg.Bridge.BrokerID)
	assert.Equal(t, uint8(1), cfg.Bridge.SolanaOpcode)
	assert.Equal(t, 5*time.Second, cfg.Bridge.DepositSettleDelay)
	assert.Equal(t, int64(5000), cfg.Exchange.RecvWindow)
	assert.NotEmpty(t, cfg.Networks[chain.Solana].RPCURLs)
	require.NoError(t, cfg.Validate())
}

func TestNetworkVariables(t *testing.T) {
	t.Setenv("ARBITRUM_RPC_URL", "https://a.example, https://b.example")
	t.Setenv("ARBITRUM_PRIVATE_KEY", " 0xabc ")
	t.Setenv("ETHEREUM_MNEMONIC", "test test test")
	t.Setenv("ETHEREUM_DERIVATION_PATH", "m/44'/60'/0'/0/1")
	t.Setenv("SOLANA_TREASURY", "treasury")
	t.Setenv("EXCHANGE_API_KEY", "abcdefghijkl")
	t.Setenv("BRIDGE_SETTLE_MODE", "POLL")
	t.Setenv("BRIDGE_SETTLE_TIMEOUT", "2m")

	cfg := config.DefaultServiceConfigFromEnv()

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Networks[chain.Arbitrum].RPCURLs)
	assert.Equal(t, "0xabc", cfg.Networks[chain.Arbitrum].PrivateKey)
	assert.Equal(t, "test test test", cfg.Networks[chain.Ethereum].Mnemonic)
	assert.Equal(t, "m/44'/60'/0'/0/1", cfg.Networks[chain.Ethereum].Path)
	assert.Equal(t, "treasury", cfg.Networks[chain.Solana].Treasury)
	assert.Equal(t, config.SettleModePoll, cfg.Bridge.SettleMode)
	assert.Equal(t, 2*time.Minute, cfg.Bridge.SettleTimeout)

	redacted := cfg.Redacted()
	assert.Equal(t, "****", redacted.Networks[chain.Arbitrum].PrivateKey)
	assert.Equal(t, "****", redacted.Networks[chain.Ethereum].Mnemonic)
	assert.NotEqual(t, cfg.Exchange.APIKey, redacted.Exchange.APIKey)
	assert.Equal(t, "0xabc", cfg.Networks[chain.Arbitrum].PrivateKey, "Redacted must not modify the receiver")
}

func TestDebugForcesDebugLevel(t *testing.T) {
	t.Setenv("LOGGER_LEVEL", "warn")
	t.Setenv("BRIDGE_DEBUG", "true")

	cfg := config.DefaultServiceConfigFromEnv()
	assert.True(t, cfg.Bridge.Debug)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestValidate(t *testing.T) {
	cfg := config.DefaultServiceConfigFromEnv()

	cfg.Bridge.SettleMode = "sometimes"
	require.Error(t, cfg.Validate())

	cfg.Bridge.SettleMode = config.SettleModePoll
	cfg.Exchange.RecvWindow = 70000
	require.Error(t, cfg.Validate())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BSC_DEPOSIT_CONTRACT=0x0000000000000000000000000000000000000001\n"), 0o600))

	t.Setenv("BSC_DEPOSIT_CONTRACT", "")
	require.NoError(t, os.Unsetenv("BSC_DEPOSIT_CONTRACT"))

	config.LoadDotEnv(path, filepath.Join(dir, "missing.env"))

	cfg := config.DefaultServiceConfigFromEnv()
	assert.Equal(t, "0x0000000000000000000000000000000000000001", cfg.Networks[chain.BSC].DepositContract)
}
