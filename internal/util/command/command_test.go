package command_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/api"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/util/command"
)

func offlineConfig() config.Server {
	cfg := config.DefaultServiceConfigFromEnv()
	for n, nc := range cfg.Networks {
		nc.RPCURLs = nil
		cfg.Networks[n] = nc
	}
	cfg.Logger.PrettyPrintConsole = false
	return cfg
}

func TestWithServer(t *testing.T) {
	ctx := t.Context()

	var testError = errors.New("test error")

	resultErr := command.WithServer(ctx, offlineConfig(), func(ctx context.Context, s *api.Server) error {
		accounts, err := s.Wallet.Accounts(ctx)
		require.NoError(t, err)
		assert.NotNil(t, accounts)

		return testError
	})

	assert.Equal(t, testError, resultErr)
}

func TestWithServerInvalidConfig(t *testing.T) {
	cfg := offlineConfig()
	cfg.Bridge.SettleMode = "unknown"

	called := false
	err := command.WithServer(t.Context(), cfg, func(_ context.Context, _ *api.Server) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestSubcommandGroup(t *testing.T) {
	group := command.NewSubcommandGroup("chain")
	assert.Equal(t, "chain", group.Use)

	var out bytes.Buffer
	group.SetOut(&out)
	group.SetArgs([]string{})
	require.NoError(t, group.Execute())
	assert.Contains(t, out.String(), "chain related subcommands")
}

func TestPrintJSON(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, command.PrintJSON(&out, map[string]string{"failedAt": "swap"}))
	assert.Equal(t, "{\n  \"failedAt\": \"swap\"\n}\n", out.String())
}
