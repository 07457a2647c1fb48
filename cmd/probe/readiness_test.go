package probe

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/api"
	"github/chapool/go-bridge/internal/config"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/test"
	"github/chapool/go-bridge/internal/wallet/chain"
)

func offlineServer(t *testing.T) *api.Server {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()
	for n, nc := range cfg.Networks {
		nc.RPCURLs = nil
		cfg.Networks[n] = nc
	}

	s := api.NewServer(cfg)
	require.NoError(t, s.Init(t.Context()))
	t.Cleanup(s.Close)
	return s
}

func TestReadiness(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"timezone":"UTC","serverTime":1,"symbols":[]}`))
	}))
	defer srv.Close()

	s := offlineServer(t)
	s.Exchange = exchange.NewClient(exchange.Config{BaseURL: srv.URL})
	s.Clients.EVM[chain.Arbitrum] = test.NewFakeEVMClient(42161)
	s.Clients.EVM[chain.BSC] = test.NewFakeEVMClient(1) // wrong chain

	checks := runReadiness(t.Context(), s)
	require.Len(t, checks, 3)

	assert.Equal(t, check{Target: "arbitrum", OK: true}, checks[0])
	assert.Equal(t, "bsc", checks[1].Target)
	assert.False(t, checks[1].OK)
	assert.Contains(t, checks[1].Error, "expected 56")
	assert.Equal(t, check{Target: "exchange", OK: true}, checks[2])
}

func TestReadinessExchangeDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := offlineServer(t)
	s.Exchange = exchange.NewClient(exchange.Config{BaseURL: srv.URL})

	checks := runReadiness(t.Context(), s)
	require.Len(t, checks, 1)
	assert.False(t, checks[0].OK)
}
