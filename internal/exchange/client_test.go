package exchange_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/metrics"
	"github/chapool/go-bridge/internal/wallet/signer"
)

type captured struct {
	method      string
	query       url.Values
	rawQuery    string
	body        string
	contentType string
	apiKey      string
}

func newServer(t *testing.T, status int, response string, got *captured) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*got = captured{
			method:      r.Method,
			query:       r.URL.Query(),
			rawQuery:    r.URL.RawQuery,
			body:        string(b),
			contentType: r.Header.Get("Content-Type"),
			apiKey:      r.Header.Get(exchange.APIKeyHeader),
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fixedClock() time.Time {
	return time.UnixMilli(1_700_000_000_000)
}

func newClient(baseURL string) *exchange.Client {
	return exchange.NewClient(exchange.Config{
		BaseURL:    baseURL,
		APIKey:     "key",
		APISecret:  "secret",
		RecvWindow: 5000,
	}, exchange.WithClock(fixedClock))
}

func TestSignedGETCarriesSignatureInQuery(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{}`, &got)

	_, err := newClient(srv.URL).Do(t.Context(), &exchange.Request{
		Method: http.MethodGet, Endpoint: "/api/v1/account", Signed: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, got.method)
	assert.Empty(t, got.body)
	assert.Empty(t, got.contentType)
	assert.Equal(t, "key", got.apiKey)
	assert.Equal(t, "1700000000000", got.query.Get("timestamp"))
	assert.Equal(t, "5000", got.query.Get("recvWindow"))

	expected := signer.HMACSign("recvWindow=5000&timestamp=1700000000000", "secret")
	assert.Equal(t, expected, got.query.Get("signature"))
	assert.Equal(t, "recvWindow=5000&timestamp=1700000000000&signature="+expected, got.rawQuery)
}

func TestSignedPOSTCarriesSignatureInBody(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{}`, &got)

	_, err := newClient(srv.URL).Do(t.Context(), &exchange.Request{
		Method:   http.MethodPost,
		Endpoint: "/api/v1/order",
		Params:   map[string]string{"symbol": "ETHUSDT", "timestamp": "42"},
		Signed:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.method)
	assert.Empty(t, got.rawQuery)
	assert.Equal(t, "application/x-www-form-urlencoded", got.contentType)

	form, err := url.ParseQuery(got.body)
	require.NoError(t, err)
	// caller supplied timestamp is kept
	assert.Equal(t, "42", form.Get("timestamp"))
	assert.Equal(t, signer.HMACSign("recvWindow=5000&symbol=ETHUSDT&timestamp=42", "secret"), form.Get("signature"))
}

func TestUnsignedGET(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"symbol":"ETHUSDT","price":"3500.12"}`, &got)

	price, err := exchange.NewClient(exchange.Config{BaseURL: srv.URL}).TickerPrice(t.Context(), "ethusdt")
	require.NoError(t, err)

	assert.Equal(t, "3500.12", price.String())
	assert.Equal(t, "symbol=ETHUSDT", got.rawQuery)
	assert.Empty(t, got.apiKey)
}

func TestMissingCredentialsNeverCalls(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer srv.Close()

	for _, cfg := range []exchange.Config{
		{BaseURL: srv.URL},
		{BaseURL: srv.URL, APIKey: "key"},
		{BaseURL: srv.URL, APISecret: "secret"},
	} {
		_, err := exchange.NewClient(cfg).Account(t.Context())
		assert.ErrorIs(t, err, errs.ErrMissingCredentials)
	}
	assert.Zero(t, calls)
}

func TestAPIErrorCarriesProviderCode(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`, &got)

	_, err := newClient(srv.URL).TickerPrice(t.Context(), "NOPE")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrAPI)
	assert.NotErrorIs(t, err, errs.ErrNetworkTransport)

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, -1121, apiErr.ProviderCode())
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode())
	assert.Equal(t, "Invalid symbol.", apiErr.Message())
}

func TestAPIErrorFallsBackToStatus(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusBadGateway, `<html>bad gateway</html>`, &got)

	_, err := newClient(srv.URL).TickerPrice(t.Context(), "ETHUSDT")

	var apiErr *errs.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, errs.KindAPI, apiErr.Kind())
	assert.Equal(t, 0, apiErr.ProviderCode())
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode())
}

func TestAPIErrorInSuccessBody(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"code":-2010,"msg":"Account has insufficient balance"}`, &got)

	_, err := newClient(srv.URL).MarketBuyQuote(t.Context(), "ETHUSDT", decimalOf(t, "10"), "")
	assert.ErrorIs(t, err, errs.ErrAPI)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	baseURL := srv.URL
	srv.Close()

	_, err := newClient(baseURL).Account(t.Context())
	assert.ErrorIs(t, err, errs.ErrNetworkTransport)
	assert.NotErrorIs(t, err, errs.ErrAPI)
}

func TestRequestsAreCounted(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `{"symbol":"BNBUSDT","price":"600"}`, &got)

	rec := metrics.New()
	client := exchange.NewClient(exchange.Config{BaseURL: srv.URL}, exchange.WithMetrics(rec))

	_, err := client.TickerPrice(t.Context(), "BNBUSDT")
	require.NoError(t, err)
	_, err = client.Account(t.Context())
	require.ErrorIs(t, err, errs.ErrMissingCredentials)

	count, err := testutil.GatherAndCount(rec.Registry(), "bridge_exchange_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
