// Package exchange is the authenticated REST client of the centralized exchange.
package exchange

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/metrics"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet/signer"
)

const (
	// APIKeyHeader carries the API key on every authenticated request.
	APIKeyHeader = "X-MBX-APIKEY"

	DefaultBaseURL    = "https://sapi.asterdex.com"
	DefaultRecvWindow = 5000
	defaultTimeout    = 30 * time.Second

	maxErrorBodyLen = 512
)

// Config is the exchange connection configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	RecvWindow int64 // milliseconds
	Timeout    time.Duration
	Debug      bool
}

// Client issues plain and HMAC-signed exchange requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
	metrics    *metrics.Recorder
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records every call on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock replaces the time source used for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RecvWindow <= 0 {
		cfg.RecvWindow = DefaultRecvWindow
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasCredentials reports whether signed endpoints can be called.
func (c *Client) HasCredentials() bool {
	return c.cfg.APIKey != "" && c.cfg.APISecret != ""
}

// Now returns the client's clock in epoch milliseconds.
func (c *Client) Now() int64 {
	return c.now().UnixMilli()
}

// Request describes one REST call.
type Request struct {
	Method   string
	Endpoint string
	Params   map[string]string
	Signed   bool
}

// providerError is the error body returned by the exchange.
type providerError struct {
	Code *int   `json:"code"`
	Msg  string `json:"msg"`
}

// Do performs the request and returns the raw response body on success.
// Failures are disjoint: MissingCredentials (nothing sent), NetworkTransport (no response),
// API (the exchange answered with an error).
func (c *Client) Do(ctx context.Context, req *Request) (json.RawMessage, error) {
	raw, err := c.do(ctx, req)

	kind := ""
	if err != nil {
		kind = string(errs.KindOf(err))
	}
	c.metrics.ObserveExchangeRequest(req.Endpoint, kind)

	return raw, err
}

func (c *Client) do(ctx context.Context, req *Request) (json.RawMessage, error) {
	log := util.LogFromContext(ctx)

	if req.Signed && !c.HasCredentials() {
		return nil, errs.New(errs.KindMissingCredentials, "API key and secret are required for %s", req.Endpoint)
	}

	params := make(map[string]string, len(req.Params)+3)
	for k, v := range req.Params {
		params[k] = v
	}

	payload := ""
	if req.Signed {
		if _, ok := params["timestamp"]; !ok {
			params["timestamp"] = strconv.FormatInt(c.Now(), 10)
		}
		if _, ok := params["recvWindow"]; !ok {
			params["recvWindow"] = strconv.FormatInt(c.cfg.RecvWindow, 10)
		}

		query := signer.CanonicalQuery(params)
		if c.cfg.Debug {
			log.Debug().Str("endpoint", req.Endpoint).Str("query", query).Msg("Signing request")
		}
		payload = query + "&signature=" + signer.HMACSign(query, c.cfg.APISecret)
	} else if len(params) > 0 {
		payload = signer.CanonicalQuery(params)
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	url := c.cfg.BaseURL + req.Endpoint
	var body io.Reader
	hasBody := method == http.MethodPost || method == http.MethodPut
	switch {
	case hasBody:
		body = strings.NewReader(payload)
	case payload != "":
		url += "?" + payload
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, err, "invalid request %s %s", method, req.Endpoint)
	}
	if hasBody {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.cfg.APIKey != "" {
		httpReq.Header.Set(APIKeyHeader, c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetworkTransport, err, "%s %s", method, req.Endpoint)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetworkTransport, err, "failed to read response of %s %s", method, req.Endpoint)
	}

	if c.cfg.Debug {
		log.Debug().Str("endpoint", req.Endpoint).Int("status", resp.StatusCode).RawJSON("body", jsonOrString(respBody)).Msg("Exchange response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var pe providerError
		if json.Unmarshal(respBody, &pe) == nil && pe.Code != nil {
			return nil, errs.API(resp.StatusCode, *pe.Code, pe.Msg)
		}
		return nil, errs.API(resp.StatusCode, 0, http.StatusText(resp.StatusCode))
	}

	// some endpoints answer 200 with an error body
	var pe providerError
	if json.Unmarshal(respBody, &pe) == nil && pe.Code != nil && *pe.Code < 0 && pe.Msg != "" {
		return nil, errs.API(resp.StatusCode, *pe.Code, pe.Msg)
	}

	return respBody, nil
}

// DoJSON performs the request and decodes the response into out.
func (c *Client) DoJSON(ctx context.Context, req *Request, out any) error {
	raw, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errs.Wrap(errs.KindAPI, errors.Wrap(err, truncate(string(raw))), "unexpected response from %s", req.Endpoint)
	}

	return nil
}

func jsonOrString(b []byte) []byte {
	if json.Valid(b) {
		return b
	}
	quoted, _ := json.Marshal(truncate(string(b)))
	return quoted
}

func truncate(s string) string {
	if len(s) > maxErrorBodyLen {
		return s[:maxErrorBodyLen] + "..."
	}
	return s
}
