package signer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github/chapool/go-bridge/internal/wallet/signer"
)

func TestCanonicalQuerySortsKeys(t *testing.T) {
	q := signer.CanonicalQuery(map[string]string{
		"timestamp":  "1700000000000",
		"symbol":     "ETHUSDT",
		"recvWindow": "5000",
		"note":       "a b&c",
	})
	assert.Equal(t, "note=a+b%26c&recvWindow=5000&symbol=ETHUSDT&timestamp=1700000000000", q)
}

func TestHMACSignDeterministicUnderPermutation(t *testing.T) {
	keys := []string{"symbol", "side", "type", "quoteOrderQty", "timestamp", "recvWindow"}
	values := map[string]string{
		"symbol":        "ETHUSDT",
		"side":          "BUY",
		"type":          "MARKET",
		"quoteOrderQty": "100",
		"timestamp":     "1700000000000",
		"recvWindow":    "5000",
	}

	var first string
	// rotate insertion order
	for shift := range keys {
		params := make(map[string]string, len(keys))
		for i := range keys {
			k := keys[(i+shift)%len(keys)]
			params[k] = values[k]
		}

		sig := signer.HMACSign(signer.CanonicalQuery(params), "secret")
		if first == "" {
			first = sig
		}
		assert.Equal(t, first, sig)
	}
	assert.Len(t, first, 64)
}

// Binance API documentation example.
func TestHMACSignKnownVector(t *testing.T) {
	query := "symbol=LTCBTC&side=BUY&type=LIMIT&timeInForce=GTC&quantity=1&price=0.1&recvWindow=5000&timestamp=1499827319559"
	secret := "NhqPtmdSJYdKjVHjA7PZj4Mge3R5YNiP1e3UZjInClVN65XAbvqqM6A7H5fATj0j"
	assert.Equal(t, "c8db56825ae71d6d79447849e617115f4a920fa2acdcab2b053c4b2838bd6b71", signer.HMACSign(query, secret))
}
