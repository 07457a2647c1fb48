package sol

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumParsedTokenAccounts(t *testing.T) {
	none, err := sumParsedTokenAccounts(nil)
	require.NoError(t, err)
	assert.Nil(t, none)

	acc := func(amount string) json.RawMessage {
		return json.RawMessage(`{"program":"spl-token","parsed":{"type":"account","info":{"tokenAmount":{"amount":"` + amount + `","decimals":6,"uiAmountString":"x"}}},"space":165}`)
	}

	total, err := sumParsedTokenAccounts([]json.RawMessage{acc("1500000"), acc("250000")})
	require.NoError(t, err)
	assert.Equal(t, "1750000", total.Amount.String())
	assert.Equal(t, uint8(6), total.Decimals)

	_, err = sumParsedTokenAccounts([]json.RawMessage{acc("NaN")})
	assert.Error(t, err)
}

func TestTokenBalanceSumsParsedAccounts(t *testing.T) {
	account := func(amount string) string {
		return `{"pubkey":"` + solana.SystemProgramID.String() + `","account":{"lamports":2039280,` +
			`"owner":"` + solana.TokenProgramID.String() + `","executable":false,"rentEpoch":0,` +
			`"data":{"program":"spl-token","parsed":{"type":"account","info":{"tokenAmount":` +
			`{"amount":"` + amount + `","decimals":6,"uiAmountString":"x"}}},"space":165}}}`
	}

	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		method = req.Method

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":{"context":{"slot":7},"value":[` +
			account("1500000") + `,` + account("250000") + `]}}`))
	}))
	defer srv.Close()

	client := NewRPC(srv.URL)
	owner := solana.MustPublicKeyFromBase58("9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM")
	mint := solana.MustPublicKeyFromBase58("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")

	total, err := client.TokenBalance(t.Context(), owner, mint)
	require.NoError(t, err)
	require.NotNil(t, total)
	assert.Equal(t, "getTokenAccountsByOwner", method)
	assert.Equal(t, "1750000", total.Amount.String())
	assert.Equal(t, uint8(6), total.Decimals)
}
