package chain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/wallet/chain"
)

func TestResolveTokenCaseInsensitive(t *testing.T) {
	r := chain.DefaultRegistry()

	for _, n := range r.Networks() {
		for _, tok := range r.Tokens(n.Name) {
			lower, err := r.ResolveToken(n.Name, strings.ToLower(tok.Symbol))
			require.NoError(t, err)
			upper, err := r.ResolveToken(n.Name, strings.ToUpper(tok.Symbol))
			require.NoError(t, err)
			assert.Same(t, lower, upper, "%s/%s", n.Name, tok.Symbol)
		}
	}
}

func TestResolveTokenUnsupported(t *testing.T) {
	r := chain.DefaultRegistry()

	_, err := r.ResolveToken(chain.BSC, "DOGE")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrUnsupportedToken)

	_, err = r.ResolveToken(chain.Network("dogechain"), "DOGE")
	assert.ErrorIs(t, err, errs.ErrUnsupportedNetwork)
}

func TestResolveTokenByAddress(t *testing.T) {
	r := chain.DefaultRegistry()

	tok, err := r.ResolveToken(chain.Ethereum, "0xdac17f958d2ee523a2206206994597c13d831ec7")
	require.NoError(t, err)
	assert.Equal(t, "USDT", tok.Symbol)

	adhoc, err := r.ResolveToken(chain.BSC, "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82")
	require.NoError(t, err)
	assert.Equal(t, chain.KindFungibleEVM, adhoc.Kind)
	assert.Equal(t, chain.DecimalsUnknown, adhoc.Decimals)
	assert.Equal(t, "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", adhoc.Address)

	mint, err := r.ResolveToken(chain.Solana, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)
	assert.Equal(t, "USDC", mint.Symbol)
}

func TestParseNetwork(t *testing.T) {
	for in, want := range map[string]chain.Network{
		"Ethereum": chain.Ethereum,
		"ARB":      chain.Arbitrum,
		"bnb":      chain.BSC,
		" sol ":    chain.Solana,
	} {
		got, err := chain.ParseNetwork(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := chain.ParseNetwork("polygon")
	assert.ErrorIs(t, err, errs.ErrUnsupportedNetwork)
}

func TestNetworkByChainID(t *testing.T) {
	r := chain.DefaultRegistry()

	n, err := r.NetworkByChainID(42161)
	require.NoError(t, err)
	assert.Equal(t, chain.Arbitrum, n.Name)

	_, err = r.NetworkByChainID(10)
	assert.ErrorIs(t, err, errs.ErrUnsupportedNetwork)
}

func TestApplyOverlay(t *testing.T) {
	o, err := chain.ParseOverlay([]byte(`
networks:
  arbitrum:
    deposit_contract: "0x0000000000000000000000000000000000000abc"
  solana:
    deposit_contract: "11111111111111111111111111111111"
    treasury: "SysvarRent111111111111111111111111111111111"
    pda_seeds:
      - ["user", "{payer}"]
tokens:
  - network: bsc
    symbol: cake
    address: "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"
    decimals: 18
`))
	require.NoError(t, err)

	r := chain.DefaultRegistry()
	require.NoError(t, r.Apply(o))

	arb, err := r.Network("arbitrum")
	require.NoError(t, err)
	assert.Equal(t, "0x0000000000000000000000000000000000000abc", arb.DepositContract)

	sol, err := r.Network("solana")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"user", "{payer}"}}, sol.PDASeeds)

	cake, err := r.ResolveToken(chain.BSC, "Cake")
	require.NoError(t, err)
	assert.Equal(t, int32(18), cake.Decimals)
	assert.False(t, cake.Stablecoin)
}

func TestApplyOverlayRejectsBadAddress(t *testing.T) {
	o := &chain.Overlay{Networks: map[string]chain.NetworkOverlay{"bsc": {DepositContract: "0x123"}}}
	err := chain.DefaultRegistry().Apply(o)
	assert.ErrorIs(t, err, errs.ErrInvalidAddress)
}

func TestExplorerURL(t *testing.T) {
	r := chain.DefaultRegistry()
	n, err := r.Network("bsc")
	require.NoError(t, err)
	assert.Equal(t, "https://bscscan.com/tx/0xabc", n.ExplorerURL("0xabc"))
	assert.Empty(t, n.ExplorerURL(""))
}
