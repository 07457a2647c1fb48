package chain

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github/chapool/go-bridge/internal/errs"
)

// DecimalsUnknown marks a token whose precision must be read from chain.
const DecimalsUnknown int32 = -1

// Registry holds the network and token lookup tables. It is read-only after construction.
type Registry struct {
	networks map[Network]*NetworkInfo
	tokens   map[Network]map[string]*Token // keyed by upper-case symbol
}

// DefaultRegistry returns the built-in networks and well-known tokens.
// Deposit contracts and the Solana program are not built in and must come from configuration.
func DefaultRegistry() *Registry {
	r := &Registry{
		networks: map[Network]*NetworkInfo{
			Ethereum: {Name: Ethereum, Family: FamilyEVM, ChainID: 1, NativeSymbol: "ETH", NativeDecimals: 18, ExplorerTxURL: "https://etherscan.io/tx/"},
			Arbitrum: {Name: Arbitrum, Family: FamilyEVM, ChainID: 42161, NativeSymbol: "ETH", NativeDecimals: 18, ExplorerTxURL: "https://arbiscan.io/tx/"},
			BSC:      {Name: BSC, Family: FamilyEVM, ChainID: 56, NativeSymbol: "BNB", NativeDecimals: 18, ExplorerTxURL: "https://bscscan.com/tx/"},
			Solana:   {Name: Solana, Family: FamilySolana, NativeSymbol: "SOL", NativeDecimals: 9, ExplorerTxURL: "https://solscan.io/tx/"},
		},
		tokens: make(map[Network]map[string]*Token),
	}

	for _, n := range r.networks {
		r.addToken(&Token{Network: n.Name, Symbol: n.NativeSymbol, Name: n.NativeSymbol, Decimals: n.NativeDecimals, Kind: KindNative})
	}

	// Precision of fungible tokens is always read from chain.
	for _, t := range []*Token{
		{Network: Ethereum, Symbol: "USDT", Name: "Tether USD", Address: "0xdAC17F958D2ee523a2206206994597C13D831ec7"},
		{Network: Ethereum, Symbol: "USDC", Name: "USD Coin", Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{Network: Arbitrum, Symbol: "USDT", Name: "Tether USD", Address: "0xFd086bC7CD5C481DCC9C85ebE478A1C0b69FCbb9"},
		{Network: Arbitrum, Symbol: "USDC", Name: "USD Coin", Address: "0xaf88d065e77c8cC2239327C5EDb3A432268e5831"},
		{Network: BSC, Symbol: "USDT", Name: "Tether USD", Address: "0x55d398326f99059fF775485246999027B3197955"},
		{Network: BSC, Symbol: "USDC", Name: "USD Coin", Address: "0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"},
	} {
		t.Kind = KindFungibleEVM
		t.Decimals = DecimalsUnknown
		t.Stablecoin = true
		r.addToken(t)
	}

	for _, t := range []*Token{
		{Network: Solana, Symbol: "USDC", Name: "USD Coin", Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
		{Network: Solana, Symbol: "USDT", Name: "Tether USD", Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"},
	} {
		t.Kind = KindFungibleOther
		t.Decimals = DecimalsUnknown
		t.Stablecoin = true
		r.addToken(t)
	}

	return r
}

func (r *Registry) addToken(t *Token) {
	if r.tokens[t.Network] == nil {
		r.tokens[t.Network] = make(map[string]*Token)
	}
	r.tokens[t.Network][strings.ToUpper(t.Symbol)] = t
}

// ParseNetwork maps a user-supplied name to a Network. Matching is case-insensitive and accepts
// the common short names.
func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ethereum", "eth", "mainnet":
		return Ethereum, nil
	case "arbitrum", "arb", "arbitrum-one":
		return Arbitrum, nil
	case "bsc", "bnb", "binance":
		return BSC, nil
	case "solana", "sol":
		return Solana, nil
	default:
		return "", errs.New(errs.KindUnsupportedNetwork, "unsupported network %q", name)
	}
}

// Network returns reference data for a network name.
func (r *Registry) Network(name string) (*NetworkInfo, error) {
	n, err := ParseNetwork(name)
	if err != nil {
		return nil, err
	}

	info, ok := r.networks[n]
	if !ok {
		return nil, errs.New(errs.KindUnsupportedNetwork, "network %q is not configured", name)
	}

	return info, nil
}

// NetworkByChainID finds the EVM network with the given chain id.
func (r *Registry) NetworkByChainID(chainID int64) (*NetworkInfo, error) {
	for _, n := range r.networks {
		if n.IsEVM() && n.ChainID == chainID {
			return n, nil
		}
	}
	return nil, errs.New(errs.KindUnsupportedNetwork, "no network with chain id %d", chainID)
}

// Networks lists all networks ordered by name.
func (r *Registry) Networks() []*NetworkInfo {
	result := make([]*NetworkInfo, 0, len(r.networks))
	for _, n := range r.networks {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Tokens lists the registered tokens of a network ordered by symbol.
func (r *Registry) Tokens(n Network) []*Token {
	result := make([]*Token, 0, len(r.tokens[n]))
	for _, t := range r.tokens[n] {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Symbol < result[j].Symbol })
	return result
}

// ResolveToken resolves a symbol or a contract/mint address on a network.
// Symbol lookup is case-insensitive. An unregistered symbol is an UnsupportedToken failure.
// A well-formed but unregistered address yields an ad-hoc fungible token with unknown decimals.
func (r *Registry) ResolveToken(n Network, ref string) (*Token, error) {
	info, ok := r.networks[n]
	if !ok {
		return nil, errs.New(errs.KindUnsupportedNetwork, "network %q is not configured", n)
	}

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errs.Validation("token must not be empty")
	}

	if t, ok := r.tokens[n][strings.ToUpper(ref)]; ok {
		return t, nil
	}

	if info.IsEVM() && common.IsHexAddress(ref) {
		for _, t := range r.tokens[n] {
			if strings.EqualFold(t.Address, ref) {
				return t, nil
			}
		}
		return &Token{Network: n, Symbol: ref, Address: common.HexToAddress(ref).Hex(), Decimals: DecimalsUnknown, Kind: KindFungibleEVM, adhoc: true}, nil
	}

	if !info.IsEVM() {
		for _, t := range r.tokens[n] {
			if t.Address == ref {
				return t, nil
			}
		}
		if _, err := solana.PublicKeyFromBase58(ref); err == nil && len(ref) >= 32 {
			return &Token{Network: n, Symbol: ref, Address: ref, Decimals: DecimalsUnknown, Kind: KindFungibleOther, adhoc: true}, nil
		}
	}

	return nil, errs.New(errs.KindUnsupportedToken, "token %q is not supported on %s", ref, n)
}
