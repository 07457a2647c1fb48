package chain

// Network names one of the supported blockchains.
type Network string

const (
	Ethereum Network = "ethereum"
	Arbitrum Network = "arbitrum"
	BSC      Network = "bsc"
	Solana   Network = "solana"
)

// Family selects the transaction builder for a network.
type Family int

const (
	FamilyEVM Family = iota
	FamilySolana
)

func (f Family) String() string {
	switch f {
	case FamilyEVM:
		return "evm"
	case FamilySolana:
		return "solana"
	default:
		return "unknown"
	}
}

// TokenKind determines whether a transfer is a native-value call or a contract call.
type TokenKind string

const (
	KindNative        TokenKind = "native"
	KindFungibleEVM   TokenKind = "fungible-evm"
	KindFungibleOther TokenKind = "fungible-other"
)

// NetworkInfo is immutable per-network reference data.
type NetworkInfo struct {
	Name           Network
	Family         Family
	ChainID        int64 // 0 for non-EVM networks
	NativeSymbol   string
	NativeDecimals int32
	ExplorerTxURL  string

	// EVM: exchange deposit contract. Solana: exchange deposit program.
	DepositContract string

	// Solana only.
	Treasury string
	PDASeeds [][]string
}

// IsEVM reports whether the network executes EVM transactions.
func (n *NetworkInfo) IsEVM() bool {
	return n.Family == FamilyEVM
}

// ExplorerURL returns a human-readable link for a transaction id.
func (n *NetworkInfo) ExplorerURL(txID string) string {
	if n.ExplorerTxURL == "" || txID == "" {
		return ""
	}
	return n.ExplorerTxURL + txID
}

// Token describes a registry entry keyed by (network, symbol).
type Token struct {
	Network    Network
	Symbol     string
	Name       string
	Address    string // empty for native assets
	Decimals   int32  // -1 when unknown and must be fetched live
	Kind       TokenKind
	Stablecoin bool

	adhoc bool
}

// IsRegistered reports whether the token comes from the registry rather than a bare address.
// Only registered tokens have an exchange symbol.
func (t *Token) IsRegistered() bool {
	return !t.adhoc
}

// IsNative reports whether the token is the network's native asset.
func (t *Token) IsNative() bool {
	return t.Kind == KindNative
}
