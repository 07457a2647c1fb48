package address

import (
	"context"

	"github/chapool/go-bridge/internal/wallet/chain"
)

const (
	// DefaultEVMPath is the first account of the standard Ethereum BIP44 path, shared by all EVM chains.
	DefaultEVMPath = "m/44'/60'/0'/0/0"
	// DefaultSolanaPath is the fully hardened SLIP-0010 path used by common Solana wallets.
	DefaultSolanaPath = "m/44'/501'/0'/0'"
)

// Service derives keys and addresses from a BIP39 seed.
type Service interface {
	// DerivePrivateKey derives the private key for a chain family.
	// EVM keys are 32-byte secp256k1 scalars; Solana keys are 64-byte ed25519 private keys.
	// WARNING: Private key should be cleared after use
	DerivePrivateKey(ctx context.Context, seed []byte, path string, family chain.Family) ([]byte, error)

	// DeriveAddress derives the account address for a chain family.
	DeriveAddress(ctx context.Context, seed []byte, path string, family chain.Family) (string, error)

	// DefaultPath returns the derivation path used when none is configured.
	DefaultPath(family chain.Family) string
}
