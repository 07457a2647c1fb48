package credential

import (
	"crypto/ecdsa"
	"crypto/ed25519"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/seed"
)

// Tier records which source produced a key.
type Tier string

const (
	TierExplicit   Tier = "explicit"
	TierConfigured Tier = "configured"
	TierMnemonic   Tier = "mnemonic"
)

// Source is the network-scoped signing material supplied by configuration.
type Source struct {
	PrivateKey string
	Mnemonic   string
	Passphrase string
	Path       string // empty selects the family default
}

// Key is a resolved signing key. It is never cached; callers must Zero it when done.
type Key struct {
	Network chain.Network
	Family  chain.Family
	Tier    Tier

	raw []byte
}

// Zero clears the key material.
func (k *Key) Zero() {
	if k == nil {
		return
	}
	seed.Zero(k.raw)
	k.raw = nil
}

// ECDSA returns the secp256k1 key of an EVM credential.
func (k *Key) ECDSA() (*ecdsa.PrivateKey, error) {
	if k.Family != chain.FamilyEVM {
		return nil, errors.Errorf("%s key is not an EVM key", k.Network)
	}
	if len(k.raw) == 0 {
		return nil, errors.New("key has been cleared")
	}
	return crypto.ToECDSA(k.raw)
}

// Solana returns the ed25519 key of a Solana credential.
func (k *Key) Solana() (solana.PrivateKey, error) {
	if k.Family != chain.FamilySolana {
		return nil, errors.Errorf("%s key is not a Solana key", k.Network)
	}
	if len(k.raw) != ed25519.PrivateKeySize {
		return nil, errors.New("key has been cleared")
	}
	out := make(solana.PrivateKey, len(k.raw))
	copy(out, k.raw)
	return out, nil
}

// Address returns the account address controlled by the key.
func (k *Key) Address() (string, error) {
	switch k.Family {
	case chain.FamilyEVM:
		pk, err := k.ECDSA()
		if err != nil {
			return "", err
		}
		return crypto.PubkeyToAddress(pk.PublicKey).Hex(), nil
	case chain.FamilySolana:
		pk, err := k.Solana()
		if err != nil {
			return "", err
		}
		defer seed.Zero(pk)
		return pk.PublicKey().String(), nil
	default:
		return "", errors.Errorf("unsupported chain family: %s", k.Family)
	}
}
