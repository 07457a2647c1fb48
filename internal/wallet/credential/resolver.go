package credential

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet/address"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/seed"
)

// Resolver resolves signing keys from the per-network configured sources.
type Resolver struct {
	deriver address.Service
	sources map[chain.Network]Source
}

func NewResolver(deriver address.Service, sources map[chain.Network]Source) *Resolver {
	if sources == nil {
		sources = map[chain.Network]Source{}
	}
	return &Resolver{deriver: deriver, sources: sources}
}

// Resolve returns the key for a network. The first available tier wins:
// explicit key, configured key, configured mnemonic.
func (r *Resolver) Resolve(ctx context.Context, network *chain.NetworkInfo, explicit string) (*Key, error) {
	return ResolveKey(ctx, r.deriver, network, explicit, r.sources[network.Name])
}

// HasCredentials reports whether any tier is configured for the network.
func (r *Resolver) HasCredentials(n chain.Network) bool {
	src := r.sources[n]
	return strings.TrimSpace(src.PrivateKey) != "" || strings.TrimSpace(src.Mnemonic) != ""
}

// ResolveKey applies the three-tier priority without merging tiers.
// A missing credential is NoCredentials; a malformed phrase or key is KeyDerivation.
func ResolveKey(ctx context.Context, deriver address.Service, network *chain.NetworkInfo, explicit string, src Source) (*Key, error) {
	log := util.LogFromContext(ctx)

	key := &Key{Network: network.Name, Family: network.Family}

	var err error
	switch {
	case strings.TrimSpace(explicit) != "":
		key.Tier = TierExplicit
		key.raw, err = parsePrivateKey(network.Family, explicit)
	case strings.TrimSpace(src.PrivateKey) != "":
		key.Tier = TierConfigured
		key.raw, err = parsePrivateKey(network.Family, src.PrivateKey)
	case strings.TrimSpace(src.Mnemonic) != "":
		key.Tier = TierMnemonic
		key.raw, err = deriveFromMnemonic(ctx, deriver, network.Family, src)
	default:
		return nil, errs.New(errs.KindNoCredentials, "no private key or mnemonic configured for %s", network.Name)
	}

	if err != nil {
		return nil, errs.Wrap(errs.KindKeyDerivation, err, "cannot load %s key from %s source", network.Name, key.Tier)
	}

	log.Debug().Str("network", string(network.Name)).Str("tier", string(key.Tier)).Msg("Resolved signing key")

	return key, nil
}

func deriveFromMnemonic(ctx context.Context, deriver address.Service, family chain.Family, src Source) ([]byte, error) {
	seedBytes, err := seed.FromMnemonic(src.Mnemonic, src.Passphrase)
	if err != nil {
		return nil, err
	}
	defer seed.Zero(seedBytes)

	raw, err := deriver.DerivePrivateKey(ctx, seedBytes, src.Path, family)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive private key")
	}

	return raw, nil
}

// parsePrivateKey accepts hex (EVM) or base58 / JSON byte array (Solana keypair file format).
func parsePrivateKey(family chain.Family, s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	switch family {
	case chain.FamilyEVM:
		b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"))
		if err != nil {
			return nil, errors.New("private key is not valid hex")
		}
		if _, err := crypto.ToECDSA(b); err != nil {
			seed.Zero(b)
			return nil, errors.Wrap(err, "invalid secp256k1 private key")
		}
		return b, nil

	case chain.FamilySolana:
		var b []byte
		if strings.HasPrefix(s, "[") {
			var ints []int
			if err := json.Unmarshal([]byte(s), &ints); err != nil {
				return nil, errors.New("private key is not a valid byte array")
			}
			b = make([]byte, len(ints))
			for i, v := range ints {
				if v < 0 || v > 255 {
					return nil, errors.New("private key is not a valid byte array")
				}
				b[i] = byte(v)
			}
		} else {
			pk, err := solana.PrivateKeyFromBase58(s)
			if err != nil {
				return nil, errors.New("private key is not valid base58")
			}
			b = pk
		}
		if len(b) != ed25519.PrivateKeySize {
			seed.Zero(b)
			return nil, errors.Errorf("expected %d byte ed25519 key", ed25519.PrivateKeySize)
		}
		return b, nil

	default:
		return nil, errors.Errorf("unsupported chain family: %s", family)
	}
}
