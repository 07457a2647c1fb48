package address

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/seed"
)

const hardenedOffset uint32 = 0x80000000

type service struct{}

// NewService creates a new AddressService
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService() Service {
	return &service{}
}

func (s *service) DerivePrivateKey(_ context.Context, seed []byte, path string, family chain.Family) ([]byte, error) {
	if path == "" {
		path = s.DefaultPath(family)
	}

	switch family {
	case chain.FamilyEVM:
		return deriveSecp256k1(seed, path)
	case chain.FamilySolana:
		return deriveEd25519(seed, path)
	default:
		return nil, errors.Errorf("unsupported chain family: %s", family)
	}
}

func (s *service) DeriveAddress(ctx context.Context, seedBytes []byte, path string, family chain.Family) (string, error) {
	privateKey, err := s.DerivePrivateKey(ctx, seedBytes, path, family)
	if err != nil {
		return "", errors.Wrap(err, "failed to derive private key")
	}

	// Clear private key after use
	defer seed.Zero(privateKey)

	switch family {
	case chain.FamilyEVM:
		return evmAddress(privateKey)
	case chain.FamilySolana:
		return solanaAddress(privateKey)
	default:
		return "", errors.Errorf("unsupported chain family: %s", family)
	}
}

func (s *service) DefaultPath(family chain.Family) string {
	if family == chain.FamilySolana {
		return DefaultSolanaPath
	}
	return DefaultEVMPath
}

// parseBIP44Path parses a BIP44 path string into indices
// Example: "m/44'/60'/0'/0/0" -> [2147483692, 2147483708, 2147483648, 0, 0]
func parseBIP44Path(path string) ([]uint32, error) {
	path = strings.TrimSpace(path)
	if path != "m" && !strings.HasPrefix(path, "m/") {
		return nil, errors.Errorf("invalid BIP44 path: %s", path)
	}

	parts := strings.Split(strings.TrimPrefix(strings.TrimPrefix(path, "m"), "/"), "/")
	indices := make([]uint32, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		hardened := strings.HasSuffix(part, "'") || strings.HasSuffix(part, "h")
		part = strings.TrimRight(part, "'h")

		index, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return nil, errors.Errorf("invalid path segment: %s", part)
		}

		idx := uint32(index)
		if hardened {
			idx += hardenedOffset
		}

		indices = append(indices, idx)
	}

	return indices, nil
}
