package address

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
)

// deriveSecp256k1 walks a BIP32 path from the master key and returns the 32-byte private key.
func deriveSecp256k1(seed []byte, path string) ([]byte, error) {
	indices, err := parseBIP44Path(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse BIP44 path")
	}

	masterKey, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create master key")
	}

	key := masterKey
	for _, index := range indices {
		key, err = key.NewChildKey(index)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to derive child key at index %d", index)
		}
	}

	out := make([]byte, len(key.Key))
	copy(out, key.Key)
	return out, nil
}

func evmAddress(privateKey []byte) (string, error) {
	ecdsaPrivateKey, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to convert to ECDSA private key")
	}

	publicKeyECDSA, ok := ecdsaPrivateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return "", errors.New("failed to cast public key to ECDSA")
	}

	return crypto.PubkeyToAddress(*publicKeyECDSA).Hex(), nil
}
