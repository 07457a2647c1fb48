package address

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
)

// SLIP-0010 master key salt for ed25519.
var ed25519Curve = []byte("ed25519 seed")

// deriveEd25519 derives an ed25519 private key along a fully hardened SLIP-0010 path.
func deriveEd25519(seed []byte, path string) ([]byte, error) {
	indices, err := parseBIP44Path(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse BIP44 path")
	}

	key, _, err := slip10Ed25519(seed, indices)
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range key {
			key[i] = 0
		}
	}()

	return ed25519.NewKeyFromSeed(key), nil
}

// slip10Ed25519 returns the 32-byte private key and chain code at the given indices.
func slip10Ed25519(seed []byte, indices []uint32) ([]byte, []byte, error) {
	mac := hmac.New(sha512.New, ed25519Curve)
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chainCode := sum[:32], sum[32:]

	for _, index := range indices {
		if index < hardenedOffset {
			return nil, nil, errors.Errorf("ed25519 derivation requires hardened indices, got %d", index)
		}

		data := make([]byte, 0, 1+len(key)+4)
		data = append(data, 0x00)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index)

		mac = hmac.New(sha512.New, chainCode)
		mac.Write(data)
		sum = mac.Sum(nil)
		key, chainCode = sum[:32], sum[32:]
	}

	return key, chainCode, nil
}

func solanaAddress(privateKey []byte) (string, error) {
	if len(privateKey) != ed25519.PrivateKeySize {
		return "", errors.New("invalid ed25519 private key length")
	}
	return solana.PrivateKey(privateKey).PublicKey().String(), nil
}
