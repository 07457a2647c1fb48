package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/wallet/seed"
	"golang.org/x/crypto/scrypt"
)

const (
	cipherName = "aes-128-ctr"
	kdfName    = "scrypt"
	version    = 3
)

// Encrypt seals a validated mnemonic under password.
//
//nolint:varnamelen // iv is a common abbreviation for initialization vector
func Encrypt(mnemonic string, password string, params ScryptParams) (*KeystoreJSON, error) {
	if password == "" {
		return nil, errors.New("keystore password must not be empty")
	}
	if err := seed.Validate(mnemonic); err != nil {
		return nil, err
	}

	//nolint:mnd // 32 is the standard salt size for scrypt
	salt := make([]byte, 32)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(err, "failed to generate salt")
	}

	//nolint:mnd // AES-128-CTR requires a 16-byte IV
	iv := make([]byte, 16)
	if _, err := rand.Read(iv); err != nil {
		return nil, errors.Wrap(err, "failed to generate IV")
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, params.N, params.R, params.P, params.DKLen)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive key")
	}
	defer seed.Zero(derivedKey)

	ciphertext, err := aes128CTR(derivedKey[:16], iv, []byte(seed.Normalize(mnemonic)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to encrypt mnemonic")
	}

	ks := &KeystoreJSON{
		Version: version,
		ID:      uuid.New().String(),
	}
	ks.Crypto.Ciphertext = hex.EncodeToString(ciphertext)
	ks.Crypto.CipherParams.IV = hex.EncodeToString(iv)
	ks.Crypto.Cipher = cipherName
	ks.Crypto.KDF = kdfName
	ks.Crypto.KDFParams.DKLen = params.DKLen
	ks.Crypto.KDFParams.Salt = hex.EncodeToString(salt)
	ks.Crypto.KDFParams.N = params.N
	ks.Crypto.KDFParams.R = params.R
	ks.Crypto.KDFParams.P = params.P
	ks.Crypto.MAC = hex.EncodeToString(mac(derivedKey[16:32], ciphertext))

	return ks, nil
}

// WriteFile encrypts mnemonic and writes the keystore to path with owner-only permissions.
func WriteFile(path string, mnemonic string, password string, params ScryptParams) error {
	ks, err := Encrypt(mnemonic, password, params)
	if err != nil {
		return err
	}

	content, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode keystore")
	}

	if err := os.WriteFile(path, content, 0o600); err != nil {
		return errors.Wrap(err, "failed to write keystore file")
	}
	return nil
}

//nolint:varnamelen
func aes128CTR(key []byte, iv []byte, in []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cipher")
	}

	out := make([]byte, len(in))
	cipher.NewCTR(block, iv).XORKeyStream(out, in)
	return out, nil
}

// mac is Keccak-256(derivedKey[16:32] || ciphertext), as in keystore v3.
func mac(key []byte, ciphertext []byte) []byte {
	return crypto.Keccak256(key, ciphertext)
}
