package keystore

import (
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/wallet/seed"
	"golang.org/x/crypto/scrypt"
)

// Decrypt opens a keystore. A wrong password is a KeyDerivation error.
func Decrypt(ks *KeystoreJSON, password string) (string, error) {
	if ks.Version != version || ks.Crypto.Cipher != cipherName || ks.Crypto.KDF != kdfName {
		return "", errs.New(errs.KindKeyDerivation, "unsupported keystore (version %d, cipher %q, kdf %q)",
			ks.Version, ks.Crypto.Cipher, ks.Crypto.KDF)
	}

	salt, err := hex.DecodeString(ks.Crypto.KDFParams.Salt)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode salt")
	}

	//nolint:varnamelen // iv is a common abbreviation for initialization vector
	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode IV")
	}

	ciphertext, err := hex.DecodeString(ks.Crypto.Ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode ciphertext")
	}

	expectedMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return "", errors.Wrap(err, "failed to decode MAC")
	}

	p := ks.Crypto.KDFParams
	//nolint:mnd // the MAC key is derivedKey[16:32]
	if p.DKLen < 32 {
		return "", errs.New(errs.KindKeyDerivation, "keystore dklen %d is too short", p.DKLen)
	}

	derivedKey, err := scrypt.Key([]byte(password), salt, p.N, p.R, p.P, p.DKLen)
	if err != nil {
		return "", errors.Wrap(err, "failed to derive key")
	}
	defer seed.Zero(derivedKey)

	if subtle.ConstantTimeCompare(mac(derivedKey[16:32], ciphertext), expectedMAC) != 1 {
		return "", errs.New(errs.KindKeyDerivation, "invalid keystore password")
	}

	plaintext, err := aes128CTR(derivedKey[:16], iv, ciphertext)
	if err != nil {
		return "", errors.Wrap(err, "failed to decrypt mnemonic")
	}

	return string(plaintext), nil
}

// ReadFile loads and decrypts the keystore at path.
func ReadFile(path string, password string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "failed to read keystore file")
	}

	var ks KeystoreJSON
	if err := json.Unmarshal(content, &ks); err != nil {
		return "", errors.Wrap(err, "failed to parse keystore file")
	}

	return Decrypt(&ks, password)
}
