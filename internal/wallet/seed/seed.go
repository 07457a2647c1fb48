package seed

import (
	"crypto/sha512"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

// ErrInvalidMnemonic is returned for phrases that fail the BIP39 word list or checksum check.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// FromMnemonic validates a recovery phrase and expands it to a 64-byte BIP39 seed.
// WARNING: Caller must clear the seed after use (see Zero).
func FromMnemonic(mnemonic string, password string) ([]byte, error) {
	mnemonic = Normalize(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	// BIP39: seed = PBKDF2(mnemonic, "mnemonic" + password, 2048, 64, SHA512)
	const (
		pbkdf2Iterations = 2048
		pbkdf2KeyLength  = 64
	)

	return pbkdf2.Key(
		[]byte(mnemonic),
		[]byte("mnemonic"+password),
		pbkdf2Iterations,
		pbkdf2KeyLength,
		sha512.New,
	), nil
}

// Validate checks the BIP39 word list and checksum of a phrase.
func Validate(mnemonic string) error {
	if !bip39.IsMnemonicValid(Normalize(mnemonic)) {
		return ErrInvalidMnemonic
	}
	return nil
}

// Generate returns a new 24-word phrase.
func Generate() (string, error) {
	//nolint:mnd // 256 bits of entropy yields 24 words
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate entropy")
	}
	defer Zero(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate mnemonic")
	}
	return mnemonic, nil
}

// Normalize collapses runs of whitespace and lower-cases the phrase.
func Normalize(mnemonic string) string {
	return strings.Join(strings.Fields(strings.ToLower(mnemonic)), " ")
}

// Zero overwrites b in place.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
