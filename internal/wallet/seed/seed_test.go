package seed_test

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/wallet/seed"
)

// BIP39 reference vector (passphrase "TREZOR").
const (
	vectorMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	vectorSeed     = "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"
)

func TestFromMnemonic(t *testing.T) {
	s, err := seed.FromMnemonic(vectorMnemonic, "TREZOR")
	require.NoError(t, err)
	assert.Equal(t, vectorSeed, hex.EncodeToString(s))
}

func TestFromMnemonicNormalizesWhitespace(t *testing.T) {
	s, err := seed.FromMnemonic("  Abandon abandon abandon abandon abandon abandon\tabandon abandon abandon abandon abandon ABOUT ", "TREZOR")
	require.NoError(t, err)
	assert.Equal(t, vectorSeed, hex.EncodeToString(s))
}

func TestFromMnemonicInvalid(t *testing.T) {
	_, err := seed.FromMnemonic("abandon abandon abandon", "")
	assert.ErrorIs(t, err, seed.ErrInvalidMnemonic)

	// bad checksum
	_, err = seed.FromMnemonic("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", "")
	assert.ErrorIs(t, err, seed.ErrInvalidMnemonic)
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	seed.Zero(b)
	assert.Equal(t, []byte{0, 0, 0}, b)
}

func TestValidate(t *testing.T) {
	require.NoError(t, seed.Validate("  "+strings.ToUpper(vectorMnemonic)+" "))
	require.ErrorIs(t, seed.Validate("abandon abandon"), seed.ErrInvalidMnemonic)
}

func TestGenerate(t *testing.T) {
	m, err := seed.Generate()
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m), 24)
	require.NoError(t, seed.Validate(m))
}
