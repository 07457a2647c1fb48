package address

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/seed"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestDeriveAddressEVM(t *testing.T) {
	s, err := seed.FromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	addr, err := NewService().DeriveAddress(t.Context(), s, "", chain.FamilyEVM)
	require.NoError(t, err)
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", addr)
}

func TestDeriveAddressSolana(t *testing.T) {
	s, err := seed.FromMnemonic(testMnemonic, "")
	require.NoError(t, err)

	addr, err := NewService().DeriveAddress(t.Context(), s, DefaultSolanaPath, chain.FamilySolana)
	require.NoError(t, err)
	assert.Equal(t, "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk", addr)
}

// SLIP-0010 ed25519 test vector 1.
func TestSlip10Ed25519Vector(t *testing.T) {
	s, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)

	key, chainCode, err := slip10Ed25519(s, nil)
	require.NoError(t, err)
	assert.Equal(t, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7", hex.EncodeToString(key))
	assert.Equal(t, "90046a93de5380a72b5e45010748567d5ea02bbf6522f979e05c0d8d8ca9fffb", hex.EncodeToString(chainCode))

	key, _, err = slip10Ed25519(s, []uint32{hardenedOffset})
	require.NoError(t, err)
	assert.Equal(t, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3", hex.EncodeToString(key))

	_, _, err = slip10Ed25519(s, []uint32{1})
	assert.Error(t, err)
}

func TestParseBIP44Path(t *testing.T) {
	indices, err := parseBIP44Path("m/44'/60'/0'/0/7")
	require.NoError(t, err)
	assert.Equal(t, []uint32{hardenedOffset + 44, hardenedOffset + 60, hardenedOffset, 0, 7}, indices)

	for _, bad := range []string{"", "44'/60'", "m/x", "m/44'/-1"} {
		_, err := parseBIP44Path(bad)
		assert.Error(t, err, bad)
	}
}
