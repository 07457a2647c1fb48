package signer_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/wallet/signer"
)

func TestSignEIP1559Transaction(t *testing.T) {
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)

	tx, err := signer.SignEIP1559Transaction(key, &signer.SignEVMRequest{
		ChainID:              56,
		To:                   "0x55d398326f99059fF775485246999027B3197955",
		Value:                big.NewInt(1000),
		GasLimit:             60000,
		MaxFeePerGas:         big.NewInt(3_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(1_000_000_000),
		Nonce:                7,
		Data:                 []byte{0x09, 0x5e, 0xa7, 0xb3},
	})
	require.NoError(t, err)

	assert.Equal(t, uint8(types.DynamicFeeTxType), tx.Type())
	assert.Equal(t, uint64(7), tx.Nonce())

	from, err := types.Sender(types.NewLondonSigner(big.NewInt(56)), tx)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey), from)
}

func TestSignEIP1559TransactionRejectsBadInput(t *testing.T) {
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)

	_, err = signer.SignEIP1559Transaction(key, &signer.SignEVMRequest{ChainID: 1, To: "0x01"})
	assert.Error(t, err)

	_, err = signer.SignEIP1559Transaction(nil, &signer.SignEVMRequest{ChainID: 1})
	assert.Error(t, err)
}
