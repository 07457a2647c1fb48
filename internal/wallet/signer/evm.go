package signer

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// SignEIP1559Transaction signs an EIP-1559 transaction
func SignEIP1559Transaction(privateKey *ecdsa.PrivateKey, req *SignEVMRequest) (*types.Transaction, error) {
	if privateKey == nil {
		return nil, errors.New("private key is required")
	}
	if req.MaxFeePerGas == nil || req.MaxPriorityFeePerGas == nil {
		return nil, errors.New("gas fee caps are required")
	}
	if !common.IsHexAddress(req.To) {
		return nil, errors.Errorf("invalid recipient address %q", req.To)
	}

	toAddress := common.HexToAddress(req.To)

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}

	//nolint:varnamelen // tx is a common abbreviation for transaction
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(req.ChainID),
		Nonce:     req.Nonce,
		GasTipCap: req.MaxPriorityFeePerGas,
		GasFeeCap: req.MaxFeePerGas,
		Gas:       req.GasLimit,
		To:        &toAddress,
		Value:     value,
		Data:      req.Data,
	})

	signer := types.NewLondonSigner(big.NewInt(req.ChainID))
	signedTx, err := types.SignTx(tx, signer, privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return signedTx, nil
}
