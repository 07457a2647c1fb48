package signer

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/errs"
)

// Domain and constant message fields of the exchange's withdrawal schema.
const (
	WithdrawDomainName    = "Aster"
	WithdrawDomainVersion = "1"
	WithdrawActionType    = "Withdraw"
	WithdrawOriginChain   = "Mainnet"

	defaultDestinationChain = "ETH"
	zeroAddress             = "0x0000000000000000000000000000000000000000"
)

var destinationChainNames = map[int64]string{
	1:     "ETH",
	56:    "BSC",
	42161: "Arbitrum",
}

// DestinationChainName maps an EVM chain id to the exchange's chain name, defaulting to ETH.
func DestinationChainName(chainID int64) string {
	if name, ok := destinationChainNames[chainID]; ok {
		return name
	}
	return defaultDestinationChain
}

// NormalizeAddress lower-cases then checksums an EVM address.
func NormalizeAddress(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !common.IsHexAddress(addr) {
		return "", errs.New(errs.KindInvalidAddress, "invalid EVM address %q", addr)
	}
	return common.HexToAddress(strings.ToLower(addr)).Hex(), nil
}

// WithdrawTypedData builds the domain-separated message for a withdrawal.
func WithdrawTypedData(action *WithdrawAction) (apitypes.TypedData, error) {
	destination, err := NormalizeAddress(action.Destination)
	if err != nil {
		return apitypes.TypedData{}, err
	}
	if action.Nonce == nil || action.Nonce.Sign() < 0 {
		return apitypes.TypedData{}, errs.Validation("withdraw nonce must be a non-negative integer")
	}

	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Action": {
				{Name: "type", Type: "string"},
				{Name: "destination", Type: "address"},
				{Name: "destination Chain", Type: "string"},
				{Name: "token", Type: "string"},
				{Name: "amount", Type: "string"},
				{Name: "fee", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "aster chain", Type: "string"},
			},
		},
		PrimaryType: "Action",
		Domain: apitypes.TypedDataDomain{
			Name:              WithdrawDomainName,
			Version:           WithdrawDomainVersion,
			ChainId:           math.NewHexOrDecimal256(action.ChainID),
			VerifyingContract: zeroAddress,
		},
		Message: apitypes.TypedDataMessage{
			"type":              WithdrawActionType,
			"destination":       destination,
			"destination Chain": DestinationChainName(action.ChainID),
			"token":             action.Token,
			"amount":            action.Amount,
			"fee":               action.Fee,
			"nonce":             action.Nonce,
			"aster chain":       WithdrawOriginChain,
		},
	}, nil
}

// SignWithdrawal returns the 0x-prefixed 65-byte signature (v in {27, 28}) and the signed digest.
// An invalid destination fails with InvalidAddress before anything is signed.
func SignWithdrawal(action *WithdrawAction, privateKey *ecdsa.PrivateKey) (string, []byte, error) {
	typedData, err := WithdrawTypedData(action)
	if err != nil {
		return "", nil, err
	}

	digest, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to hash typed data")
	}

	sig, err := crypto.Sign(digest, privateKey)
	if err != nil {
		return "", nil, errors.Wrap(err, "failed to sign typed data")
	}
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), digest, nil
}
