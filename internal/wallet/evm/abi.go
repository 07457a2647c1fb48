package evm

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

const erc20JSON = `[
{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function","stateMutability":"view"},
{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function","stateMutability":"view"},
{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"type":"function","stateMutability":"view"},
{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"type":"function","stateMutability":"view"},
{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"type":"function","stateMutability":"nonpayable"}
]`

// Exchange deposit contract entry points.
const depositJSON = `[
{"inputs":[{"name":"currency","type":"address"},{"name":"amount","type":"uint256"},{"name":"broker","type":"uint256"}],"name":"deposit","outputs":[],"type":"function","stateMutability":"nonpayable"},
{"inputs":[{"name":"broker","type":"uint256"}],"name":"depositNative","outputs":[],"type":"function","stateMutability":"payable"}
]`

var (
	ERC20ABI   = mustParseABI(erc20JSON)
	DepositABI = mustParseABI(depositJSON)
)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// MethodID returns the 4-byte selector of a method in parsed.
func MethodID(parsed abi.ABI, method string) []byte {
	m, ok := parsed.Methods[method]
	if !ok {
		return nil
	}
	return m.ID
}

func call(ctx context.Context, c Client, contract common.Address, parsed abi.ABI, method string, args ...any) ([]any, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to pack %s", method)
	}

	resp, err := c.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", method)
	}

	out, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unpack %s", method)
	}
	if len(out) == 0 {
		return nil, errors.Errorf("%s returned no values", method)
	}

	return out, nil
}

// TokenBalance reads balanceOf(owner).
func TokenBalance(ctx context.Context, c Client, token, owner common.Address) (*big.Int, error) {
	out, err := call(ctx, c, token, ERC20ABI, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil //nolint:forcetypeassert
}

// TokenDecimals reads decimals().
func TokenDecimals(ctx context.Context, c Client, token common.Address) (uint8, error) {
	out, err := call(ctx, c, token, ERC20ABI, "decimals")
	if err != nil {
		return 0, err
	}
	decimals, ok := out[0].(uint8)
	if !ok {
		return 0, errors.New("decimals returned an unexpected type")
	}
	return decimals, nil
}

// TokenSymbol reads symbol().
func TokenSymbol(ctx context.Context, c Client, token common.Address) (string, error) {
	out, err := call(ctx, c, token, ERC20ABI, "symbol")
	if err != nil {
		return "", err
	}
	symbol, ok := out[0].(string)
	if !ok {
		return "", errors.New("symbol returned an unexpected type")
	}
	return symbol, nil
}

// Allowance reads allowance(owner, spender).
func Allowance(ctx context.Context, c Client, token, owner, spender common.Address) (*big.Int, error) {
	out, err := call(ctx, c, token, ERC20ABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	return abi.ConvertType(out[0], new(big.Int)).(*big.Int), nil //nolint:forcetypeassert
}

func PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return ERC20ABI.Pack("approve", spender, amount)
}

func PackDeposit(token common.Address, amount *big.Int, broker uint64) ([]byte, error) {
	return DepositABI.Pack("deposit", token, amount, new(big.Int).SetUint64(broker))
}

func PackDepositNative(broker uint64) ([]byte, error) {
	return DepositABI.Pack("depositNative", new(big.Int).SetUint64(broker))
}
