package wallet

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/wallet/chain"
)

// MaxAmountDigits bounds the digits of a user amount. 2^256-1 has 78 decimal digits.
const MaxAmountDigits = 78

// StablecoinMinimum is the smallest stablecoin withdrawal the exchange accepts.
var StablecoinMinimum = decimal.NewFromInt(1)

// ValidateAmount parses a user amount. It must be a plain decimal greater than zero;
// exponent notation is rejected.
func ValidateAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, errs.Validation("amount is required")
	}
	if strings.ContainsAny(amount, "eE") {
		return decimal.Zero, errs.Validation("amount %q must not use exponent notation", amount)
	}
	if countDigits(amount) > MaxAmountDigits {
		return decimal.Zero, errs.Validation("amount has more than %d digits", MaxAmountDigits)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, errs.Validation("amount %q is not a decimal number", amount)
	}

	if !d.IsPositive() {
		return decimal.Zero, errs.Validation("amount must be greater than zero, got %s", amount)
	}

	return d, nil
}

// CheckWithdrawMinimum enforces the stablecoin floor. Other tokens have no floor here.
func CheckWithdrawMinimum(token *chain.Token, amount decimal.Decimal) error {
	if token.Stablecoin && amount.LessThan(StablecoinMinimum) {
		return errs.New(errs.KindMinimumAmount, "minimum %s withdrawal is %s, got %s", token.Symbol, StablecoinMinimum, amount)
	}
	return nil
}

// ToBaseUnits scales amount to the token's smallest unit. Amounts finer than the token's
// precision are rejected rather than rounded.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if decimals < 0 {
		return nil, errs.Validation("token precision is unknown")
	}

	// bound the exponent before any rescaling so huge exponents never materialize
	coefDigits := int64(len(new(big.Int).Abs(amount.Coefficient()).String()))
	exp := int64(amount.Exponent()) + int64(decimals)
	if !amount.IsZero() && exp < -coefDigits {
		return nil, errs.Validation("amount %s has more than %d decimal places", amount, decimals)
	}
	if coefDigits+exp > MaxAmountDigits {
		return nil, errs.Validation("amount %s exceeds the uint256 range", amount)
	}

	scaled := amount.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, errs.Validation("amount %s has more than %d decimal places", amount, decimals)
	}

	value := scaled.BigInt()
	if value.Sign() < 0 || value.Cmp(math.MaxBig256) > 0 {
		return nil, errs.Validation("amount %s exceeds the uint256 range", amount)
	}
	return value, nil
}

// FromBaseUnits converts a smallest-unit integer to a decimal amount.
func FromBaseUnits(value *big.Int, decimals int32) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -decimals)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
