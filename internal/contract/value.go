package contract

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const etherDecimals = 18

// ParseEther converts a decimal ETH amount ("0.5") to wei.
func ParseEther(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: value %q: %v", ErrInvalidParam, amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: negative value %q", ErrInvalidParam, amount)
	}
	wei := d.Shift(etherDecimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("%w: value %q has more than %d decimals", ErrInvalidParam, amount, etherDecimals)
	}
	return wei.BigInt(), nil
}

// FormatEther renders wei as a decimal ETH string.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}
