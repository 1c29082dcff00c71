package utils

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"cat20_wallet/internal/domain/entity"

	"github.com/shopspring/decimal"
)

// decimalLiteral accepts plain non-negative decimals: "12", "0.5", "1.230".
var decimalLiteral = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ScaleByDecimals converts a user-entered decimal amount into smallest token units.
// Example: amount="1.23", decimals=2 => 123.
// Inputs with a sign, exponent, surrounding spaces or more fractional digits than
// decimals allows fail with entity.ErrInvalidAmount; nothing is truncated.
func ScaleByDecimals(amount string, decimals uint8) (*big.Int, error) {
	if !decimalLiteral.MatchString(amount) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", entity.ErrInvalidAmount, amount)
	}
	if i := strings.IndexByte(amount, '.'); i >= 0 && len(amount)-i-1 > int(decimals) {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", entity.ErrInvalidAmount, amount, decimals)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidAmount, err)
	}

	scaled := d.Shift(int32(decimals))
	if !scaled.IsInteger() {
		return nil, fmt.Errorf("%w: %q is not representable with %d decimals", entity.ErrInvalidAmount, amount, decimals)
	}
	return scaled.BigInt(), nil
}

// UnscaleByDecimals renders an integer amount as a fixed-point string with exactly
// decimals fractional digits. Example: amount=100000000, decimals=8 => "1.00000000".
func UnscaleByDecimals(amount *big.Int, decimals uint8) string {
	if amount == nil {
		amount = new(big.Int)
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).StringFixed(int32(decimals))
}

// FormatBigInt converts an integer amount to a human-readable string with trailing
// zeros removed. Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatBigInt(amount *big.Int, decimals uint8) string {
	if amount == nil || amount.Sign() == 0 {
		return "0"
	}

	formatted := UnscaleByDecimals(amount, decimals)
	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		formatted = strings.TrimRight(formatted, ".") // "1." => "1"
	}
	return formatted
}

// ParseBigInt parses a base-10 integer that may have arrived as a JSON string or number.
func ParseBigInt(s string) (*big.Int, error) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" {
		return nil, fmt.Errorf("empty integer")
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}
