package vnwords

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	maxAmount = decimal.NewFromInt(math.MaxInt64)
	minAmount = decimal.NewFromInt(math.MinInt64)

	// maxDigits is the digit count of math.MaxInt64.
	maxDigits = int64(len(maxAmount.String()))

	// groupedAmount matches vi-VN grouping: dots between thousands and an
	// optional comma before the fraction ("1.500.000", "1.500,75").
	groupedAmount = regexp.MustCompile(`^-?\d{1,3}(\.\d{3})+(,\d+)?$`)
)

// FromFloat reads a floating point amount. The fractional part is
// truncated toward zero. NaN and infinities are rejected.
func FromFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("%w: %v is not a finite number", ErrInvalidArgument, f)
	}
	t := math.Trunc(f)
	// float64(math.MaxInt64) rounds up to 2^63, which is itself out of range.
	if t >= math.MaxInt64 || t < math.MinInt64 {
		return "", fmt.Errorf("%w: %v", ErrOutOfRange, f)
	}
	return Words(int64(t)), nil
}

// FromDecimal reads a decimal amount, truncating any fraction.
func FromDecimal(d decimal.Decimal) (string, error) {
	n, err := truncate(d)
	if err != nil {
		// d.String() would expand the exponent.
		return "", fmt.Errorf("%w: %se%d", err, clip(d.Coefficient().String()), d.Exponent())
	}
	return Words(n), nil
}

// truncate drops the fraction of d and checks it fits an int64. d is only
// rescaled once its exponent is known to be small.
func truncate(d decimal.Decimal) (int64, error) {
	if d.IsZero() {
		return 0, nil
	}
	exp := int64(d.Exponent())
	switch {
	case exp > maxDigits:
		return 0, ErrOutOfRange
	case exp < 0 && -exp > int64(d.NumDigits()):
		// |d| < 1
		return 0, nil
	}
	t := d.Truncate(0)
	if t.GreaterThan(maxAmount) || t.LessThan(minAmount) {
		return 0, ErrOutOfRange
	}
	return t.IntPart(), nil
}

// clip shortens s for error messages.
func clip(s string) string {
	const max = 32
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// FromString parses s as a decimal amount and reads it. Both plain
// ("1500000.5") and vi-VN grouped ("1.500.000,5") notations are accepted,
// as well as a trailing "đ" or "₫".
//
// A comma is always the decimal separator, so "1,500" reads as one đồng.
// Dots are thousands separators only in a fully grouped number such as
// "1.500" or "12.345.678"; otherwise a dot is a decimal point. Exponent
// notation and a leading "+" are rejected, as in core.ParseAmount. Unlike
// core.ParseAmount, negative amounts are accepted and read with "âm".
func FromString(s string) (string, error) {
	d, err := parseAmount(s)
	if err != nil {
		return "", err
	}
	n, err := truncate(d)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, clip(s))
	}
	return Words(n), nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimSuffix(clean, "₫")
	clean = strings.TrimSuffix(clean, "đ")
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrInvalidArgument)
	}
	if strings.HasPrefix(clean, "+") || strings.ContainsAny(clean, "eE") {
		return decimal.Zero, fmt.Errorf("%w: %q is not a plain amount", ErrInvalidArgument, clip(s))
	}

	if groupedAmount.MatchString(clean) {
		clean = strings.ReplaceAll(clean, ".", "")
	}
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidArgument, clip(s))
	}
	return d, nil
}
