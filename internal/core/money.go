// Package core provides money parsing and handling utilities.
//
// Amounts are whole Vietnamese đồng: the currency has no minor unit, so
// Money stores an int64 count of đồng and every parsed value is rounded
// half-up to the nearest đồng.
package core

import (
	"math"
	"regexp"
	"strings"

	"finflow/internal/vnwords"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type Money struct {
	Dong int64
}

var (
	vnPrinter = message.NewPrinter(language.Vietnamese)

	// groupedPattern matches vi-VN thousand grouping such as "1.500.000".
	groupedPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(,\d+)?$`)
)

// ParseAmount converts a user-entered amount to Money.
//
// It accepts plain digits ("150000"), a decimal dot or comma ("1500,5"),
// vi-VN grouping ("1.500.000") and a trailing "đ"/"₫". The value is
// rounded half-up to whole đồng and must be positive.
//
// Examples:
//
//	ParseAmount("150000")    -> {150000}, nil
//	ParseAmount("1.500.000") -> {1500000}, nil
//	ParseAmount("99,5")      -> {100}, nil
//	ParseAmount("-1")        -> {}, ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "₫")
	s = strings.TrimSuffix(s, "đ")
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return Money{}, ErrInvalidAmount
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	if groupedPattern.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	d = d.Round(0)
	if !d.IsPositive() || d.GreaterThan(decimal.NewFromInt(maxAmount)) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Dong: d.IntPart()}, nil
}

// maxAmount caps a single transaction at one million billion đồng. About
// 9,200 transactions at the cap exceed int64, so totals go through
// AddChecked or the saturating Money.Add.
const maxAmount = 1_000_000_000_000_000

func (m Money) Validate() error {
	if m.Dong <= 0 || m.Dong > maxAmount {
		return ErrInvalidAmount
	}
	return nil
}

// AddChecked returns a+b, or ErrAmountOverflow if the sum leaves int64.
func AddChecked(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrAmountOverflow
	}
	return s, nil
}

// Add saturates at the int64 bounds. Chart and category aggregates use it;
// monthly totals use AddChecked instead.
func (m Money) Add(o Money) Money {
	s, err := AddChecked(m.Dong, o.Dong)
	if err != nil {
		return Money{Dong: saturate(o.Dong > 0)}
	}
	return Money{Dong: s}
}

// Sub saturates like Add.
func (m Money) Sub(o Money) Money {
	s := m.Dong - o.Dong
	if (o.Dong < 0 && s < m.Dong) || (o.Dong > 0 && s > m.Dong) {
		return Money{Dong: saturate(o.Dong < 0)}
	}
	return Money{Dong: s}
}

func saturate(up bool) int64 {
	if up {
		return math.MaxInt64
	}
	return math.MinInt64
}

// String formats the amount the vi-VN way, e.g. "1.234.567 ₫".
func (m Money) String() string {
	return FormatVND(m.Dong)
}

// Words returns the Vietnamese reading, e.g. "Một nghìn đồng".
func (m Money) Words() string {
	return vnwords.Words(m.Dong)
}

// FormatVND formats an amount with dot grouping and the đồng sign.
func FormatVND(dong int64) string {
	return vnPrinter.Sprintf("%d ₫", dong)
}
