package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 1, true},
		{"150000", 150000, true},
		{"1.500.000", 1500000, true},
		{"1.500.000 ₫", 1500000, true},
		{"25000đ", 25000, true},
		{"99,5", 100, true}, // half-up rounding
		{"99.4", 99, true},
		{" 2500 ", 2500, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.4", 0, false},
		{"1e6", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"10000000000000000000", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Dong != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Dong, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Dong: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Dong: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Dong: maxAmount + 1}).Validate(); err == nil {
		t.Fatalf("expected error above the cap")
	}
}

func TestMoneyFormatting(t *testing.T) {
	m := Money{Dong: 1234567}
	if got := m.String(); got != "1.234.567 ₫" {
		t.Fatalf("String() = %q", got)
	}
	if got := m.Words(); got != "Một triệu hai trăm ba mươi bốn nghìn năm trăm sáu mươi bảy đồng" {
		t.Fatalf("Words() = %q", got)
	}
	if got := (Money{Dong: 5}).Sub(Money{Dong: 8}); got.Dong != -3 {
		t.Fatalf("Sub = %d", got.Dong)
	}
}

func TestAddChecked(t *testing.T) {
	tests := []struct {
		a, b    int64
		want    int64
		wantErr bool
	}{
		{1, 2, 3, false},
		{math.MaxInt64 - 1, 1, math.MaxInt64, false},
		{math.MaxInt64, 1, 0, true},
		{math.MinInt64, -1, 0, true},
		{math.MinInt64, math.MaxInt64, -1, false},
	}
	for _, tt := range tests {
		got, err := AddChecked(tt.a, tt.b)
		if tt.wantErr {
			if !errors.Is(err, ErrAmountOverflow) {
				t.Errorf("AddChecked(%d, %d) err = %v, want ErrAmountOverflow", tt.a, tt.b, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("AddChecked(%d, %d) = %d, %v; want %d", tt.a, tt.b, got, err, tt.want)
		}
	}
}

func TestMoneyAddSaturates(t *testing.T) {
	var total Money
	for i := 0; i < 9300; i++ {
		total = total.Add(Money{Dong: maxAmount})
	}
	if total.Dong != math.MaxInt64 {
		t.Fatalf("total = %d, want saturation at MaxInt64", total.Dong)
	}
	if got := (Money{Dong: math.MinInt64 + 1}).Sub(Money{Dong: 5}); got.Dong != math.MinInt64 {
		t.Errorf("Sub below MinInt64 = %d", got.Dong)
	}
	if got := (Money{Dong: math.MaxInt64}).Sub(Money{Dong: -1}); got.Dong != math.MaxInt64 {
		t.Errorf("Sub above MaxInt64 = %d", got.Dong)
	}
	if got := (Money{Dong: 10}).Sub(Money{Dong: 25}); got.Dong != -15 {
		t.Errorf("Sub = %d, want -15", got.Dong)
	}
}
