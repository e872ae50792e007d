// Package vnwords spells out currency amounts in Vietnamese.
//
// A number is split into groups of three digits (blocks). Each non-zero
// block is read on its own and followed by the scale word of its
// position; zero blocks contribute nothing, not even their scale word.
//
//	Words(1005)    -> "Một nghìn không trăm lẻ năm đồng"
//	Words(-50)     -> "Âm năm mươi đồng"
//	Words(1234567) -> "Một triệu hai trăm ba mươi bốn nghìn năm trăm sáu mươi bảy đồng"
//
// All functions are pure and safe for concurrent use.
package vnwords

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	wordZero      = "không"
	wordNegative  = "âm"
	wordCurrency  = "đồng"
	wordHundred   = "trăm"
	wordTen       = "mười"
	wordDecade    = "mươi"
	wordOdd       = "lẻ"
	wordFinalOne  = "mốt"
	wordFinalFive = "lăm"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrOutOfRange      = errors.New("amount out of range")
)

var digits = [10]string{"không", "một", "hai", "ba", "bốn", "năm", "sáu", "bảy", "tám", "chín"}

// scales is indexed by block position. "tỷ tỷ" (10^18) covers the whole
// uint64 range, so no input of an integer type can run past the table.
var scales = [7]string{"", "nghìn", "triệu", "tỷ", "nghìn tỷ", "triệu tỷ", "tỷ tỷ"}

// Words returns the Vietnamese reading of n followed by the currency word,
// with only the first letter capitalized.
func Words(n int64) string {
	if n == 0 {
		return capitalize(wordZero) + " " + wordCurrency
	}
	if n < 0 {
		// -(n+1)+1 keeps math.MinInt64 inside uint64.
		u := uint64(-(n+1)) + 1
		return capitalize(wordNegative+" "+readUnsigned(u)) + " " + wordCurrency
	}
	return capitalize(readUnsigned(uint64(n))) + " " + wordCurrency
}

// readUnsigned reads a non-zero magnitude in lowercase without the
// currency word.
func readUnsigned(u uint64) string {
	var blocks []int
	for u > 0 {
		blocks = append(blocks, int(u%1000))
		u /= 1000
	}

	parts := make([]string, 0, len(blocks)*2)
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i] == 0 {
			continue
		}
		// Any block after the first emitted one is read with all three
		// positions, so 1005 becomes "một nghìn không trăm lẻ năm".
		parts = append(parts, readBlock(blocks[i], len(parts) > 0))
		if scales[i] != "" {
			parts = append(parts, scales[i])
		}
	}
	return strings.Join(parts, " ")
}

// readBlock reads a block in [0, 999]. When filler is set a zero hundreds
// digit is spoken as "không trăm". The connective "lẻ" is used whenever a
// hundreds phrase was emitted and the tens digit is zero but units are not.
func readBlock(block int, filler bool) string {
	hundreds := block / 100
	tens := (block % 100) / 10
	units := block % 10

	if hundreds == 0 && tens == 0 && units == 0 {
		return ""
	}

	words := make([]string, 0, 5)
	hasHundreds := false
	switch {
	case hundreds != 0:
		words = append(words, digits[hundreds], wordHundred)
		hasHundreds = true
	case filler:
		words = append(words, wordZero, wordHundred)
		hasHundreds = true
	}

	switch {
	case tens == 0:
		if hasHundreds && units != 0 {
			words = append(words, wordOdd)
		}
	case tens == 1:
		words = append(words, wordTen)
	default:
		words = append(words, digits[tens], wordDecade)
	}

	if units != 0 {
		switch {
		case units == 1 && tens > 1:
			words = append(words, wordFinalOne)
		case units == 5 && tens > 0:
			words = append(words, wordFinalFive)
		default:
			words = append(words, digits[units])
		}
	}

	return strings.Join(words, " ")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
