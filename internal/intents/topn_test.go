package intents

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTopN(t *testing.T) {
	tests := []struct {
		name     string
		question string
		def      int
		mode     TopNMode
		want     int
	}{
		{"no digits uses default", "top products", 10, ConcatDigits, 10},
		{"single number", "top 5 products", 10, ConcatDigits, 5},
		{"digits are concatenated", "top 1 and 0", 10, ConcatDigits, 10},
		{"digits across words", "top 3 products in q4", 10, ConcatDigits, 34},
		{"leading zeros", "top 007", 5, ConcatDigits, 7},
		{"overflow clamps", "top 99999999999999999999999", 5, ConcatDigits, math.MaxInt},
		{"first number", "top 1 and 0", 10, FirstNumber, 1},
		{"first number with later digits", "top 3 products in q4", 10, FirstNumber, 3},
		{"first number no digits", "top products", 5, FirstNumber, 5},
		{"first number overflow", "top 99999999999999999999999 items", 5, FirstNumber, math.MaxInt},
		{"arabic-indic digit", "top ٣ products", 10, ConcatDigits, 3},
		{"mixed scripts concatenate", "top ١ and 2", 10, ConcatDigits, 12},
		{"devanagari digits", "top ४२", 10, ConcatDigits, 42},
		{"fullwidth digits", "top １５", 10, ConcatDigits, 15},
		{"superscript is not a decimal digit", "top² products", 10, ConcatDigits, 10},
		{"first number arabic-indic", "top ٧ and 9", 10, FirstNumber, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTopN(tt.question, tt.def, tt.mode))
		})
	}
}

func TestTopNModeString(t *testing.T) {
	assert.Equal(t, "concat", ConcatDigits.String())
	assert.Equal(t, "first", FirstNumber.String())
}

func TestDigitValue(t *testing.T) {
	tests := []struct {
		r    rune
		want int
		ok   bool
	}{
		{'0', 0, true},
		{'9', 9, true},
		{'٠', 0, true},
		{'٩', 9, true},
		{'۵', 5, true},
		{'𝟗', 9, true},
		{'𝟬', 0, true},
		{'a', 0, false},
		{'²', 0, false},
	}

	for _, tt := range tests {
		v, ok := digitValue(tt.r)
		assert.Equal(t, tt.ok, ok, string(tt.r))
		assert.Equal(t, tt.want, v, string(tt.r))
	}
}
