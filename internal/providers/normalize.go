package providers

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// zero code points of every digit script accepted in scraped prices: ASCII,
// Extended Arabic-Indic (Persian), Arabic-Indic, Devanagari and fullwidth.
var digitZeros = []rune{'0', '\u06F0', '\u0660', '\u0966', '\uFF10'}

func asciiDigit(r rune) (rune, bool) {
	for _, zero := range digitZeros {
		if r >= zero && r <= zero+9 {
			return '0' + (r - zero), true
		}
	}
	return 0, false
}

func isThousandsSeparator(r rune) bool {
	switch r {
	case ',', '\u066C', '\u060C':
		return true
	}
	return false
}

func isDecimalPoint(r rune) bool {
	return r == '.' || r == '\u066B'
}

// cleanNumber maps localized digits to ASCII, drops thousands separators and
// every other non-digit, non-decimal-point rune.
func cleanNumber(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if d, ok := asciiDigit(r); ok {
			b.WriteRune(d)
			continue
		}
		if isThousandsSeparator(r) {
			continue
		}
		if isDecimalPoint(r) {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// ParseLocalized parses a locale formatted number. ok is false when nothing
// numeric could be recovered, which is distinct from a genuine zero.
func ParseLocalized(raw string) (value float64, ok bool) {
	cleaned := cleanNumber(raw)
	if cleaned == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Normalize is ParseLocalized collapsed to a single value: 0 means the input
// was unparseable and must not be stored as a price.
func Normalize(raw string) float64 {
	v, ok := ParseLocalized(raw)
	if !ok {
		return 0
	}
	return v
}

// RialToToman divides by ten and rounds half away from zero.
func RialToToman(rial float64) float64 {
	f, _ := decimal.NewFromFloat(rial).Div(decimal.NewFromInt(10)).Round(0).Float64()
	return f
}
