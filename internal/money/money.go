// Package money converts between stored minor units and decimal display strings.
//
// The persistence core only ever handles int64 minor units (cents, paise).
// Conversion to and from decimal text happens here, at the edge, and nowhere else.
package money

import (
	"fmt"
	"strings"

	"github.com/Veraticus/spendlog/internal/common"
	"github.com/shopspring/decimal"
)

// MinorPerMajor is the number of minor units in one major unit.
const MinorPerMajor = 100

var (
	hundred  = decimal.NewFromInt(MinorPerMajor)
	maxMinor = decimal.NewFromInt(1 << 62)
)

// Parse converts a decimal amount such as "150", "12.34" or "12,34" into minor
// units, rounding half away from zero to the nearest minor unit.
//
// Examples:
//
//	Parse("12.34")  -> 1234
//	Parse("12.345") -> 1235
//	Parse("0.004")  -> 0
func Parse(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty amount", common.ErrValidation)
	}
	s = strings.ReplaceAll(s, ",", ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", common.ErrValidation, s)
	}

	minor := d.Mul(hundred).Round(0)
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, fmt.Errorf("%w: amount %q out of range", common.ErrValidation, s)
	}
	return minor.IntPart(), nil
}

// ParsePositive is Parse that additionally rejects zero and negative amounts.
func ParsePositive(s string) (int64, error) {
	minor, err := Parse(s)
	if err != nil {
		return 0, err
	}
	if minor <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", common.ErrValidation)
	}
	return minor, nil
}

// Format renders minor units as a two-decimal string, e.g. 15000 -> "150.00".
func Format(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
