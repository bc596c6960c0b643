package risk

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// HealthFactorCeiling is the sentinel value rendered for ratios whose
// denominator is zero (zero debt, zero equity). Downstream liquidation
// consumers must read "infinitely safe", never an error, so division by zero
// saturates to this constant instead of failing. The accompanying saturated
// flag lets consumers tell the sentinel apart from a merely large real value.
var HealthFactorCeiling = decimal.New(1, 9)

// Fractional digit bounds of the canonical string policy. Values are rounded
// to the maximum, then trailing zeros are trimmed but never below the minimum.
const (
	usdMinPlaces   = 2
	usdMaxPlaces   = 8
	ratioMinPlaces = 6
	ratioMaxPlaces = 16
)

// safeDiv divides num by den, saturating to HealthFactorCeiling when den is
// zero. The boolean reports saturation.
func safeDiv(num, den decimal.Decimal) (decimal.Decimal, bool) {
	if den.IsZero() {
		return HealthFactorCeiling, true
	}
	return num.Div(den), false
}

// FormatUSD renders a USD quantity: plain fixed-point, at least two and at
// most eight fractional digits, trailing zeros trimmed, "-0" clamped to zero.
func FormatUSD(d decimal.Decimal) string {
	return formatRange(d, usdMinPlaces, usdMaxPlaces)
}

// FormatRatio renders a ratio-like quantity (health factor, LTV, LT, APY,
// utilization, leverage): at least six fractional digits.
func FormatRatio(d decimal.Decimal) string {
	return formatRange(d, ratioMinPlaces, ratioMaxPlaces)
}

// FormatPercent renders a percentage with the USD policy (cap usage rows).
func FormatPercent(d decimal.Decimal) string {
	return formatRange(d, usdMinPlaces, usdMaxPlaces)
}

// FormatAmount renders a token amount at full on-chain precision with
// trailing zeros trimmed. shopspring/decimal never emits exponent notation,
// which this contract relies on.
func FormatAmount(d decimal.Decimal) string {
	s := d.String()
	if isNegZero(s) {
		return "0"
	}
	return s
}

// FormatUint renders a large on-chain counter or cap as a string integer,
// flooring toward zero. Values can exceed the JS safe-integer range, so they
// are never down-cast to a fixed-width numeric type.
func FormatUint(v *big.Int) string {
	if v == nil || v.Sign() <= 0 {
		return "0"
	}
	return v.String()
}

func formatRange(d decimal.Decimal, minPlaces, maxPlaces int) string {
	s := d.StringFixed(int32(maxPlaces))
	s = trimPlaces(s, minPlaces)
	if isNegZero(s) {
		s = strings.TrimPrefix(s, "-")
	}
	return s
}

// trimPlaces removes trailing fractional zeros but keeps at least minPlaces
// digits after the point.
func trimPlaces(s string, minPlaces int) string {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s
	}
	end := len(s)
	for end > dot+1+minPlaces && s[end-1] == '0' {
		end--
	}
	s = s[:end]
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}

func isNegZero(s string) bool {
	if !strings.HasPrefix(s, "-") {
		return false
	}
	for _, c := range s[1:] {
		if c != '0' && c != '.' {
			return false
		}
	}
	return true
}
