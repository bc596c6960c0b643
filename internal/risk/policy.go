package risk

import "github.com/shopspring/decimal"

// RiskClass buckets a health factor for downstream alerting.
type RiskClass string

const (
	RiskLow      RiskClass = "low"      // HF >= 2.0
	RiskModerate RiskClass = "moderate" // 1.5 <= HF < 2.0
	RiskElevated RiskClass = "elevated" // 1.05 <= HF < 1.5
	RiskCritical RiskClass = "critical" // HF < 1.05
)

var (
	classLowMin      = decimal.NewFromInt(2)
	classModerateMin = decimal.RequireFromString("1.5")
	classElevatedMin = decimal.RequireFromString("1.05")
	one              = decimal.NewFromInt(1)
	hundred          = decimal.NewFromInt(100)
)

// ClassifyHealthFactor maps a health factor to its risk class. The zero-debt
// sentinel classifies as low.
func ClassifyHealthFactor(hf decimal.Decimal, saturated bool) RiskClass {
	switch {
	case saturated, hf.GreaterThanOrEqual(classLowMin):
		return RiskLow
	case hf.GreaterThanOrEqual(classModerateMin):
		return RiskModerate
	case hf.GreaterThanOrEqual(classElevatedMin):
		return RiskElevated
	default:
		return RiskCritical
	}
}

// Policy carries the configurable computation choices the protocol does not
// pin down.
type Policy struct {
	// ShockDebtPrices extends stress shocks to debt-side pricing. The
	// default (false) follows the standard liquidation-risk convention of
	// shocking collateral pricing only.
	ShockDebtPrices bool
}
