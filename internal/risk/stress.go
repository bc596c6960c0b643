package risk

import (
	"github.com/shopspring/decimal"

	"risk_checker/internal/domain/entity"
)

// stressShocks is the fixed, ordered list of uniform adverse price moves.
var stressShocks = []decimal.Decimal{
	decimal.RequireFromString("0.01"),
	decimal.RequireFromString("0.03"),
	decimal.RequireFromString("0.05"),
}

// StressResult is one shocked health factor.
type StressResult struct {
	Shock        decimal.Decimal
	HealthFactor decimal.Decimal
	Saturated    bool
}

// stressTest recomputes the totals-and-HF derivation with every collateral
// price scaled by (1 - shock), one result per shock level. Debt amounts are
// untouched; whether debt-side pricing is shocked too is a policy choice.
// The baseline aggregation is never mutated.
func stressTest(reserves []entity.ReserveSnapshot, positions []entity.UserPosition, acct entity.AccountContext, policy Policy) []StressResult {
	out := make([]StressResult, 0, len(stressShocks))
	for _, shockPct := range stressShocks {
		sh := &priceShock{factor: one.Sub(shockPct), applyToDebt: policy.ShockDebtPrices}
		agg := aggregate(reserves, positions, acct, sh)
		hf, saturated := safeDiv(agg.LiquidationWeightedUSD, agg.TotalDebtUSD)
		out = append(out, StressResult{Shock: shockPct, HealthFactor: hf, Saturated: saturated})
	}
	return out
}
