package risk

import (
	"github.com/shopspring/decimal"

	"risk_checker/internal/domain/entity"
)

// Evaluation is the account-level risk derivation over aggregated totals.
type Evaluation struct {
	HealthFactor          decimal.Decimal
	HealthFactorSaturated bool

	AccountLTV           decimal.Decimal
	LiquidationThreshold decimal.Decimal
	LiquidationBufferUSD decimal.Decimal
	AvailableBorrowsUSD  decimal.Decimal

	NetEquityUSD      decimal.Decimal
	Leverage          decimal.Decimal
	LeverageSaturated bool
	MaxLeverage       decimal.Decimal

	RiskClass RiskClass
	IsSafe    bool

	// DebtCeilingRemainingUSD is populated only in isolation mode. It does
	// not alter the health factor, it is reported as-is.
	DebtCeilingRemainingUSD decimal.Decimal
}

// evaluate derives the risk figures from aggregated totals. Zero-denominator
// ratios resolve to sentinels, never errors: a wallet with no debt cannot be
// liquidated and must read as safe.
func evaluate(agg *Aggregation, acct entity.AccountContext) Evaluation {
	var ev Evaluation

	ev.HealthFactor, ev.HealthFactorSaturated = safeDiv(agg.LiquidationWeightedUSD, agg.TotalDebtUSD)

	switch {
	case agg.TotalCollateralUSD.IsPositive():
		ev.AccountLTV = agg.TotalDebtUSD.Div(agg.TotalCollateralUSD)
		ev.LiquidationThreshold = agg.LiquidationWeightedUSD.Div(agg.TotalCollateralUSD)
	case agg.TotalDebtUSD.IsPositive():
		// Nonzero debt against zero collateral: LTV saturates and the
		// account is critical no matter what the class thresholds say.
		ev.AccountLTV = HealthFactorCeiling
		ev.LiquidationThreshold = decimal.Zero
	default:
		ev.AccountLTV = decimal.Zero
		ev.LiquidationThreshold = decimal.Zero
	}

	ev.LiquidationBufferUSD = agg.LiquidationWeightedUSD.Sub(agg.TotalDebtUSD)

	ev.AvailableBorrowsUSD = agg.BorrowWeightedUSD.Sub(agg.TotalDebtUSD)
	if ev.AvailableBorrowsUSD.IsNegative() {
		ev.AvailableBorrowsUSD = decimal.Zero
	}

	ev.NetEquityUSD = agg.TotalCollateralUSD.Sub(agg.TotalDebtUSD)
	switch {
	case ev.NetEquityUSD.IsPositive():
		ev.Leverage = agg.TotalCollateralUSD.Div(ev.NetEquityUSD)
	case agg.TotalCollateralUSD.IsPositive():
		// Equity at or below zero with live collateral: leverage is
		// mathematically unbounded.
		ev.Leverage = HealthFactorCeiling
		ev.LeverageSaturated = true
	default:
		ev.Leverage = decimal.Zero
	}

	ev.MaxLeverage = maxLeverage(agg, ev.LiquidationThreshold)

	ev.RiskClass = ClassifyHealthFactor(ev.HealthFactor, ev.HealthFactorSaturated)
	ev.IsSafe = ev.HealthFactorSaturated || ev.HealthFactor.GreaterThanOrEqual(one)

	if acct.Mode == entity.ModeIsolation {
		ev.DebtCeilingRemainingUSD = acct.IsolationDebtCeilingUSD.Sub(agg.TotalDebtUSD)
		if ev.DebtCeilingRemainingUSD.IsNegative() {
			ev.DebtCeilingRemainingUSD = decimal.Zero
		}
	}

	return ev
}

// maxLeverage estimates the leverage at which the current weighted
// liquidation threshold would be hit: LT / (LT - debtRatio) for an open
// position, LTV / (1 - LTV) for a clean account.
func maxLeverage(agg *Aggregation, weightedLT decimal.Decimal) decimal.Decimal {
	if agg.TotalCollateralUSD.IsPositive() && weightedLT.IsPositive() && agg.TotalDebtUSD.IsPositive() {
		debtRatio := agg.TotalDebtUSD.Div(agg.TotalCollateralUSD)
		denom := weightedLT.Sub(debtRatio)
		if denom.IsPositive() {
			return weightedLT.Div(denom)
		}
		return decimal.Zero
	}

	if agg.TotalCollateralUSD.IsPositive() {
		weightedLTV := agg.BorrowWeightedUSD.Div(agg.TotalCollateralUSD)
		denom := one.Sub(weightedLTV)
		if weightedLTV.IsPositive() && denom.IsPositive() {
			return weightedLTV.Div(denom)
		}
	}
	return decimal.Zero
}
