package risk

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"risk_checker/internal/domain/entity"
)

// CollateralPosition is one supply-side row before formatting. AppliedLTV and
// AppliedLT are the values actually used in the weighted sums: the e-mode
// category overrides when the account's category covers the asset, otherwise
// the reserve's own configuration.
type CollateralPosition struct {
	Asset     entity.AssetRef
	Amount    decimal.Decimal
	AmountUSD decimal.Decimal
	PriceUSD  decimal.Decimal

	CollateralEnabled bool
	AppliedLTV        decimal.Decimal
	AppliedLT         decimal.Decimal
	LiquidationBonus  decimal.Decimal
	EModeCategory     uint8

	// Weighted reports whether this entry contributed to the
	// collateral-weighted totals. Disabled collateral and out-of-category
	// collateral under a strict e-mode category are displayed but carry no
	// weight.
	Weighted bool
}

// DebtPosition is one borrow-side row before formatting.
type DebtPosition struct {
	Asset        entity.AssetRef
	VariableDebt decimal.Decimal
	StableDebt   decimal.Decimal
	DebtUSD      decimal.Decimal

	VariableBorrowAPY    decimal.Decimal
	StableBorrowAPY      decimal.Decimal
	Utilization          decimal.Decimal
	BorrowCap            *big.Int
	BorrowCapUsedPercent decimal.Decimal
}

// Aggregation folds a wallet's positions against the reserve snapshots.
// Totals are computed exactly once here and reused by every downstream stage.
type Aggregation struct {
	Collateral []CollateralPosition
	Debt       []DebtPosition

	// TotalCollateralUSD sums the entries that back debt (Weighted).
	TotalCollateralUSD decimal.Decimal
	TotalDebtUSD       decimal.Decimal

	// LiquidationWeightedUSD is sum(collateral_i * LT_i);
	// BorrowWeightedUSD is sum(collateral_i * LTV_i).
	LiquidationWeightedUSD decimal.Decimal
	BorrowWeightedUSD      decimal.Decimal
}

// priceShock scales oracle prices during stress recomputation. factor is
// (1 - shock); applyToDebt extends the shock to debt-side pricing.
type priceShock struct {
	factor      decimal.Decimal
	applyToDebt bool
}

// aggregate walks the reserves in input order and joins each to the wallet's
// position, if any. Empty positions are dropped; collateral rows exist only
// for positive supply, debt rows only for positive debt. The baseline inputs
// are never mutated.
func aggregate(reserves []entity.ReserveSnapshot, positions []entity.UserPosition, acct entity.AccountContext, shock *priceShock) *Aggregation {
	byAddress := make(map[string]entity.UserPosition, len(positions))
	for _, p := range positions {
		if p.IsEmpty() {
			continue
		}
		byAddress[strings.ToLower(p.Asset.Address)] = p
	}

	agg := &Aggregation{
		TotalCollateralUSD:     decimal.Zero,
		TotalDebtUSD:           decimal.Zero,
		LiquidationWeightedUSD: decimal.Zero,
		BorrowWeightedUSD:      decimal.Zero,
	}

	for i := range reserves {
		r := &reserves[i]
		pos, held := byAddress[strings.ToLower(r.Asset.Address)]
		if !held {
			continue
		}

		collateralPrice := r.Price.PriceUSD
		debtPrice := r.Price.PriceUSD
		if shock != nil {
			collateralPrice = collateralPrice.Mul(shock.factor)
			if shock.applyToDebt {
				debtPrice = debtPrice.Mul(shock.factor)
			}
		}

		appliedLTV, appliedLT, appliedBonus := r.LTV, r.LiquidationThreshold, r.LiquidationBonus
		inCategory := false
		if acct.Mode == entity.ModeEMode && acct.EMode != nil && r.EModeCategory != 0 && r.EModeCategory == acct.EMode.ID {
			appliedLTV = acct.EMode.LTV
			appliedLT = acct.EMode.LiquidationThreshold
			appliedBonus = acct.EMode.LiquidationBonus
			inCategory = true
		}

		if supplied := unitsFromRaw(pos.Supplied, r.Asset.Decimals); supplied.IsPositive() {
			amountUSD := supplied.Mul(collateralPrice)

			weighted := r.CollateralEnabled && pos.CollateralEnabled
			if weighted && acct.Mode == entity.ModeEMode && acct.EMode != nil && !acct.EMode.AllowMixedCollateral && !inCategory {
				weighted = false
			}

			entry := CollateralPosition{
				Asset:             r.Asset,
				Amount:            supplied,
				AmountUSD:         amountUSD,
				PriceUSD:          collateralPrice,
				CollateralEnabled: r.CollateralEnabled && pos.CollateralEnabled,
				AppliedLTV:        appliedLTV,
				AppliedLT:         appliedLT,
				LiquidationBonus:  appliedBonus,
				EModeCategory:     r.EModeCategory,
				Weighted:          weighted,
			}
			agg.Collateral = append(agg.Collateral, entry)

			if weighted {
				agg.TotalCollateralUSD = agg.TotalCollateralUSD.Add(amountUSD)
				agg.LiquidationWeightedUSD = agg.LiquidationWeightedUSD.Add(amountUSD.Mul(appliedLT))
				agg.BorrowWeightedUSD = agg.BorrowWeightedUSD.Add(amountUSD.Mul(appliedLTV))
			}
		}

		if pos.HasDebt() {
			variable := unitsFromRaw(pos.VariableDebt, r.Asset.Decimals)
			stable := unitsFromRaw(pos.StableDebt, r.Asset.Decimals)
			debtUSD := variable.Add(stable).Mul(debtPrice)

			agg.Debt = append(agg.Debt, DebtPosition{
				Asset:                r.Asset,
				VariableDebt:         variable,
				StableDebt:           stable,
				DebtUSD:              debtUSD,
				VariableBorrowAPY:    r.VariableBorrowAPY,
				StableBorrowAPY:      r.StableBorrowAPY,
				Utilization:          r.Utilization,
				BorrowCap:            r.BorrowCap,
				BorrowCapUsedPercent: capUsedPercent(r.TotalBorrowed, r.BorrowCap),
			})
			agg.TotalDebtUSD = agg.TotalDebtUSD.Add(debtUSD)
		}
	}

	return agg
}

// unitsFromRaw converts a raw on-chain amount to whole token units.
func unitsFromRaw(v *big.Int, decimals uint8) decimal.Decimal {
	if v == nil || v.Sign() == 0 {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -int32(decimals))
}

// capUsedPercent reports reserve-wide usage of a cap as a percentage, zero
// when the reserve is uncapped.
func capUsedPercent(used decimal.Decimal, limit *big.Int) decimal.Decimal {
	if limit == nil || limit.Sign() <= 0 {
		return decimal.Zero
	}
	return used.Div(decimal.NewFromBigInt(limit, 0)).Mul(hundred)
}
