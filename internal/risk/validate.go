package risk

import (
	"math/big"
	"strings"
	"time"

	"risk_checker/internal/domain/entity"
)

// validateInputs checks the construction invariants on every reserve and the
// join integrity between positions and reserves. Any violation aborts the
// whole computation; a partially validated snapshot is never produced.
func validateInputs(reserves []entity.ReserveSnapshot, positions []entity.UserPosition, requestTime time.Time) error {
	byAddress := make(map[string]*entity.ReserveSnapshot, len(reserves))

	for i := range reserves {
		r := &reserves[i]
		key := strings.ToLower(r.Asset.Address)
		if key == "" {
			return entity.NewDataIntegrityError(r.Asset.Symbol, "reserve has no asset address")
		}
		if _, dup := byAddress[key]; dup {
			return entity.NewDataIntegrityError(r.Asset.Symbol, "duplicate reserve entry")
		}
		byAddress[key] = r

		if r.Price.PriceUSD.IsNegative() {
			return entity.NewDataIntegrityError(r.Asset.Symbol, "negative oracle price %s", r.Price.PriceUSD)
		}
		if !r.Price.UpdatedAt.IsZero() && r.Price.UpdatedAt.After(requestTime) {
			return entity.NewDataIntegrityError(r.Asset.Symbol, "oracle price timestamp after request time")
		}
		if r.LTV.GreaterThan(r.LiquidationThreshold) {
			return entity.NewDataIntegrityError(r.Asset.Symbol, "LTV %s exceeds liquidation threshold %s", r.LTV, r.LiquidationThreshold)
		}
		if r.LiquidationThreshold.GreaterThan(one) {
			return entity.NewDataIntegrityError(r.Asset.Symbol, "liquidation threshold %s exceeds 1", r.LiquidationThreshold)
		}
		if r.LiquidationBonus.IsNegative() {
			return entity.NewDataIntegrityError(r.Asset.Symbol, "negative liquidation bonus")
		}
		if (r.SupplyCap != nil && r.SupplyCap.Sign() < 0) || (r.BorrowCap != nil && r.BorrowCap.Sign() < 0) {
			return entity.NewDataIntegrityError(r.Asset.Symbol, "negative cap")
		}
	}

	for _, p := range positions {
		if p.IsEmpty() {
			continue
		}
		if hasNegativeAmount(p) {
			return entity.NewDataIntegrityError(p.Asset.Symbol, "negative balance amount")
		}
		r, ok := byAddress[strings.ToLower(p.Asset.Address)]
		if !ok {
			return entity.NewDataIntegrityError(p.Asset.Symbol, "wallet holds asset with no reserve snapshot")
		}
		// A held asset priced at zero would silently zero its risk
		// contribution, so it counts as a missing price.
		if !r.Price.PriceUSD.IsPositive() {
			return entity.NewDataIntegrityError(p.Asset.Symbol, "oracle price missing for held asset")
		}
	}

	return nil
}

func hasNegativeAmount(p entity.UserPosition) bool {
	for _, v := range []*big.Int{p.Supplied, p.VariableDebt, p.StableDebt} {
		if v != nil && v.Sign() < 0 {
			return true
		}
	}
	return false
}
