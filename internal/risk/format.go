package risk

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"risk_checker/internal/domain/entity"
)

// defaultConfidence is the oracle confidence score reported when the
// secondary price source offers no cross-check for an asset.
var defaultConfidence = decimal.RequireFromString("0.99")

// buildSnapshot maps the internal decimal values onto the wire shape. The
// mapping is total and order-preserving: collateral, debt, oracle and cap
// arrays follow the reserve iteration order of the input, so identical input
// ordering yields byte-identical output.
func buildSnapshot(in Input, agg *Aggregation, ev Evaluation, stress []StressResult) *entity.RiskSnapshot {
	snap := &entity.RiskSnapshot{
		Network:   in.Network,
		ChainID:   in.ChainID,
		Address:   in.Account.Address,
		Timestamp: in.RequestTime.Unix(),
		User: entity.UserRisk{
			HealthFactor:          FormatRatio(ev.HealthFactor),
			HealthFactorSaturated: ev.HealthFactorSaturated,
			LTV:                   FormatRatio(ev.AccountLTV),
			LiquidationThreshold:  FormatRatio(ev.LiquidationThreshold),
			LiquidationBufferUSD:  FormatUSD(ev.LiquidationBufferUSD),
			AvailableBorrowsUSD:   FormatUSD(ev.AvailableBorrowsUSD),
			RiskClass:             string(ev.RiskClass),
			IsSafe:                ev.IsSafe,
			StressTests:           buildStressTests(stress),
		},
		Totals: entity.Totals{
			TotalCollateralUSD:     FormatUSD(agg.TotalCollateralUSD),
			TotalDebtUSD:           FormatUSD(agg.TotalDebtUSD),
			NetEquityUSD:           FormatUSD(ev.NetEquityUSD),
			CurrentLeverageRatio:   FormatRatio(ev.Leverage),
			LeverageSaturated:      ev.LeverageSaturated,
			MaxLeverageAtCurrentHF: FormatRatio(ev.MaxLeverage),
		},
		Collateral: make([]entity.CollateralEntry, 0, len(agg.Collateral)),
		Debt:       make([]entity.DebtEntry, 0, len(agg.Debt)),
		Meta:       in.Meta,
	}

	for _, c := range agg.Collateral {
		var category *string
		if c.EModeCategory != 0 {
			s := strconv.Itoa(int(c.EModeCategory))
			category = &s
		}
		snap.Collateral = append(snap.Collateral, entity.CollateralEntry{
			Token:                       c.Asset,
			Amount:                      FormatAmount(c.Amount),
			AmountUSD:                   FormatUSD(c.AmountUSD),
			PriceUSD:                    FormatUSD(c.PriceUSD),
			UsageAsCollateralEnabled:    c.CollateralEnabled,
			ReserveLTV:                  FormatRatio(c.AppliedLTV),
			ReserveLiquidationThreshold: FormatRatio(c.AppliedLT),
			ReserveLiquidationBonus:     FormatRatio(c.LiquidationBonus),
			EModeCategory:               category,
		})
	}

	for _, d := range agg.Debt {
		snap.Debt = append(snap.Debt, entity.DebtEntry{
			Token:                d.Asset,
			VariableDebt:         FormatAmount(d.VariableDebt),
			StableDebt:           FormatAmount(d.StableDebt),
			TotalDebtUSD:         FormatUSD(d.DebtUSD),
			VariableBorrowAPY:    FormatRatio(d.VariableBorrowAPY),
			StableBorrowAPY:      FormatRatio(d.StableBorrowAPY),
			ReserveUtilization:   FormatRatio(d.Utilization),
			BorrowCap:            FormatUint(d.BorrowCap),
			BorrowCapUsedPercent: FormatPercent(d.BorrowCapUsedPercent),
		})
	}

	snap.Oracles = buildOracles(in)
	snap.Config = buildConfig(in, ev)
	return snap
}

func buildStressTests(stress []StressResult) entity.StressTests {
	var st entity.StressTests
	for _, s := range stress {
		formatted := FormatRatio(s.HealthFactor)
		switch s.Shock.String() {
		case "0.01":
			st.HFMinus1Pct = formatted
		case "0.03":
			st.HFMinus3Pct = formatted
		case "0.05":
			st.HFMinus5Pct = formatted
		}
	}
	return st
}

func buildOracles(in Input) entity.Oracles {
	oracles := entity.Oracles{
		Assets: make([]entity.OracleEntry, 0, len(in.Reserves)),
	}

	for i := range in.Reserves {
		r := &in.Reserves[i]
		confidence := defaultConfidence
		if c, ok := in.Confidence[strings.ToLower(r.Asset.Address)]; ok {
			confidence = c
		}
		var lastUpdate int64
		if !r.Price.UpdatedAt.IsZero() {
			lastUpdate = r.Price.UpdatedAt.Unix()
		}
		oracles.Assets = append(oracles.Assets, entity.OracleEntry{
			Token:           r.Asset,
			PriceUSD:        FormatUSD(r.Price.PriceUSD),
			LastUpdate:      lastUpdate,
			ConfidenceScore: FormatRatio(confidence),
		})
	}

	if base := findBaseCurrency(in.Reserves); base != nil {
		var lastUpdate int64
		if !base.Price.UpdatedAt.IsZero() {
			lastUpdate = base.Price.UpdatedAt.Unix()
		}
		oracles.BaseCurrency = entity.BasePrice{
			Symbol:     "ETH",
			PriceUSD:   FormatUSD(base.Price.PriceUSD),
			LastUpdate: lastUpdate,
		}
	} else {
		oracles.BaseCurrency = entity.BasePrice{Symbol: "ETH", PriceUSD: "0.00"}
	}

	return oracles
}

// findBaseCurrency locates the wrapped-ether reserve used as the base
// currency entry, falling back to the first listed reserve.
func findBaseCurrency(reserves []entity.ReserveSnapshot) *entity.ReserveSnapshot {
	for i := range reserves {
		switch strings.ToUpper(reserves[i].Asset.Symbol) {
		case "WETH", "WETH.E", "WETH9":
			return &reserves[i]
		}
	}
	if len(reserves) > 0 {
		return &reserves[0]
	}
	return nil
}

func buildConfig(in Input, ev Evaluation) entity.ProtocolConfig {
	cfg := entity.ProtocolConfig{
		EMode:         entity.EModeStatus{},
		IsolationMode: entity.IsolationStatus{DebtCeilingRemainingUSD: "0"},
		Caps:          make([]entity.CapEntry, 0, len(in.Reserves)),
	}

	if in.Account.Mode == entity.ModeEMode && in.Account.EMode != nil {
		category := strconv.Itoa(int(in.Account.EMode.ID))
		cfg.EMode = entity.EModeStatus{
			Active:   true,
			Category: &category,
			Settings: &entity.EModeSettings{
				Label:                in.Account.EMode.Label,
				LTV:                  FormatRatio(in.Account.EMode.LTV),
				LiquidationThreshold: FormatRatio(in.Account.EMode.LiquidationThreshold),
				LiquidationBonus:     FormatRatio(in.Account.EMode.LiquidationBonus),
				AllowMixedCollateral: in.Account.EMode.AllowMixedCollateral,
			},
		}
	}

	if in.Account.Mode == entity.ModeIsolation {
		cfg.IsolationMode.Active = true
		if in.Account.IsolationAsset != nil {
			symbol := in.Account.IsolationAsset.Symbol
			cfg.IsolationMode.Asset = &symbol
		}
		cfg.IsolationMode.DebtCeilingRemainingUSD = FormatUSD(ev.DebtCeilingRemainingUSD)
	}

	for i := range in.Reserves {
		r := &in.Reserves[i]
		cfg.Caps = append(cfg.Caps, entity.CapEntry{
			Token:                r.Asset,
			SupplyCap:            FormatUint(r.SupplyCap),
			SupplyCapUsedPercent: FormatPercent(capUsedPercent(r.TotalSupplied, r.SupplyCap)),
			BorrowCap:            FormatUint(r.BorrowCap),
			BorrowCapUsedPercent: FormatPercent(capUsedPercent(r.TotalBorrowed, r.BorrowCap)),
		})
	}

	return cfg
}
