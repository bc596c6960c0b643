package risk

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk_checker/internal/domain/entity"
)

func TestAggregateDisabledCollateralCarriesNoWeight(t *testing.T) {
	usdc := usdcReserve()
	pos := suppliedPosition(usdc.Asset, 1000)
	pos.CollateralEnabled = false

	agg := aggregate([]entity.ReserveSnapshot{usdc}, []entity.UserPosition{pos}, entity.NormalAccount(testWallet), nil)

	require.Len(t, agg.Collateral, 1)
	assert.False(t, agg.Collateral[0].Weighted)
	assert.False(t, agg.Collateral[0].CollateralEnabled)
	// displayed at full value, excluded from every weighted total
	assert.True(t, agg.Collateral[0].AmountUSD.Equal(dec("1000")))
	assert.True(t, agg.TotalCollateralUSD.IsZero())
	assert.True(t, agg.LiquidationWeightedUSD.IsZero())
	assert.True(t, agg.BorrowWeightedUSD.IsZero())
}

func TestAggregateDecimalsNormalization(t *testing.T) {
	usdc := usdcReserve()
	weth := wethReserve()

	positions := []entity.UserPosition{
		suppliedPosition(usdc.Asset, 250), // 6 decimals
		suppliedPosition(weth.Asset, 3),   // 18 decimals
	}
	agg := aggregate([]entity.ReserveSnapshot{usdc, weth}, positions, entity.NormalAccount(testWallet), nil)

	require.Len(t, agg.Collateral, 2)
	assert.True(t, agg.Collateral[0].Amount.Equal(dec("250")))
	assert.True(t, agg.Collateral[1].Amount.Equal(dec("3")))
	assert.True(t, agg.TotalCollateralUSD.Equal(dec("7750"))) // 250 + 3*2500
}

func TestAggregateEModeOverrides(t *testing.T) {
	weth := wethReserve() // category 1
	usdc := usdcReserve() // no category

	category := entity.EModeCategory{
		ID:                   1,
		Label:                "ETH correlated",
		LTV:                  dec("0.9"),
		LiquidationThreshold: dec("0.93"),
		LiquidationBonus:     dec("0.01"),
	}
	acct := entity.EModeAccount(testWallet, category)

	positions := []entity.UserPosition{
		suppliedPosition(weth.Asset, 2),    // in category: 5000 USD
		suppliedPosition(usdc.Asset, 1000), // out of category
	}
	agg := aggregate([]entity.ReserveSnapshot{weth, usdc}, positions, acct, nil)

	require.Len(t, agg.Collateral, 2)

	inCat := agg.Collateral[0]
	assert.True(t, inCat.Weighted)
	assert.True(t, inCat.AppliedLTV.Equal(dec("0.9")))
	assert.True(t, inCat.AppliedLT.Equal(dec("0.93")))

	// out-of-category collateral is displayed but unweighted under a strict
	// category
	outCat := agg.Collateral[1]
	assert.False(t, outCat.Weighted)
	assert.True(t, outCat.AppliedLT.Equal(dec("0.85")), "out-of-category keeps its own reserve settings")

	assert.True(t, agg.TotalCollateralUSD.Equal(dec("5000")))
	assert.True(t, agg.LiquidationWeightedUSD.Equal(dec("4650"))) // 5000 * 0.93
}

func TestAggregateEModeMixedCollateralAllowed(t *testing.T) {
	weth := wethReserve()
	usdc := usdcReserve()

	category := entity.EModeCategory{
		ID:                   1,
		LTV:                  dec("0.9"),
		LiquidationThreshold: dec("0.93"),
		AllowMixedCollateral: true,
	}
	acct := entity.EModeAccount(testWallet, category)

	positions := []entity.UserPosition{
		suppliedPosition(weth.Asset, 2),
		suppliedPosition(usdc.Asset, 1000),
	}
	agg := aggregate([]entity.ReserveSnapshot{weth, usdc}, positions, acct, nil)

	// out-of-category collateral counts at its reserve-level threshold
	assert.True(t, agg.TotalCollateralUSD.Equal(dec("6000")))
	assert.True(t, agg.LiquidationWeightedUSD.Equal(dec("5500"))) // 5000*0.93 + 1000*0.85
}

func TestAggregateShockLeavesDebtUntouched(t *testing.T) {
	usdc := usdcReserve()
	weth := wethReserve()
	positions := []entity.UserPosition{
		suppliedPosition(usdc.Asset, 10_000),
		debtPosition(weth.Asset, 2),
	}
	reserves := []entity.ReserveSnapshot{usdc, weth}
	acct := entity.NormalAccount(testWallet)

	shock := &priceShock{factor: dec("0.95")}
	agg := aggregate(reserves, positions, acct, shock)

	assert.True(t, agg.TotalCollateralUSD.Equal(dec("9500")))
	assert.True(t, agg.TotalDebtUSD.Equal(dec("5000")))

	shock.applyToDebt = true
	agg = aggregate(reserves, positions, acct, shock)
	assert.True(t, agg.TotalDebtUSD.Equal(dec("4750")))

	// baseline inputs were not mutated by either run
	baseline := aggregate(reserves, positions, acct, nil)
	assert.True(t, baseline.TotalCollateralUSD.Equal(dec("10000")))
}

func TestAggregateStableAndVariableDebtCombined(t *testing.T) {
	usdc := usdcReserve()
	pos := entity.UserPosition{
		Asset:        usdc.Asset,
		VariableDebt: rawUnits(300, usdcDecs),
		StableDebt:   rawUnits(200, usdcDecs),
	}

	agg := aggregate([]entity.ReserveSnapshot{usdc}, []entity.UserPosition{pos}, entity.NormalAccount(testWallet), nil)

	require.Len(t, agg.Debt, 1)
	assert.True(t, agg.Debt[0].VariableDebt.Equal(dec("300")))
	assert.True(t, agg.Debt[0].StableDebt.Equal(dec("200")))
	assert.True(t, agg.TotalDebtUSD.Equal(dec("500")))
}

func TestCapUsedPercent(t *testing.T) {
	assert.True(t, capUsedPercent(dec("280000"), big.NewInt(500_000)).Equal(dec("56")))
	assert.True(t, capUsedPercent(dec("100"), nil).IsZero(), "uncapped reserve reports zero usage")
	assert.True(t, capUsedPercent(dec("100"), big.NewInt(0)).IsZero())
}
