package risk

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk_checker/internal/domain/entity"
)

func TestEvaluateLeverage(t *testing.T) {
	usdc := usdcReserve()
	weth := wethReserve()
	acct := entity.NormalAccount(testWallet)

	// 10000 collateral, 5000 debt: equity 5000, leverage 2x
	agg := aggregate(
		[]entity.ReserveSnapshot{usdc, weth},
		[]entity.UserPosition{suppliedPosition(usdc.Asset, 10_000), debtPosition(weth.Asset, 2)},
		acct, nil)
	ev := evaluate(agg, acct)

	assert.True(t, ev.NetEquityUSD.Equal(dec("5000")))
	assert.True(t, ev.Leverage.Equal(dec("2")))
	assert.False(t, ev.LeverageSaturated)

	// max leverage at the current weighted LT: 0.85 / (0.85 - 0.5)
	expected := dec("0.85").Div(dec("0.35"))
	assert.True(t, ev.MaxLeverage.Equal(expected))
}

func TestEvaluateLeverageSaturatesAtZeroEquity(t *testing.T) {
	usdc := usdcReserve()
	weth := wethReserve()
	acct := entity.NormalAccount(testWallet)

	// 5000 collateral against 5000 debt: zero equity with live collateral
	agg := aggregate(
		[]entity.ReserveSnapshot{usdc, weth},
		[]entity.UserPosition{suppliedPosition(usdc.Asset, 5000), debtPosition(weth.Asset, 2)},
		acct, nil)
	ev := evaluate(agg, acct)

	assert.True(t, ev.LeverageSaturated)
	assert.True(t, ev.Leverage.Equal(HealthFactorCeiling))
	assert.True(t, ev.NetEquityUSD.IsZero())
}

func TestEvaluateCleanAccountMaxLeverage(t *testing.T) {
	usdc := usdcReserve()
	acct := entity.NormalAccount(testWallet)

	agg := aggregate(
		[]entity.ReserveSnapshot{usdc},
		[]entity.UserPosition{suppliedPosition(usdc.Asset, 1000)},
		acct, nil)
	ev := evaluate(agg, acct)

	assert.True(t, ev.HealthFactorSaturated)
	assert.True(t, ev.IsSafe)
	// no debt: max leverage derives from the weighted LTV, 0.8/(1-0.8)
	assert.True(t, ev.MaxLeverage.Equal(dec("4")))
	assert.True(t, ev.Leverage.Equal(dec("1")))
}

func TestEvaluateAvailableBorrowsNeverNegative(t *testing.T) {
	usdc := usdcReserve()
	weth := wethReserve()
	acct := entity.NormalAccount(testWallet)

	// debt 5000 against borrow capacity 1000*0.8: borrows clamp at zero,
	// buffer stays negative
	agg := aggregate(
		[]entity.ReserveSnapshot{usdc, weth},
		[]entity.UserPosition{suppliedPosition(usdc.Asset, 1000), debtPosition(weth.Asset, 2)},
		acct, nil)
	ev := evaluate(agg, acct)

	assert.True(t, ev.AvailableBorrowsUSD.IsZero())
	assert.True(t, ev.LiquidationBufferUSD.IsNegative())
	assert.False(t, ev.IsSafe)
	assert.Equal(t, RiskCritical, ev.RiskClass)
}

func TestEvaluateIsolationCeiling(t *testing.T) {
	usdc := usdcReserve()
	weth := wethReserve()
	acct := entity.IsolationAccount(testWallet, usdc.Asset, dec("1000"))

	agg := aggregate(
		[]entity.ReserveSnapshot{usdc, weth},
		[]entity.UserPosition{suppliedPosition(usdc.Asset, 10_000), debtPosition(weth.Asset, 2)},
		acct, nil)
	ev := evaluate(agg, acct)

	// ceiling 1000 against 5000 debt clamps remaining headroom at zero;
	// the health factor itself is untouched by the ceiling
	assert.True(t, ev.DebtCeilingRemainingUSD.IsZero())
	assert.True(t, ev.HealthFactor.Equal(dec("1.7")))

	acct = entity.IsolationAccount(testWallet, usdc.Asset, dec("8000"))
	ev = evaluate(agg, acct)
	assert.True(t, ev.DebtCeilingRemainingUSD.Equal(dec("3000")))
}

func TestEvaluateEModeRaisesHealthFactor(t *testing.T) {
	weth := wethReserve() // reserve LT 0.83, category 1
	usdc := usdcReserve()
	positions := []entity.UserPosition{
		suppliedPosition(weth.Asset, 4), // 10000 USD
		debtPosition(usdc.Asset, 5000),
	}
	reserves := []entity.ReserveSnapshot{weth, usdc}

	normal := entity.NormalAccount(testWallet)
	plain := evaluate(aggregate(reserves, positions, normal, nil), normal)

	emode := entity.EModeAccount(testWallet, entity.EModeCategory{
		ID:                   1,
		LTV:                  dec("0.9"),
		LiquidationThreshold: dec("0.93"),
	})
	boosted := evaluate(aggregate(reserves, positions, emode, nil), emode)

	assert.True(t, boosted.HealthFactor.GreaterThan(plain.HealthFactor))
	assert.True(t, plain.HealthFactor.Equal(dec("1.66")))  // 10000*0.83/5000
	assert.True(t, boosted.HealthFactor.Equal(dec("1.86"))) // 10000*0.93/5000
}

func TestEvaluateHealthFactorMonotonicInCollateralPrice(t *testing.T) {
	usdc := usdcReserve()
	weth := wethReserve()
	acct := entity.NormalAccount(testWallet)
	positions := []entity.UserPosition{
		suppliedPosition(weth.Asset, 4),
		debtPosition(usdc.Asset, 5000),
	}

	previous := decimal.Zero
	for _, price := range []string{"2000", "2500", "3000"} {
		priced := wethReserve()
		priced.Price.PriceUSD = dec(price)
		agg := aggregate([]entity.ReserveSnapshot{priced, usdc}, positions, acct, nil)
		ev := evaluate(agg, acct)
		require.True(t, ev.HealthFactor.GreaterThan(previous), "health factor must rise with collateral price")
		previous = ev.HealthFactor
	}
}

func TestEvaluateHealthFactorMonotonicInDebt(t *testing.T) {
	usdc := usdcReserve()
	weth := wethReserve()
	acct := entity.NormalAccount(testWallet)

	var previous = HealthFactorCeiling
	for _, debtWETH := range []int64{1, 2, 3, 4} {
		agg := aggregate(
			[]entity.ReserveSnapshot{usdc, weth},
			[]entity.UserPosition{suppliedPosition(usdc.Asset, 10_000), debtPosition(weth.Asset, debtWETH)},
			acct, nil)
		ev := evaluate(agg, acct)
		require.True(t, ev.HealthFactor.LessThan(previous), "health factor must fall as debt grows")
		previous = ev.HealthFactor
	}
}
