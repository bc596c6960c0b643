package aave

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

// packConfig assembles a configuration word from raw field values.
func packConfig(ltv, lt, bonus, decimals, eMode, debtCeiling uint64) *big.Int {
	word := new(big.Int)
	set := func(value uint64, offset uint) {
		word.Or(word, new(big.Int).Lsh(new(big.Int).SetUint64(value), offset))
	}
	set(ltv, ltvBitOffset)
	set(lt, liqThresholdBitOffset)
	set(bonus, liqBonusBitOffset)
	set(decimals, decimalsBitOffset)
	set(eMode, eModeBitOffset)
	set(debtCeiling, debtCeilingBitOffset)
	return word
}

func TestDecodeReserveConfig(t *testing.T) {
	// USDC-like reserve: 80% LTV, 85% LT, 5% bonus, 6 decimals, isolation
	// ceiling of 1000.00 USD
	cfg := decodeReserveConfig(packConfig(8000, 8500, 10500, 6, 1, 100000))

	assert.Equal(t, "0.8", cfg.LTV.String())
	assert.Equal(t, "0.85", cfg.LiquidationThreshold.String())
	assert.Equal(t, "0.05", cfg.LiquidationBonus.String())
	assert.Equal(t, uint8(6), cfg.Decimals)
	assert.Equal(t, uint8(1), cfg.EModeCategory)
	assert.Equal(t, "1000", cfg.DebtCeilingUSD.String())
	assert.True(t, cfg.CollateralEnabled)
}

func TestDecodeReserveConfigNonCollateral(t *testing.T) {
	// zero LTV disables collateral usage regardless of the threshold bits
	cfg := decodeReserveConfig(packConfig(0, 7500, 0, 18, 0, 0))

	assert.False(t, cfg.CollateralEnabled)
	assert.True(t, cfg.LTV.IsZero())
	assert.Equal(t, "0.75", cfg.LiquidationThreshold.String())
	// a raw bonus of zero never goes negative
	assert.True(t, cfg.LiquidationBonus.IsZero())
	assert.True(t, cfg.DebtCeilingUSD.IsZero())
}

func TestDecodeReserveConfigFieldIsolation(t *testing.T) {
	// all-ones neighbors must not bleed into the decoded fields
	word := packConfig(8000, 8500, 10500, 6, 1, 100000)
	word.Or(word, new(big.Int).Lsh(big.NewInt(0xFFFF), 64)) // reserve factor area

	cfg := decodeReserveConfig(word)
	assert.Equal(t, "0.8", cfg.LTV.String())
	assert.Equal(t, uint8(6), cfg.Decimals)
	assert.Equal(t, uint8(1), cfg.EModeCategory)
}

func TestUsingAsCollateralBits(t *testing.T) {
	// reserve 0 borrowing, reserve 1 collateral, reserve 2 both
	word := new(big.Int)
	word.SetBit(word, 0, 1) // reserve 0: borrowing
	word.SetBit(word, 3, 1) // reserve 1: collateral
	word.SetBit(word, 4, 1) // reserve 2: borrowing
	word.SetBit(word, 5, 1) // reserve 2: collateral

	assert.False(t, usingAsCollateral(word, 0))
	assert.True(t, usingAsCollateral(word, 1))
	assert.True(t, usingAsCollateral(word, 2))
	assert.False(t, usingAsCollateral(nil, 0))
}
