package aave

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Bit layout of the Aave v3 reserve configuration word.
const (
	ltvBitOffset          = 0
	ltvBitLength          = 16
	liqThresholdBitOffset = 16
	liqThresholdBitLength = 16
	liqBonusBitOffset     = 32
	liqBonusBitLength     = 16
	decimalsBitOffset     = 48
	decimalsBitLength     = 8
	eModeBitOffset        = 184
	eModeBitLength        = 8
	debtCeilingBitOffset  = 212
	debtCeilingBitLength  = 40
)

// Basis points scale used by the protocol for LTV, liquidation threshold
// and liquidation bonus. Debt ceilings carry two decimal places.
var (
	bpsScale         = decimal.New(1, 4)
	bonusBase        = decimal.New(1, 4)
	debtCeilingScale = decimal.New(1, 2)
)

// reserveConfig is the decoded view of the configuration word.
type reserveConfig struct {
	LTV                  decimal.Decimal
	LiquidationThreshold decimal.Decimal
	LiquidationBonus     decimal.Decimal
	Decimals             uint8
	EModeCategory        uint8
	DebtCeilingUSD       decimal.Decimal
	CollateralEnabled    bool
}

func configBits(word *big.Int, offset, length uint) *big.Int {
	v := new(big.Int).Rsh(word, offset)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), length), big.NewInt(1))
	return v.And(v, mask)
}

// decodeReserveConfig unpacks the packed configuration word into ratios on
// the unit scale. The raw liquidation bonus is stored as a multiplier in
// basis points (10500 means a 5% premium), it is converted to the premium
// itself. A reserve with zero LTV cannot be used as collateral.
func decodeReserveConfig(word *big.Int) reserveConfig {
	ltvRaw := configBits(word, ltvBitOffset, ltvBitLength)
	ltRaw := configBits(word, liqThresholdBitOffset, liqThresholdBitLength)
	bonusRaw := configBits(word, liqBonusBitOffset, liqBonusBitLength)
	ceilingRaw := configBits(word, debtCeilingBitOffset, debtCeilingBitLength)

	cfg := reserveConfig{
		LTV:                  decimal.NewFromBigInt(ltvRaw, 0).Div(bpsScale),
		LiquidationThreshold: decimal.NewFromBigInt(ltRaw, 0).Div(bpsScale),
		Decimals:             uint8(configBits(word, decimalsBitOffset, decimalsBitLength).Uint64()),
		EModeCategory:        uint8(configBits(word, eModeBitOffset, eModeBitLength).Uint64()),
		DebtCeilingUSD:       decimal.NewFromBigInt(ceilingRaw, 0).Div(debtCeilingScale),
		CollateralEnabled:    ltvRaw.Sign() > 0,
	}

	if bonus := decimal.NewFromBigInt(bonusRaw, 0); bonus.GreaterThan(bonusBase) {
		cfg.LiquidationBonus = bonus.Sub(bonusBase).Div(bpsScale)
	} else {
		cfg.LiquidationBonus = decimal.Zero
	}

	return cfg
}
