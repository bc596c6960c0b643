package risk

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"risk_checker/internal/domain/entity"
)

var testTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

const (
	usdcAddr   = "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"
	wethAddr   = "0x4200000000000000000000000000000000000006"
	cbethAddr  = "0x2Ae3F1Ec7F1F5012CFEab0185bfc7aa3cf0DEc22"
	orphanAddr = "0x1111111111111111111111111111111111111111"
	testWallet = "0x000000000000000000000000000000000000dEaD"
	usdcDecs   = 6
	wethDecs   = 18
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func usdcReserve() entity.ReserveSnapshot {
	return entity.ReserveSnapshot{
		Asset: entity.AssetRef{Symbol: "USDC", Address: usdcAddr, Decimals: usdcDecs},
		Price: entity.OraclePrice{PriceUSD: dec("1"), UpdatedAt: testTime.Add(-time.Minute)},

		LTV:                  dec("0.8"),
		LiquidationThreshold: dec("0.85"),
		LiquidationBonus:     dec("0.05"),

		SupplyCap: big.NewInt(1_000_000),
		BorrowCap: big.NewInt(500_000),

		VariableBorrowAPY: dec("0.045"),
		StableBorrowAPY:   dec("0.06"),
		Utilization:       dec("0.7"),
		TotalSupplied:     dec("400000"),
		TotalBorrowed:     dec("280000"),

		CollateralEnabled: true,
		PriceFeed:         "0x7e860098F58bBFC8648a4311b374B1D669a2bc6B",
	}
}

func wethReserve() entity.ReserveSnapshot {
	return entity.ReserveSnapshot{
		Asset: entity.AssetRef{Symbol: "WETH", Address: wethAddr, Decimals: wethDecs},
		Price: entity.OraclePrice{PriceUSD: dec("2500"), UpdatedAt: testTime.Add(-time.Minute)},

		LTV:                  dec("0.8"),
		LiquidationThreshold: dec("0.83"),
		LiquidationBonus:     dec("0.05"),

		VariableBorrowAPY: dec("0.025"),
		Utilization:       dec("0.6"),
		TotalSupplied:     dec("10000"),
		TotalBorrowed:     dec("6000"),

		EModeCategory:     1,
		CollateralEnabled: true,
	}
}

func cbethReserve() entity.ReserveSnapshot {
	r := wethReserve()
	r.Asset = entity.AssetRef{Symbol: "cbETH", Address: cbethAddr, Decimals: wethDecs}
	r.Price = entity.OraclePrice{PriceUSD: dec("2700"), UpdatedAt: testTime.Add(-time.Minute)}
	return r
}

// rawUnits scales a whole-token amount into raw on-chain units.
func rawUnits(whole int64, decimals uint8) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return new(big.Int).Mul(big.NewInt(whole), scale)
}

func suppliedPosition(asset entity.AssetRef, whole int64) entity.UserPosition {
	return entity.UserPosition{
		Asset:             asset,
		Supplied:          rawUnits(whole, asset.Decimals),
		CollateralEnabled: true,
	}
}

func debtPosition(asset entity.AssetRef, whole int64) entity.UserPosition {
	return entity.UserPosition{
		Asset:        asset,
		VariableDebt: rawUnits(whole, asset.Decimals),
	}
}

func baseInput(reserves []entity.ReserveSnapshot, positions []entity.UserPosition, acct entity.AccountContext) Input {
	return Input{
		Network:     "base",
		ChainID:     8453,
		Reserves:    reserves,
		Positions:   positions,
		Account:     acct,
		RequestTime: testTime,
		BlockNumber: 31_000_000,
		Meta: entity.Meta{
			DataProvider: "aave-v3",
			OracleSource: "aave-oracle",
			RequestID:    "test-request",
			BlockNumber:  31_000_000,
			Version:      "1.0.0",
		},
	}
}
