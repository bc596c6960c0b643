package entity

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// OraclePrice is a single oracle price observation for an asset.
type OraclePrice struct {
	// PriceUSD is the oracle price in USD per whole token.
	PriceUSD decimal.Decimal
	// UpdatedAt is the timestamp of the last feed update (0 when the feed
	// does not expose one).
	UpdatedAt time.Time
}

// ReserveSnapshot is the normalized per-asset reserve configuration and state
// for one request. All ratio fields lie in [0, 1] except LiquidationBonus,
// which may exceed 1.
type ReserveSnapshot struct {
	Asset AssetRef

	Price OraclePrice

	// LTV is the maximum borrowable fraction of collateral value.
	LTV decimal.Decimal
	// LiquidationThreshold is the fraction of collateral value counted
	// toward solvency before liquidation eligibility. LTV <= LT always.
	LiquidationThreshold decimal.Decimal
	LiquidationBonus     decimal.Decimal

	// SupplyCap and BorrowCap are in whole token units; zero means uncapped.
	SupplyCap *big.Int
	BorrowCap *big.Int

	VariableBorrowAPY decimal.Decimal
	StableBorrowAPY   decimal.Decimal

	// Utilization is total debt tokens / total supplied tokens for the
	// whole reserve, not for one wallet.
	Utilization decimal.Decimal

	// TotalSupplied and TotalBorrowed are reserve-wide token amounts used
	// for cap usage percentages.
	TotalSupplied decimal.Decimal
	TotalBorrowed decimal.Decimal

	// EModeCategory is the reserve's e-mode category id, 0 when the reserve
	// participates in no category.
	EModeCategory uint8

	// CollateralEnabled is the protocol-level usage-as-collateral flag.
	CollateralEnabled bool

	// IsolationDebtCeilingUSD is the isolation-mode debt ceiling for this
	// asset, zero when the asset is not isolation-enabled.
	IsolationDebtCeilingUSD decimal.Decimal

	// PriceFeed is the Chainlink aggregator behind the oracle price, if any.
	PriceFeed string
}

// EModeCategory describes one efficiency-mode category and its LTV/LT
// overrides.
type EModeCategory struct {
	ID    uint8
	Label string

	LTV                  decimal.Decimal
	LiquidationThreshold decimal.Decimal
	LiquidationBonus     decimal.Decimal

	// AllowMixedCollateral controls whether collateral outside this
	// category still counts toward the weighted totals while the category
	// is active. Aave's default policy is exclusion.
	AllowMixedCollateral bool
}
