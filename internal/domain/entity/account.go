package entity

import "github.com/shopspring/decimal"

// AccountMode is the closed set of protocol modes a wallet can be in.
// Isolation mode and multi-asset e-mode collateralization are mutually
// constraining, so the mode is a tagged variant rather than independent flags.
type AccountMode int

const (
	// ModeNormal is the default: per-reserve LTV/LT, no debt ceiling.
	ModeNormal AccountMode = iota
	// ModeEMode applies a category's LTV/LT overrides to participating
	// assets.
	ModeEMode
	// ModeIsolation restricts the wallet to a single isolation-enabled
	// collateral asset with a USD debt ceiling.
	ModeIsolation
)

// AccountContext carries the per-wallet protocol state for one request.
type AccountContext struct {
	Address string
	Mode    AccountMode

	// EMode is set only when Mode == ModeEMode.
	EMode *EModeCategory

	// IsolationAsset and IsolationDebtCeilingUSD are set only when
	// Mode == ModeIsolation.
	IsolationAsset          *AssetRef
	IsolationDebtCeilingUSD decimal.Decimal
}

// NormalAccount returns a context for a wallet in no special mode.
func NormalAccount(address string) AccountContext {
	return AccountContext{Address: address, Mode: ModeNormal}
}

// EModeAccount returns a context for a wallet with an active e-mode category.
func EModeAccount(address string, category EModeCategory) AccountContext {
	return AccountContext{Address: address, Mode: ModeEMode, EMode: &category}
}

// IsolationAccount returns a context for a wallet in isolation mode.
func IsolationAccount(address string, asset AssetRef, ceilingUSD decimal.Decimal) AccountContext {
	return AccountContext{
		Address:                 address,
		Mode:                    ModeIsolation,
		IsolationAsset:          &asset,
		IsolationDebtCeilingUSD: ceilingUSD,
	}
}
