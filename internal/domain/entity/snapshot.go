package entity

// RiskSnapshot is the final wire representation of one computed snapshot.
// Field typing is a hard external contract: money, ratios, APYs and leverage
// are canonical decimal strings (never exponent notation, never NaN), caps are
// string integers, timestamps and the chain id are native integers, flags are
// native booleans. Collateral and debt arrays preserve the reserve iteration
// order of the input. Constructed once per request and never mutated.
type RiskSnapshot struct {
	Network   string `json:"network"`
	ChainID   int64  `json:"chain_id"`
	Address   string `json:"address"`
	Timestamp int64  `json:"timestamp"`

	User       UserRisk          `json:"user"`
	Totals     Totals            `json:"totals"`
	Collateral []CollateralEntry `json:"collateral"`
	Debt       []DebtEntry       `json:"debt"`
	Oracles    Oracles           `json:"oracles"`
	Config     ProtocolConfig    `json:"config"`
	Meta       Meta              `json:"meta"`
}

// UserRisk carries the account-level risk figures.
type UserRisk struct {
	HealthFactor string `json:"health_factor"`
	// HealthFactorSaturated distinguishes the zero-debt sentinel from a
	// merely large real health factor.
	HealthFactorSaturated bool   `json:"health_factor_saturated"`
	LTV                   string `json:"ltv"`
	LiquidationThreshold  string `json:"liquidation_threshold"`
	LiquidationBufferUSD  string `json:"liquidation_buffer_usd"`
	AvailableBorrowsUSD   string `json:"available_borrows_usd"`
	RiskClass             string `json:"risk_class"`
	IsSafe                bool   `json:"is_safe"`

	StressTests StressTests `json:"stress_tests"`
}

// StressTests holds the health factor recomputed under uniform adverse price
// shocks, in fixed order.
type StressTests struct {
	HFMinus1Pct string `json:"hf_minus_1pct"`
	HFMinus3Pct string `json:"hf_minus_3pct"`
	HFMinus5Pct string `json:"hf_minus_5pct"`
}

// Totals carries the USD aggregates across all included positions.
type Totals struct {
	TotalCollateralUSD     string `json:"total_collateral_usd"`
	TotalDebtUSD           string `json:"total_debt_usd"`
	NetEquityUSD           string `json:"net_equity_usd"`
	CurrentLeverageRatio   string `json:"current_leverage_ratio"`
	LeverageSaturated      bool   `json:"leverage_saturated"`
	MaxLeverageAtCurrentHF string `json:"max_leverage_at_current_hf"`
}

// CollateralEntry is one asset's supply-side row.
type CollateralEntry struct {
	Token                       AssetRef `json:"token"`
	Amount                      string   `json:"amount"`
	AmountUSD                   string   `json:"amount_usd"`
	PriceUSD                    string   `json:"price_usd"`
	UsageAsCollateralEnabled    bool     `json:"usage_as_collateral_enabled"`
	ReserveLTV                  string   `json:"reserve_ltv"`
	ReserveLiquidationThreshold string   `json:"reserve_liquidation_threshold"`
	ReserveLiquidationBonus     string   `json:"reserve_liquidation_bonus"`
	EModeCategory               *string  `json:"emode_category"`
}

// DebtEntry is one asset's borrow-side row.
type DebtEntry struct {
	Token                AssetRef `json:"token"`
	VariableDebt         string   `json:"variable_debt"`
	StableDebt           string   `json:"stable_debt"`
	TotalDebtUSD         string   `json:"total_debt_usd"`
	VariableBorrowAPY    string   `json:"variable_borrow_apy"`
	StableBorrowAPY      string   `json:"stable_borrow_apy"`
	ReserveUtilization   string   `json:"reserve_utilization"`
	BorrowCap            string   `json:"borrow_cap"`
	BorrowCapUsedPercent string   `json:"borrow_cap_used_percent"`
}

// Oracles groups the price observations backing the snapshot.
type Oracles struct {
	BaseCurrency BasePrice     `json:"base_currency"`
	Assets       []OracleEntry `json:"assets"`
}

// BasePrice is the base-currency (WETH) price entry.
type BasePrice struct {
	Symbol     string `json:"symbol"`
	PriceUSD   string `json:"price_usd"`
	LastUpdate int64  `json:"last_update"`
}

// OracleEntry is one asset's oracle observation.
type OracleEntry struct {
	Token           AssetRef `json:"token"`
	PriceUSD        string   `json:"price_usd"`
	LastUpdate      int64    `json:"last_update"`
	ConfidenceScore string   `json:"confidence_score"`
}

// ProtocolConfig reports mode state and per-reserve caps.
type ProtocolConfig struct {
	EMode         EModeStatus     `json:"emode"`
	IsolationMode IsolationStatus `json:"isolation_mode"`
	Caps          []CapEntry      `json:"caps"`
}

// EModeStatus reflects the wallet's active e-mode category, if any.
type EModeStatus struct {
	Active   bool           `json:"active"`
	Category *string        `json:"category"`
	Settings *EModeSettings `json:"settings"`
}

// EModeSettings is the wire form of an e-mode category's overrides.
type EModeSettings struct {
	Label                string `json:"label"`
	LTV                  string `json:"ltv"`
	LiquidationThreshold string `json:"liquidation_threshold"`
	LiquidationBonus     string `json:"liquidation_bonus"`
	AllowMixedCollateral bool   `json:"allow_mixed_collateral"`
}

// IsolationStatus reflects isolation-mode state.
type IsolationStatus struct {
	Active                  bool    `json:"active"`
	Asset                   *string `json:"asset,omitempty"`
	DebtCeilingRemainingUSD string  `json:"debt_ceiling_remaining_usd"`
}

// CapEntry is one reserve's supply/borrow cap usage row.
type CapEntry struct {
	Token                AssetRef `json:"token"`
	SupplyCap            string   `json:"supply_cap"`
	SupplyCapUsedPercent string   `json:"supply_cap_used_percent"`
	BorrowCap            string   `json:"borrow_cap"`
	BorrowCapUsedPercent string   `json:"borrow_cap_used_percent"`
}

// Meta carries provenance and timing for the snapshot.
type Meta struct {
	DataProvider string `json:"data_provider"`
	OracleSource string `json:"oracle_source"`
	RequestID    string `json:"request_id"`
	BlockNumber  uint64 `json:"block_number"`
	LatencyMs    int64  `json:"latency_ms"`
	Version      string `json:"version"`
}
