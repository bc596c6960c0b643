package port

import (
	"context"

	"github.com/shopspring/decimal"

	"risk_checker/internal/domain/entity"
)

// MarketState is everything the risk core needs for one wallet, fetched as of
// a single block so all inputs reflect the same chain state.
type MarketState struct {
	BlockNumber uint64
	Reserves    []entity.ReserveSnapshot
	Positions   []entity.UserPosition
	Account     entity.AccountContext
}

// ReserveDataProvider supplies raw lending-protocol state. Implementations
// own concurrency, timeouts, retries and caching; the core consumes the
// result synchronously and never performs I/O itself.
type ReserveDataProvider interface {
	// FetchMarketState returns the reserve snapshots, the wallet's
	// positions and its account context as of one consistent block. A
	// zero blockNumber pins to the latest block.
	FetchMarketState(ctx context.Context, walletAddress string, blockNumber uint64) (*MarketState, error)
}

// PriceCrossChecker verifies oracle prices against a secondary market source.
// Scores are keyed by lowercase asset address; a failed cross-check degrades
// confidence, it never fails the snapshot.
type PriceCrossChecker interface {
	ConfidenceScores(ctx context.Context, reserves []entity.ReserveSnapshot) map[string]decimal.Decimal
}
