package port

import (
	"context"

	"risk_checker/internal/domain/entity"
)

// SnapshotService computes full risk snapshots for wallet addresses.
type SnapshotService interface {
	// GetSnapshot fetches the market state for the wallet and derives
	// its risk snapshot. A zero blockNumber reads the latest block; a
	// non-zero one pins every read to that historical block. A wallet
	// with no positions yields a well-formed snapshot, not an error.
	GetSnapshot(ctx context.Context, walletAddress string, blockNumber uint64) (*entity.RiskSnapshot, error)
}
