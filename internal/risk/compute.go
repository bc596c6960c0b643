// Package risk is the pure computation core of the snapshot service: it turns
// already-fetched reserve state, user balances and account mode into a
// complete, deterministic risk snapshot. It performs no I/O, holds no shared
// state, and is safe to invoke concurrently for independent requests.
package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"risk_checker/internal/domain/entity"
)

// Input is one complete, internally consistent view of the chain state for a
// single wallet, as supplied by the data provider for one block.
type Input struct {
	Network string
	ChainID int64

	Reserves  []entity.ReserveSnapshot
	Positions []entity.UserPosition
	Account   entity.AccountContext

	RequestTime time.Time
	BlockNumber uint64

	// Confidence maps lowercase asset addresses to oracle confidence
	// scores from the secondary price cross-check. Missing entries fall
	// back to the base score.
	Confidence map[string]decimal.Decimal

	// Meta is carried through to the output; LatencyMs is filled in by the
	// caller once the request completes.
	Meta entity.Meta
}

// ComputeSnapshot derives the full risk snapshot from raw state. Either every
// input is valid and a complete snapshot is returned, or a DataIntegrityError
// aborts the whole computation; nothing is retried and nothing partial is
// produced. A wallet with no positions is not an error: it yields a
// well-formed snapshot with empty arrays and the sentinel health factor.
func ComputeSnapshot(in Input, policy Policy) (*entity.RiskSnapshot, error) {
	if err := validateInputs(in.Reserves, in.Positions, in.RequestTime); err != nil {
		return nil, err
	}

	agg := aggregate(in.Reserves, in.Positions, in.Account, nil)
	ev := evaluate(agg, in.Account)
	stress := stressTest(in.Reserves, in.Positions, in.Account, policy)

	return buildSnapshot(in, agg, ev, stress), nil
}
