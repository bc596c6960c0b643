package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"risk_checker/internal/app/port"
	"risk_checker/internal/domain/entity"
	"risk_checker/internal/infrastructure/configloader"
	"risk_checker/internal/pkg/metrics"
	"risk_checker/internal/risk"
)

const (
	dataProviderName = "aave-v3"
	oracleSourceName = "aave-oracle"
	snapshotVersion  = "1.0.0"
)

// SnapshotServiceImpl implements port.SnapshotService by fetching market
// state from the data provider, cross-checking oracle prices and running the
// risk computation.
type SnapshotServiceImpl struct {
	provider     port.ReserveDataProvider
	priceChecker port.PriceCrossChecker
	logger       port.Logger
	network      string
	chainID      int64
	policy       risk.Policy
	crossCheck   bool
}

// NewSnapshotService creates a new instance of SnapshotServiceImpl. The
// price checker may be nil when the cross-check is disabled.
func NewSnapshotService(
	provider port.ReserveDataProvider,
	priceChecker port.PriceCrossChecker,
	l port.Logger,
	cfg *configloader.Config,
) port.SnapshotService {
	return &SnapshotServiceImpl{
		provider:     provider,
		priceChecker: priceChecker,
		logger:       l,
		network:      cfg.Network.Name,
		chainID:      cfg.Network.ChainID,
		policy:       risk.Policy{ShockDebtPrices: cfg.Stress.ShockDebtPrices},
		crossCheck:   cfg.DEXScreener.Enabled && priceChecker != nil,
	}
}

// GetSnapshot fetches the wallet's market state, as of blockNumber when
// non-zero and the latest block otherwise, and derives its risk snapshot.
func (s *SnapshotServiceImpl) GetSnapshot(ctx context.Context, walletAddress string, blockNumber uint64) (*entity.RiskSnapshot, error) {
	started := time.Now()
	requestID := uuid.NewString()
	s.logger.Debug("Computing risk snapshot", "wallet", walletAddress, "block", blockNumber, "request_id", requestID)

	timer := prometheus.NewTimer(metrics.SnapshotDuration)
	defer timer.ObserveDuration()

	state, err := s.provider.FetchMarketState(ctx, walletAddress, blockNumber)
	if err != nil {
		metrics.SnapshotRequests.WithLabelValues("fetch_error").Inc()
		s.logger.Error("Failed to fetch market state", "wallet", walletAddress, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("failed to fetch market state for %s: %w", walletAddress, err)
	}

	input := risk.Input{
		Network:     s.network,
		ChainID:     s.chainID,
		Reserves:    state.Reserves,
		Positions:   state.Positions,
		Account:     state.Account,
		RequestTime: started.UTC(),
		BlockNumber: state.BlockNumber,
		Meta: entity.Meta{
			DataProvider: dataProviderName,
			OracleSource: oracleSourceName,
			RequestID:    requestID,
			BlockNumber:  state.BlockNumber,
			Version:      snapshotVersion,
		},
	}

	if s.crossCheck {
		input.Confidence = s.priceChecker.ConfidenceScores(ctx, state.Reserves)
	}

	snapshot, err := risk.ComputeSnapshot(input, s.policy)
	if err != nil {
		metrics.SnapshotRequests.WithLabelValues("compute_error").Inc()
		s.logger.Error("Risk computation rejected market state", "wallet", walletAddress, "request_id", requestID, "error", err)
		return nil, err
	}

	snapshot.Meta.LatencyMs = time.Since(started).Milliseconds()
	metrics.SnapshotRequests.WithLabelValues("success").Inc()

	s.logger.Info("Risk snapshot computed",
		"wallet", walletAddress,
		"request_id", requestID,
		"block", state.BlockNumber,
		"health_factor", snapshot.User.HealthFactor,
		"latency_ms", snapshot.Meta.LatencyMs)

	return snapshot, nil
}
