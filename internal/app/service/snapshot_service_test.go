package service

import (
	"context"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk_checker/internal/app/port"
	"risk_checker/internal/domain/entity"
	"risk_checker/internal/infrastructure/configloader"
)

const testWallet = "0x000000000000000000000000000000000000dEaD"

type stubProvider struct {
	state     *port.MarketState
	err       error
	calls     int
	gotBlocks []uint64
}

func (p *stubProvider) FetchMarketState(_ context.Context, _ string, blockNumber uint64) (*port.MarketState, error) {
	p.calls++
	p.gotBlocks = append(p.gotBlocks, blockNumber)
	return p.state, p.err
}

type stubChecker struct {
	scores map[string]decimal.Decimal
	calls  int
}

func (c *stubChecker) ConfidenceScores(_ context.Context, _ []entity.ReserveSnapshot) map[string]decimal.Decimal {
	c.calls++
	return c.scores
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func testConfig(crossCheck bool) *configloader.Config {
	return &configloader.Config{
		Network:     configloader.NetworkConfig{Name: "base", ChainID: 8453},
		DEXScreener: configloader.DEXScreenerConfig{Enabled: crossCheck},
	}
}

func testState() *port.MarketState {
	usdc := entity.AssetRef{Symbol: "USDC", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Decimals: 6}
	return &port.MarketState{
		BlockNumber: 31_000_000,
		Reserves: []entity.ReserveSnapshot{{
			Asset:                usdc,
			Price:                entity.OraclePrice{PriceUSD: decimal.NewFromInt(1), UpdatedAt: time.Now().Add(-time.Minute)},
			LTV:                  decimal.RequireFromString("0.8"),
			LiquidationThreshold: decimal.RequireFromString("0.85"),
			CollateralEnabled:    true,
		}},
		Positions: []entity.UserPosition{{
			Asset:             usdc,
			Supplied:          big.NewInt(10_000_000_000), // 10000 USDC
			CollateralEnabled: true,
		}},
		Account: entity.NormalAccount(testWallet),
	}
}

func TestGetSnapshotSuccess(t *testing.T) {
	provider := &stubProvider{state: testState()}
	checker := &stubChecker{scores: map[string]decimal.Decimal{}}
	svc := NewSnapshotService(provider, checker, nopLogger{}, testConfig(true))

	snap, err := svc.GetSnapshot(context.Background(), testWallet, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.calls)
	assert.Equal(t, 1, checker.calls)

	assert.Equal(t, "base", snap.Network)
	assert.Equal(t, int64(8453), snap.ChainID)
	assert.Equal(t, testWallet, snap.Address)
	assert.Equal(t, "10000.00", snap.Totals.TotalCollateralUSD)

	assert.Equal(t, "aave-v3", snap.Meta.DataProvider)
	assert.Equal(t, "aave-oracle", snap.Meta.OracleSource)
	assert.NotEmpty(t, snap.Meta.RequestID)
	assert.Equal(t, uint64(31_000_000), snap.Meta.BlockNumber)
	assert.Equal(t, "1.0.0", snap.Meta.Version)
	assert.GreaterOrEqual(t, snap.Meta.LatencyMs, int64(0))
}

func TestGetSnapshotForwardsBlockNumber(t *testing.T) {
	provider := &stubProvider{state: testState()}
	svc := NewSnapshotService(provider, nil, nopLogger{}, testConfig(false))

	_, err := svc.GetSnapshot(context.Background(), testWallet, 31_000_000)
	require.NoError(t, err)
	require.Len(t, provider.gotBlocks, 1)
	assert.Equal(t, uint64(31_000_000), provider.gotBlocks[0])
}

func TestGetSnapshotCrossCheckDisabled(t *testing.T) {
	provider := &stubProvider{state: testState()}
	checker := &stubChecker{}
	svc := NewSnapshotService(provider, checker, nopLogger{}, testConfig(false))

	_, err := svc.GetSnapshot(context.Background(), testWallet, 0)
	require.NoError(t, err)
	assert.Zero(t, checker.calls)
}

func TestGetSnapshotNilCheckerTolerated(t *testing.T) {
	provider := &stubProvider{state: testState()}
	svc := NewSnapshotService(provider, nil, nopLogger{}, testConfig(true))

	_, err := svc.GetSnapshot(context.Background(), testWallet, 0)
	require.NoError(t, err)
}

func TestGetSnapshotFetchError(t *testing.T) {
	provider := &stubProvider{err: fmt.Errorf("rpc unreachable")}
	svc := NewSnapshotService(provider, nil, nopLogger{}, testConfig(false))

	_, err := svc.GetSnapshot(context.Background(), testWallet, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc unreachable")
}

func TestGetSnapshotIntegrityErrorPassedThrough(t *testing.T) {
	state := testState()
	// oracle price for a held asset goes missing
	state.Reserves[0].Price.PriceUSD = decimal.Zero
	provider := &stubProvider{state: state}
	svc := NewSnapshotService(provider, nil, nopLogger{}, testConfig(false))

	_, err := svc.GetSnapshot(context.Background(), testWallet, 0)
	var integrityErr *entity.DataIntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, "USDC", integrityErr.Asset)
}

func TestGetSnapshotRequestIDsUnique(t *testing.T) {
	provider := &stubProvider{state: testState()}
	svc := NewSnapshotService(provider, nil, nopLogger{}, testConfig(false))

	first, err := svc.GetSnapshot(context.Background(), testWallet, 0)
	require.NoError(t, err)
	second, err := svc.GetSnapshot(context.Background(), testWallet, 0)
	require.NoError(t, err)

	assert.NotEqual(t, first.Meta.RequestID, second.Meta.RequestID)
}
