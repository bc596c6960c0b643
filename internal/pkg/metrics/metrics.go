package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SnapshotRequests counts snapshot computations by outcome.
	SnapshotRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_checker_snapshot_requests_total",
			Help: "Total snapshot requests by outcome.",
		},
		[]string{"outcome"},
	)

	// SnapshotDuration observes end-to-end snapshot latency.
	SnapshotDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risk_checker_snapshot_duration_seconds",
			Help:    "End-to-end snapshot latency, fetch plus compute.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// RPCBatchDuration observes one batched eth_call round trip.
	RPCBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "risk_checker_rpc_batch_duration_seconds",
			Help:    "Latency of one batched RPC call round.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// MarketStateCache counts block-keyed market state cache hits and misses.
	MarketStateCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_checker_market_state_cache_total",
			Help: "Market state cache lookups by result.",
		},
		[]string{"result"},
	)
)

// MustRegisterMetrics registers every collector with the default registry.
// It panics on duplicate registration, so call it once from main.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		SnapshotRequests,
		SnapshotDuration,
		RPCBatchDuration,
		MarketStateCache,
	)
}
