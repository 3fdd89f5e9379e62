package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Execution metrics
	Executions       *prometheus.CounterVec
	ExecuteDuration  prometheus.Histogram
	LockContention   prometheus.Counter
	ExecutionErrors  *prometheus.CounterVec
	SettlementAmount prometheus.Histogram

	// Wallet metrics
	WalletsCreated    prometheus.Counter
	SettlementsFailed *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Execution metrics
		Executions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_executions_total",
				Help: "Total execute attempts by outcome reason",
			},
			[]string{"reason"},
		),
		ExecuteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletsettle_execute_duration_seconds",
			Help:    "Duration of execute attempts",
			Buckets: prometheus.DefBuckets,
		}),
		LockContention: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletsettle_lock_contention_total",
			Help: "Execute attempts that found the transaction lock held",
		}),
		ExecutionErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_execution_errors_total",
				Help: "Execute attempts that ended with an error by stage",
			},
			[]string{"stage"},
		),
		SettlementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletsettle_settlement_amount",
			Help:    "Settled transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Wallet metrics
		WalletsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletsettle_wallets_created_total",
			Help: "Total number of wallets created",
		}),
		SettlementsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_settlements_failed_total",
				Help: "Funds movements refused by the wallet ledger by reason",
			},
			[]string{"reason"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletsettle_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),
	}
}
