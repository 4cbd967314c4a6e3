package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SQLite backend metrics.
//
// Pool metrics are labelled by pool ("read" or "write") and refreshed
// periodically by SQLite.StartMetricsCollection. Cache metrics are labelled
// by table and updated inline on point lookups.

var (
	SQLitePoolOpenConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "whiteknight",
			Subsystem: "sqlite_pool",
			Name:      "open_connections",
			Help:      "Number of established connections, both in use and idle",
		},
		[]string{"pool"},
	)

	SQLitePoolInUse = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "whiteknight",
			Subsystem: "sqlite_pool",
			Name:      "in_use",
			Help:      "Number of connections currently in use",
		},
		[]string{"pool"},
	)

	SQLitePoolIdle = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "whiteknight",
			Subsystem: "sqlite_pool",
			Name:      "idle",
			Help:      "Number of idle connections",
		},
		[]string{"pool"},
	)

	SQLitePoolMaxOpenConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "whiteknight",
			Subsystem: "sqlite_pool",
			Name:      "max_open_connections",
			Help:      "Configured maximum number of open connections",
		},
		[]string{"pool"},
	)

	SQLitePoolWaitCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "whiteknight",
			Subsystem: "sqlite_pool",
			Name:      "wait_count_total",
			Help:      "Total number of connections waited for",
		},
		[]string{"pool"},
	)

	SQLitePoolWaitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "whiteknight",
			Subsystem: "sqlite_pool",
			Name:      "wait_duration_seconds",
			Help:      "Cumulative time blocked waiting for a new connection",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"pool"},
	)

	SQLitePoolMaxIdleClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "whiteknight",
			Subsystem: "sqlite_pool",
			Name:      "max_idle_closed_total",
			Help:      "Total number of connections closed due to SetMaxIdleConns",
		},
		[]string{"pool"},
	)

	SQLitePoolMaxLifetimeClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "whiteknight",
			Subsystem: "sqlite_pool",
			Name:      "max_lifetime_closed_total",
			Help:      "Total number of connections closed due to SetConnMaxLifetime",
		},
		[]string{"pool"},
	)

	// StoreCacheHits counts point lookups served from the record cache
	StoreCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "whiteknight",
			Subsystem: "store",
			Name:      "cache_hits_total",
			Help:      "Total number of record cache hits",
		},
		[]string{"table"},
	)

	// StoreCacheMisses counts point lookups that fell through to SQLite
	StoreCacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "whiteknight",
			Subsystem: "store",
			Name:      "cache_misses_total",
			Help:      "Total number of record cache misses",
		},
		[]string{"table"},
	)
)
