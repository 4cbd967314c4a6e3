package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CasesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whiteknight_cases_created_total",
			Help: "Total number of investigation cases created",
		},
	)

	CasesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whiteknight_cases_deleted_total",
			Help: "Total number of investigation cases deleted",
		},
	)

	EvidenceAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whiteknight_evidence_added_total",
			Help: "Total number of evidence items attached to cases",
		},
	)

	SignalsLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whiteknight_signals_logged_total",
			Help: "Total number of signals logged",
		},
		[]string{"signal_type"},
	)

	ThreatsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whiteknight_threats_detected_total",
			Help: "Total number of threats raised",
		},
		[]string{"threat_level"},
	)

	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whiteknight_recommendations_generated_total",
			Help: "Total number of mitigation recommendations generated",
		},
		[]string{"threat_level"},
	)

	MitigationsApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whiteknight_mitigations_applied_total",
			Help: "Total number of recommendations applied",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "whiteknight_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)

	RateLimitedRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "whiteknight_rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "whiteknight_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"sink", "result"},
	)

	EventSinkCircuitOpen = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "whiteknight_event_sink_circuit_open",
			Help: "1 while an external event sink is short-circuited after repeated failures",
		},
		[]string{"sink"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "whiteknight_websocket_clients",
			Help: "Number of connected dashboard stream clients",
		},
	)
)
