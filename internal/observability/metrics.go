// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	// Ingestion metrics
	EventsApplied   *prometheus.CounterVec
	EventsDuplicate prometheus.Counter
	EventsRejected  prometheus.Counter
	EventsDeferred  prometheus.Counter
	BatchesApplied  prometheus.Counter

	// Stage metrics
	RewardsValued       *prometheus.CounterVec
	ValuationSkips      prometheus.Counter
	DaysFinalized       prometheus.Counter
	PostsFinalized      prometheus.Counter
	EfficienciesScored  prometheus.Counter
	EfficienciesDropped prometheus.Counter
	SnapshotsWritten    *prometheus.CounterVec
	HistoryPairsDrained prometheus.Counter

	// Queue metrics
	PendingPercentileDepth prometheus.Gauge
	PendingVoteDepth       prometheus.Gauge

	// Cascade metrics
	StageRunsTotal *prometheus.CounterVec
	StageDuration  *prometheus.HistogramVec

	// Price feed metrics
	PriceTicksReceived   prometheus.Counter
	PriceFeedReconnects  prometheus.Counter
	PriceDatesBackfilled prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulCascade prometheus.Gauge
	PostsPurged           prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "steem_curation_lab"
	}

	return &Metrics{
		EventsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_applied_total",
			Help:      "Total number of events newly written by type",
		}, []string{"event_type"}),
		EventsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_duplicate_total",
			Help:      "Total number of redelivered events absorbed as duplicates",
		}),
		EventsRejected: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_rejected_total",
			Help:      "Total number of events dropped by validation",
		}),
		EventsDeferred: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "events_deferred_total",
			Help:      "Total number of events deferred awaiting an existence join",
		}),
		BatchesApplied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "batches_applied_total",
			Help:      "Total number of event batches applied",
		}),

		RewardsValued: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "valuation",
			Name:      "rewards_valued_total",
			Help:      "Total number of rewards valued by kind",
		}, []string{"kind"}),
		ValuationSkips: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "valuation",
			Name:      "skips_total",
			Help:      "Total number of rewards skipped for missing inputs",
		}),
		DaysFinalized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "percentile",
			Name:      "days_finalized_total",
			Help:      "Total number of days finalized",
		}),
		PostsFinalized: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "percentile",
			Name:      "posts_finalized_total",
			Help:      "Total number of posts assigned a percentile",
		}),
		EfficienciesScored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "efficiency",
			Name:      "scored_total",
			Help:      "Total number of curator rewards scored",
		}),
		EfficienciesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "efficiency",
			Name:      "dropped_total",
			Help:      "Total number of curator rewards dropped as structurally invalid",
		}),
		SnapshotsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "snapshots_written_total",
			Help:      "Total number of rolling-window snapshots written by side",
		}, []string{"side"}),
		HistoryPairsDrained: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "pairs_drained_total",
			Help:      "Total number of (post, voter) pairs drained from the queue",
		}),

		PendingPercentileDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "pending_percentiles",
			Help:      "Current number of open pending-percentile entries",
		}),
		PendingVoteDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "pending_vote_histories",
			Help:      "Current number of open pending vote-history pairs",
		}),

		StageRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cascade",
			Name:      "stage_runs_total",
			Help:      "Total number of stage runs by stage and status",
		}, []string{"stage", "status"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cascade",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),

		PriceTicksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "ticks_received_total",
			Help:      "Total number of price ticks received over the feed",
		}),
		PriceFeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "reconnects_total",
			Help:      "Total number of price feed reconnects",
		}),
		PriceDatesBackfilled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pricefeed",
			Name:      "dates_backfilled_total",
			Help:      "Total number of missing price dates filled",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulCascade: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cascade_timestamp",
			Help:      "Unix timestamp of the last fully successful cascade pass",
		}),
		PostsPurged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retention",
			Name:      "posts_purged_total",
			Help:      "Total number of posts removed by the retention purge",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStageRun records one stage execution.
func (m *Metrics) RecordStageRun(stage string, durationSeconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.StageRunsTotal.WithLabelValues(stage, status).Inc()
	m.StageDuration.WithLabelValues(stage).Observe(durationSeconds)
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, seconds float64, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
