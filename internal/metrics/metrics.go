// Package metrics holds the Prometheus instruments shared across the service.
package metrics

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StatDuration tracks how long each statistic takes to compute, data load included.
	StatDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_journal_stat_duration_seconds",
			Help:    "Time spent computing a single statistic",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"stat"},
	)

	// StatResults counts statistic outcomes by result kind.
	StatResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_journal_stat_results_total",
			Help: "Statistic outcomes by kind",
		},
		[]string{"stat", "kind"},
	)

	// APIRequestsTotal counts HTTP requests by route pattern and status.
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_journal_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// APIRequestDuration tracks HTTP latency by route pattern.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_journal_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LookupRequests counts metadata lookups by outcome (ok, not_found, error, open).
	LookupRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_journal_lookup_requests_total",
			Help: "Metadata lookups by outcome",
		},
		[]string{"outcome"},
	)

	// LookupBreakerState is 0 closed, 1 half-open, 2 open.
	LookupBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "movie_journal_lookup_breaker_state",
			Help: "Metadata lookup circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	// DBPoolConns reports pool connection counts by state.
	DBPoolConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movie_journal_db_pool_connections",
			Help: "Database pool connections by state",
		},
		[]string{"state"},
	)
)

// RecordStat observes one statistic computation.
func RecordStat(stat, kind string, d time.Duration) {
	StatDuration.WithLabelValues(stat).Observe(d.Seconds())
	StatResults.WithLabelValues(stat, kind).Inc()
}

// RecordAPIRequest observes one HTTP request.
func RecordAPIRequest(method, route, status string, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordPool copies pool statistics into DBPoolConns. A nil stat is ignored.
func RecordPool(stat *pgxpool.Stat) {
	if stat == nil {
		return
	}
	DBPoolConns.WithLabelValues("total").Set(float64(stat.TotalConns()))
	DBPoolConns.WithLabelValues("idle").Set(float64(stat.IdleConns()))
	DBPoolConns.WithLabelValues("acquired").Set(float64(stat.AcquiredConns()))
}
