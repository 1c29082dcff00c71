package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cat20_wallet"

var (
	// TrackerRequests counts tracker calls by endpoint and outcome.
	TrackerRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracker_requests_total",
		Help:      "Tracker API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// TrackerLatency observes tracker call latency.
	TrackerLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tracker_request_duration_seconds",
		Help:      "Tracker API request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	// WalletPolls counts wallet session refreshes by trigger and resulting status.
	WalletPolls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "wallet_refresh_total",
		Help:      "Wallet session refreshes by trigger and resulting status.",
	}, []string{"trigger", "status"})

	// Transfers counts transfer submissions by outcome.
	Transfers = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_total",
		Help:      "Token transfer submissions by outcome.",
	}, []string{"outcome"})

	// TokenInfoCache counts metadata cache lookups by result.
	TokenInfoCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_info_cache_total",
		Help:      "Token metadata cache lookups by result.",
	}, []string{"result"})
)

var registerOnce sync.Once

// MustRegisterMetrics registers all collectors with the default registry. Safe to call twice.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(TrackerRequests, TrackerLatency, WalletPolls, Transfers, TokenInfoCache)
	})
}

// ObserveTracker records one tracker call.
func ObserveTracker(endpoint string, started time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	TrackerRequests.WithLabelValues(endpoint, outcome).Inc()
	TrackerLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}
