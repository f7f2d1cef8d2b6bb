// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obk_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "obk_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"method", "route"})

	// Payments counts terminal payment outcomes by route (domestic|interbank).
	Payments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obk_payments_total",
		Help: "Payments by route and final status",
	}, []string{"route", "status"})

	Compensations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obk_payment_compensations_total",
		Help: "Interbank payments rolled back after the remote leg failed",
	})

	InboundTransfers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obk_inbound_transfers_total",
		Help: "Inbound interbank transfers by source bank and outcome",
	}, []string{"from_bank", "outcome"})

	TrustRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obk_trust_refresh_total",
		Help: "Peer key set fetches by bank and result",
	}, []string{"bank", "result"})

	PeerLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "obk_peer_request_duration_seconds",
		Help:    "Outbound peer bank call latency",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"bank", "operation"})

	AuditDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "obk_audit_dropped_total",
		Help: "Audit records dropped because the write queue was full",
	})

	AggregatorCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "obk_aggregator_cache_total",
		Help: "Aggregated account reads served from cache or fetched",
	}, []string{"result"})
)

// ObservePeer records the duration of a peer call started at begin.
func ObservePeer(bank, operation string, begin time.Time) {
	PeerLatency.WithLabelValues(bank, operation).Observe(time.Since(begin).Seconds())
}
