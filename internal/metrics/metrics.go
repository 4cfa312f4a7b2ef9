// Package metrics holds the Prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metadata outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeSamples   = "samples"
	OutcomeEmpty     = "empty"
	OutcomeMalformed = "malformed"
)

var (
	MetadataRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviegate_metadata_requests_total",
		Help: "Metadata operations by outcome (ok, samples, empty, malformed)",
	}, []string{"operation", "outcome"})

	MetadataRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviegate_metadata_request_duration_seconds",
		Help:    "Duration of outbound TMDB requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	WalletConnectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviegate_wallet_connections_total",
		Help: "Wallet connection attempts by result",
	}, []string{"result"})

	StaleResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviegate_catalog_stale_responses_total",
		Help: "Catalog responses discarded because a newer request superseded them",
	}, []string{"stream"})

	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moviegate_http_requests_total",
		Help: "Total number of HTTP requests to the API",
	}, []string{"method", "path", "status"})

	HttpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "moviegate_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	RateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "moviegate_http_rate_limited_total",
		Help: "Requests rejected by the per-IP rate limiter",
	})
)
