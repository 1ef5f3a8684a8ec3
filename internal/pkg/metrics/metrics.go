// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CodeRequestsTotal counts send-code requests by flow, channel and outcome.
	CodeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_verification_code_requests_total",
		Help: "Verification codes requested, by flow, channel and outcome.",
	}, []string{"flow", "channel", "outcome"})

	// CodeSubmissionsTotal counts code submissions by flow and outcome.
	CodeSubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_verification_code_submissions_total",
		Help: "Verification code submissions, by flow and outcome.",
	}, []string{"flow", "outcome"})

	// OrdersTotal counts order placements by kind (account|guest) and outcome.
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_orders_total",
		Help: "Order placement attempts, by kind and outcome.",
	}, []string{"kind", "outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds, by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)
