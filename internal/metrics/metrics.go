package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// result is one of accrued, already_accrued, not_active, failed
	AccrualsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "accruals_total",
			Help: "Daily accrual attempts by result",
		},
		[]string{"result"},
	)

	CommissionPayoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commission_payouts_total",
			Help: "Commission payouts recorded, by chain distance",
		},
		[]string{"level"},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "accrual_sweep_duration_seconds",
			Help:    "Wall time of a full accrual sweep",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		},
	)
)
