package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "travel_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	OTPIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_otp_issued_total",
		Help: "One-time codes issued, by purpose and outcome.",
	}, []string{"purpose", "outcome"})

	OTPVerified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "travel_otp_verifications_total",
		Help: "One-time code verification attempts, by purpose and outcome.",
	}, []string{"purpose", "outcome"})

	ToursCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "travel_tours_created_total",
		Help: "Tours successfully booked.",
	})
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeInvalid  = "invalid"
	OutcomeExpired  = "expired"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)
