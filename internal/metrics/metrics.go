package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Auth metrics

	SignupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reminderboard",
		Name:      "signups_total",
		Help:      "Total accounts created.",
	})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reminderboard",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	SessionsRevokedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reminderboard",
		Name:      "sessions_revoked_total",
		Help:      "Sessions removed, by reason.",
	}, []string{"reason"})

	// Board metrics

	MessagesPostedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "reminderboard",
		Name:      "messages_posted_total",
		Help:      "Total reminder messages posted.",
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "reminderboard",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reminderboard",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		SignupsTotal,
		LoginsTotal,
		SessionsRevokedTotal,
		MessagesPostedTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

// HealthHandler is implemented by health.Checker.
type HealthHandler interface {
	LivenessHandler() http.Handler
	ReadinessHandler() http.Handler
}

func NewServer(addr string, checker HealthHandler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker.LivenessHandler())
	mux.Handle("/readyz", checker.ReadinessHandler())
	return &http.Server{Addr: addr, Handler: mux}
}
