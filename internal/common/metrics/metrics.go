// internal/common/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canchapp_api_requests_total",
			Help: "Total number of backend API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "canchapp_api_request_duration_seconds",
			Help:    "Duration of backend API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WizardTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canchapp_wizard_transitions_total",
			Help: "Booking wizard state transitions",
		},
		[]string{"from", "to"},
	)

	WizardRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canchapp_wizard_rejections_total",
			Help: "Booking wizard actions rejected locally or by the backend",
		},
		[]string{"state", "code"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "canchapp_session_authenticated",
			Help: "1 when a user is logged in, 0 otherwise",
		},
	)
)

// ObserveAPIRequest records one finished backend call. status 0 means the
// request never got an answer.
func ObserveAPIRequest(method, route string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	APIRequests.WithLabelValues(method, route, label).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveTransition records a wizard state change.
func ObserveTransition(from, to string) {
	WizardTransitions.WithLabelValues(from, to).Inc()
}

// ObserveRejection records a wizard action that did not advance the state.
func ObserveRejection(state, code string) {
	WizardRejections.WithLabelValues(state, code).Inc()
}

// SetAuthenticated mirrors the session state into the gauge.
func SetAuthenticated(ok bool) {
	if ok {
		SessionsActive.Set(1)
		return
	}
	SessionsActive.Set(0)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
