// Package metrics provides Prometheus metrics for contribmix.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gauthierbraillon/contribmix/internal/contrib"
)

// Outcome labels for upstream calls.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeAuth        = "auth"
	OutcomeTimeout     = "timeout"
	OutcomeUnavailable = "unavailable"
	OutcomeInvalid     = "invalid"
)

var (
	// UpstreamRequestsTotal counts adapter calls by source and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contribmix",
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream adapter calls",
		},
		[]string{"source", "outcome"},
	)

	// UpstreamDuration measures adapter call duration.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contribmix",
			Name:      "upstream_duration_seconds",
			Help:      "Duration of upstream adapter calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// HTTPRequestsTotal counts served requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contribmix",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration measures request handling duration.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "contribmix",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP request handling in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// ContactMessagesTotal counts contact form relays by status.
	ContactMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contribmix",
			Name:      "contact_messages_total",
			Help:      "Total number of contact form messages relayed",
		},
		[]string{"status"},
	)
)

// Outcome classifies an adapter error into a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, contrib.ErrUpstreamNotFound):
		return OutcomeNotFound
	case errors.Is(err, contrib.ErrUpstreamAuth):
		return OutcomeAuth
	case errors.Is(err, contrib.ErrValidation):
		return OutcomeInvalid
	default:
		return OutcomeUnavailable
	}
}

// RecordUpstream records one adapter call.
func RecordUpstream(source string, err error, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(source, Outcome(err)).Inc()
	UpstreamDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordHTTP records one served request.
func RecordHTTP(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordContact records one contact form relay attempt.
func RecordContact(err error) {
	status := "sent"
	if err != nil {
		status = "failed"
	}
	ContactMessagesTotal.WithLabelValues(status).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
