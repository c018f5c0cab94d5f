// Package metrics exposes Prometheus collectors for the HTTP surface and
// the session lifecycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"ecommerce-auth/pkg/apierror"
)

const namespace = "ecommerce_auth"

type Metrics struct {
	authEvents      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_events_total",
			Help:      "Session lifecycle operations by outcome.",
		}, []string{"operation", "outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(m.authEvents, m.requestDuration)
	return m
}

// ObserveAuth counts one lifecycle operation. The outcome label is "ok" or
// the lower-cased error kind.
func (m *Metrics) ObserveAuth(operation string, err error) {
	if m == nil {
		return
	}

	outcome := "ok"
	if err != nil {
		outcome = kindLabel(apierror.KindOf(err))
	}
	m.authEvents.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveRequest(method string, route string, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(seconds)
}

func kindLabel(kind apierror.Kind) string {
	switch kind {
	case apierror.KindDuplicateUser:
		return "duplicate_user"
	case apierror.KindValidation:
		return "validation_error"
	case apierror.KindInvalidCredentials:
		return "invalid_credentials"
	case apierror.KindUnauthorized:
		return "unauthorized"
	case apierror.KindNotFound:
		return "not_found"
	default:
		return "server_error"
	}
}
