package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	AuditEntries      *prometheus.CounterVec
	SessionsIssued    prometheus.Counter
	SessionsRevoked   *prometheus.CounterVec
	SessionsSwept     prometheus.Counter
	AuthFailuresTotal *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftboard_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shiftboard_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuditEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftboard_audit_entries_total",
				Help: "Total number of committed audit log entries by action",
			},
			[]string{"action"},
		),
		SessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftboard_sessions_issued_total",
			Help: "Total number of session tokens issued",
		}),
		SessionsRevoked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftboard_sessions_revoked_total",
				Help: "Total number of sessions removed by reason",
			},
			[]string{"reason"},
		),
		SessionsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shiftboard_sessions_swept_total",
			Help: "Total number of expired sessions deleted by the sweeper",
		}),
		AuthFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shiftboard_auth_failures_total",
				Help: "Total number of rejected authentication attempts by kind",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.AuditEntries,
		m.SessionsIssued,
		m.SessionsRevoked,
		m.SessionsSwept,
		m.AuthFailuresTotal,
	)
	return m
}

// NewRegistry returns a registry with the Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Nop returns metrics bound to a throwaway registry.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
