package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mysupertc"

// Metrics holds the process collectors. Use New with a dedicated registry in
// tests and prometheus.DefaultRegisterer in the server.
type Metrics struct {
	// RequestTotal counts inbound HTTP requests by method, route and status
	RequestTotal *prometheus.CounterVec
	// RequestDuration is the latency of inbound HTTP requests
	RequestDuration *prometheus.HistogramVec
	// DataRequestTotal counts data API requests by table, method and status
	DataRequestTotal *prometheus.CounterVec
	// DataRequestDuration is the latency of data API requests
	DataRequestDuration *prometheus.HistogramVec
	// MLSLookups counts listing lookups by outcome (hit, miss, not_found, error)
	MLSLookups *prometheus.CounterVec
	// EmailsSent counts outgoing emails by status
	EmailsSent *prometheus.CounterVec
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		DataRequestTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "data_requests_total",
				Help:      "Total number of data API requests",
			},
			[]string{"table", "method", "status"},
		),
		DataRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "data_request_duration_seconds",
				Help:      "Data API request latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"table", "method"},
		),
		MLSLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mls_lookups_total",
				Help:      "Total number of MLS listing lookups",
			},
			[]string{"outcome"},
		),
		EmailsSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_sent_total",
				Help:      "Total number of outgoing emails",
			},
			[]string{"status"},
		),
	}
}

// ObserveRequest implements postgrest.Observer
func (m *Metrics) ObserveRequest(table, method string, status int, duration time.Duration) {
	m.DataRequestTotal.WithLabelValues(table, method, statusLabel(status)).Inc()
	m.DataRequestDuration.WithLabelValues(table, method).Observe(duration.Seconds())
}

// ObserveHTTP records one inbound request
func (m *Metrics) ObserveHTTP(method, route string, status int, duration time.Duration) {
	m.RequestTotal.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// MLSLookup records the outcome of one listing lookup
func (m *Metrics) MLSLookup(outcome string) {
	m.MLSLookups.WithLabelValues(outcome).Inc()
}

// EmailSent records one send attempt
func (m *Metrics) EmailSent(ok bool) {
	status := "sent"
	if !ok {
		status = "failed"
	}
	m.EmailsSent.WithLabelValues(status).Inc()
}

// statusLabel maps 0 (no response) to "error"
func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}
