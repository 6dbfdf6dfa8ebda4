// Package metrics owns the Prometheus registry and the service's collectors.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcoot/topicrooms/internal/status"
)

const namespace = "topicrooms"

// Metrics holds the collectors recorded by the transport
type Metrics struct {
	registry *prometheus.Registry

	OperationOutcomes *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
}

// New creates a private registry with Go/process collectors and the
// service's own metrics
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		OperationOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_outcomes_total",
				Help:      "Status codes returned per operation",
			},
			[]string{"operation", "code"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and status",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	registry.MustRegister(m.OperationOutcomes, m.RequestDuration)
	return m
}

// RecordOutcome counts one status code for its operation family
func (m *Metrics) RecordOutcome(code status.Code) {
	if m == nil {
		return
	}
	m.OperationOutcomes.WithLabelValues(string(code.Family()), code.String()).Inc()
}

// ObserveRequest records one HTTP request's latency
func (m *Metrics) ObserveRequest(method, route string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(statusCode)).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
