// Package metrics holds the Prometheus collectors of the notifier on a
// dedicated registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notifier"

// Metrics wraps the collectors recorded by the trigger service.
type Metrics struct {
	registry *prometheus.Registry

	Registrations    *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	Triggers         prometheus.Gauge
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Trigger registration attempts by outcome status code.",
		}, []string{"status"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notify calls by channel service and outcome status code.",
		}, []string{"service", "status"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent in channel adapters per notify call.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"service"}),
		Triggers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "triggers_registered",
			Help:      "Number of triggers in the registry.",
		}),
	}
	reg.MustRegister(
		m.Registrations,
		m.Notifications,
		m.DispatchDuration,
		m.Triggers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RecordRegistration counts a registration outcome.
func (m *Metrics) RecordRegistration(status int) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RecordNotification counts a notify outcome and observes its duration.
// An unknown trigger has no service and is recorded under "none".
func (m *Metrics) RecordNotification(service string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if service == "" {
		service = "none"
	}
	m.Notifications.WithLabelValues(service, strconv.Itoa(status)).Inc()
	m.DispatchDuration.WithLabelValues(service).Observe(d.Seconds())
}

// SetTriggers updates the registered trigger gauge.
func (m *Metrics) SetTriggers(n int) {
	if m == nil {
		return
	}
	m.Triggers.Set(float64(n))
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
