package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "riprice"

// Metrics holds the collectors recorded during a run
type Metrics struct {
	registry *prometheus.Registry

	// TermsWritten counts comparison records produced per service
	TermsWritten *prometheus.CounterVec

	// RowErrors counts malformed rows and dimensions per service
	RowErrors *prometheus.CounterVec

	// GroupErrors counts products or offering groups skipped during reconciliation.
	// Labels: service, reason (missing_baseline, missing_recurring_fee)
	GroupErrors *prometheus.CounterVec

	// ServiceSuccess is 1 when the last run of a service succeeded, 0 otherwise
	ServiceSuccess *prometheus.GaugeVec

	// ServiceDuration is the wall time of the last run of a service
	ServiceDuration *prometheus.GaugeVec

	// LastRun is the Unix time the last run finished
	LastRun prometheus.Gauge
}

// New creates the collectors and registers them with a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TermsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terms_written_total",
			Help:      "Comparison records produced per service",
		}, []string{"service"}),
		RowErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "row_errors_total",
			Help:      "Malformed price list rows per service",
		}, []string{"service"}),
		GroupErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_errors_total",
			Help:      "Products or offering groups skipped during reconciliation",
		}, []string{"service", "reason"}),
		ServiceSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_last_success",
			Help:      "Whether the last run of a service succeeded (1) or failed (0)",
		}, []string{"service"}),
		ServiceDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "service_duration_seconds",
			Help:      "Duration of the last run of a service",
		}, []string{"service"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	m.registry.MustRegister(
		m.TermsWritten,
		m.RowErrors,
		m.GroupErrors,
		m.ServiceSuccess,
		m.ServiceDuration,
		m.LastRun,
	)
	return m
}

// Registry exposes the registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ServiceResult records the outcome of one service
type ServiceResult struct {
	Service              string
	Terms                int
	RowErrors            int
	MissingBaseline      int
	MissingRecurringFees int
	Duration             time.Duration
	Err                  error
}

// Observe records a service outcome
func (m *Metrics) Observe(r ServiceResult) {
	m.TermsWritten.WithLabelValues(r.Service).Add(float64(r.Terms))
	m.RowErrors.WithLabelValues(r.Service).Add(float64(r.RowErrors))
	m.GroupErrors.WithLabelValues(r.Service, "missing_baseline").Add(float64(r.MissingBaseline))
	m.GroupErrors.WithLabelValues(r.Service, "missing_recurring_fee").Add(float64(r.MissingRecurringFees))
	m.ServiceDuration.WithLabelValues(r.Service).Set(r.Duration.Seconds())

	success := 1.0
	if r.Err != nil {
		success = 0
	}
	m.ServiceSuccess.WithLabelValues(r.Service).Set(success)
}

// WriteTextfile stamps the run time and writes every metric in the node-exporter textfile format
func (m *Metrics) WriteTextfile(path string, finished time.Time) error {
	m.LastRun.Set(float64(finished.Unix()))
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
