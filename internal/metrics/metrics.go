// Package metrics holds the Prometheus metrics of the adapter steps.
//
// A nil *Metrics is valid and records nothing, so steps built without a
// registry need no special casing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "epcis_adapter"

// Step outcome label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the adapter counters
type Metrics struct {
	eventsParsed     *prometheus.CounterVec
	epcsConsolidated *prometheus.CounterVec
	stepsTotal       *prometheus.CounterVec
	stepDuration     *prometheus.HistogramVec
	numbersIssued    *prometheus.CounterVec
}

// New creates the metrics and registers them with reg. A nil registerer
// returns nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	m := &Metrics{
		eventsParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "parser",
			Name:      "events_total",
			Help:      "Canonical events produced by a parse",
		}, []string{"vendor", "kind"}),

		epcsConsolidated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "consolidate",
			Name:      "epcs_total",
			Help:      "EPCs folded into consolidated commissioning events",
		}, []string{"vendor", "pack_level"}),

		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "step",
			Name:      "executions_total",
			Help:      "Step executions by outcome",
		}, []string{"step", "result", "class"}),

		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "step",
			Name:      "duration_seconds",
			Help:      "Time spent executing a step",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		}, []string{"step"}),

		numbersIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "numbering",
			Name:      "serials_total",
			Help:      "Serial numbers received from numbering systems",
		}, []string{"encoding"}),
	}

	reg.MustRegister(
		m.eventsParsed,
		m.epcsConsolidated,
		m.stepsTotal,
		m.stepDuration,
		m.numbersIssued,
	)
	return m
}

// EventsParsed counts n events of kind produced for vendor
func (m *Metrics) EventsParsed(vendor, kind string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.eventsParsed.WithLabelValues(vendor, kind).Add(float64(n))
}

// EPCsConsolidated counts n EPCs accumulated at a pack level
func (m *Metrics) EPCsConsolidated(vendor, level string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.epcsConsolidated.WithLabelValues(vendor, level).Add(float64(n))
}

// StepExecuted records one step execution. class is empty on success.
func (m *Metrics) StepExecuted(step string, started time.Time, class string) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if class != "" {
		result = ResultFailure
	}
	m.stepsTotal.WithLabelValues(step, result, class).Inc()
	m.stepDuration.WithLabelValues(step).Observe(time.Since(started).Seconds())
}

// NumbersIssued counts n serial numbers received for encoding
func (m *Metrics) NumbersIssued(encoding string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.numbersIssued.WithLabelValues(encoding).Add(float64(n))
}
