package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/JonMunkholm/csvgate/internal/validator"
)

// Metrics records validation activity. Each instance owns its registry so
// tests and multiple services never collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	findingsTotal    *prometheus.CounterVec
	structuralTotal  *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	rowsPerFile      prometheus.Histogram
	persistFailTotal prometheus.Counter
	prunedTotal      prometheus.Counter
}

// NewMetrics creates the collectors on a fresh registry, together with the
// standard Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvgate_validations_total",
				Help: "Completed validations by project and outcome",
			},
			[]string{"project", "outcome"},
		),
		findingsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvgate_findings_total",
				Help: "Cell-level findings by project and reason",
			},
			[]string{"project", "reason"},
		),
		structuralTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvgate_structural_errors_total",
				Help: "Files rejected by a structural check, by kind",
			},
			[]string{"project", "kind"},
		),
		rejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "csvgate_rejected_requests_total",
				Help: "Requests refused before validation started, by reason",
			},
			[]string{"reason"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "csvgate_validation_duration_seconds",
				Help:    "Time spent validating a file",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"project"},
		),
		rowsPerFile: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "csvgate_rows_per_file",
				Help:    "Data rows in structurally valid files",
				Buckets: prometheus.ExponentialBuckets(10, 4, 8),
			},
		),
		persistFailTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "csvgate_history_persist_failures_total",
				Help: "Run summaries that could not be saved",
			},
		),
		prunedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "csvgate_history_pruned_total",
				Help: "Run summaries deleted by the retention job",
			},
		),
	}
}

// Registry exposes the collectors for an HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records one completed validation.
func (m *Metrics) ObserveRun(project string, res validator.Result, duration time.Duration) {
	m.runsTotal.WithLabelValues(project, res.Outcome()).Inc()
	m.runDuration.WithLabelValues(project).Observe(duration.Seconds())

	if res.Structural != nil {
		m.structuralTotal.WithLabelValues(project, string(res.Structural.Kind)).Inc()
		return
	}
	if res.Report == nil {
		return
	}
	m.rowsPerFile.Observe(float64(res.Report.RowCount))
	for _, f := range res.Report.Findings {
		m.findingsTotal.WithLabelValues(project, string(f.Reason)).Inc()
	}
}

// ObserveRejected records a request refused before validation.
func (m *Metrics) ObserveRejected(reason string) {
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

// ObservePersistFailure records a run summary that was not saved.
func (m *Metrics) ObservePersistFailure() {
	m.persistFailTotal.Inc()
}

// ObservePruned records runs removed by the retention job.
func (m *Metrics) ObservePruned(n int64) {
	m.prunedTotal.Add(float64(n))
}

// RegisterLimiter publishes limiter occupancy as gauges.
func (m *Metrics) RegisterLimiter(l *ValidationLimiter) {
	factory := promauto.With(m.registry)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "csvgate_validations_active",
		Help: "Validations currently holding a slot",
	}, func() float64 { return float64(l.ActiveCount()) })
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "csvgate_validation_slots",
		Help: "Maximum concurrent validations",
	}, func() float64 { return float64(l.MaxConcurrent()) })
}
