// Package metrics exposes scan outcomes as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rios0rios0/driftwatch/internal/domain/entities"
)

const (
	metricsNamespace = "driftwatch"
	levelPipeline    = "pipeline"
	levelEnvironment = "environment"
)

// DriftMetrics holds the metrics describing one scan.
type DriftMetrics struct {
	// OutcomesTotal counts emitted outcomes.
	// Labels: level (pipeline, environment), status, failure_kind
	OutcomesTotal *prometheus.CounterVec

	// DriftSimpleDays is deployed commit date minus head commit date, in days.
	// Labels: pipeline, scm, environment
	DriftSimpleDays *prometheus.GaugeVec

	// DriftMergeBaseDays is merge-base date minus head commit date, in days.
	// Labels: pipeline, scm, environment
	DriftMergeBaseDays *prometheus.GaugeVec

	// BehindBy is the number of primary-branch commits missing from the deployment.
	// Labels: pipeline, scm, environment
	BehindBy *prometheus.GaugeVec

	// ScanTimestamp is the start time of the scan, in unix seconds.
	ScanTimestamp prometheus.Gauge
}

// NewDriftMetrics creates the metrics and registers them with reg.
func NewDriftMetrics(reg prometheus.Registerer) *DriftMetrics {
	factory := promauto.With(reg)
	driftLabels := []string{"pipeline", "scm", "environment"}

	return &DriftMetrics{
		OutcomesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "outcomes_total",
			Help:      "Outcomes emitted by the scan, by level and status",
		}, []string{"level", "status", "failure_kind"}),
		DriftSimpleDays: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "drift_simple_days",
			Help:      "Deployed commit date minus primary branch head date, in days",
		}, driftLabels),
		DriftMergeBaseDays: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "drift_merge_base_days",
			Help:      "Merge-base date minus primary branch head date, in days",
		}, driftLabels),
		BehindBy: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "behind_by_commits",
			Help:      "Primary branch commits not contained in the deployed commit",
		}, driftLabels),
		ScanTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "scan_timestamp_seconds",
			Help:      "Start time of the scan the metrics describe",
		}),
	}
}

// Observe records one outcome.
func (m *DriftMetrics) Observe(outcome entities.Outcome) {
	if outcome.IsPipelineLevel() {
		m.OutcomesTotal.WithLabelValues(
			levelPipeline, outcome.Pipeline.Status.String(), string(outcome.Pipeline.FailureKind),
		).Inc()
		return
	}

	env := outcome.Environment
	m.OutcomesTotal.WithLabelValues(levelEnvironment, env.Status.String(), string(env.FailureKind)).Inc()
	labels := []string{outcome.Pipeline.SourceID, outcome.Pipeline.SCMIdentifier, env.EnvironmentName}
	if env.DriftSimple != nil {
		m.DriftSimpleDays.WithLabelValues(labels...).Set(entities.DriftDays(*env.DriftSimple))
	}
	if env.DriftMergeBase != nil {
		m.DriftMergeBaseDays.WithLabelValues(labels...).Set(entities.DriftDays(*env.DriftMergeBase))
	}
	if env.CompareBehindBy != nil {
		m.BehindBy.WithLabelValues(labels...).Set(float64(*env.CompareBehindBy))
	}
}

// Load replaces every metric with the contents of scan.
func (m *DriftMetrics) Load(scan entities.Scan, outcomes []entities.Outcome) {
	m.OutcomesTotal.Reset()
	m.DriftSimpleDays.Reset()
	m.DriftMergeBaseDays.Reset()
	m.BehindBy.Reset()
	m.ScanTimestamp.Set(float64(scan.StartedAt.Unix()))
	for _, outcome := range outcomes {
		m.Observe(outcome)
	}
}
