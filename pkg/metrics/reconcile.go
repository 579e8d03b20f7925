package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconcileMetrics records metadata for reconcile worker runs.
type ReconcileMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	outcomes *prometheus.CounterVec
}

// NewReconcileMetrics registers the reconcile metrics on the provided registerer.
func NewReconcileMetrics(reg prometheus.Registerer) *ReconcileMetrics {
	if reg == nil {
		return &ReconcileMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconcile_run_duration_seconds",
		Help:    "Duration of reconcile runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_run_success",
		Help: "Successful reconcile runs.",
	}, []string{"job"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_run_failure",
		Help: "Failed reconcile runs.",
	}, []string{"job"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconcile_order_outcomes",
		Help: "Per-order reconcile outcomes by vendor and result.",
	}, []string{"vendor", "outcome"})
	reg.MustRegister(duration, success, failure, outcomes)
	return &ReconcileMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		outcomes: outcomes,
	}
}

// ObserveDuration records the duration for the named job.
func (m *ReconcileMetrics) ObserveDuration(job string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named job.
func (m *ReconcileMetrics) IncSuccess(job string) {
	if m == nil || m.success == nil {
		return
	}
	m.success.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncFailure increments the failure counter for the named job.
func (m *ReconcileMetrics) IncFailure(job string) {
	if m == nil || m.failure == nil {
		return
	}
	m.failure.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncOutcome counts a per-order reconcile outcome for a vendor.
func (m *ReconcileMetrics) IncOutcome(vendor, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(vendor), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
