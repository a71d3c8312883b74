package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BatchMetrics records counters and timings for one batch run.
type BatchMetrics struct {
	outcomes   *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	queueDepth prometheus.Gauge
}

// NewBatchMetrics registers the batch metrics on the provided registerer.
func NewBatchMetrics(reg prometheus.Registerer) *BatchMetrics {
	if reg == nil {
		return &BatchMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sourcing_submission_outcomes_total",
		Help: "Submission outcomes by terminal status.",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sourcing_submission_duration_seconds",
		Help:    "Duration of individual supplier submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"region"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sourcing_queue_depth",
		Help: "Submission jobs waiting to be dispatched.",
	})
	reg.MustRegister(outcomes, duration, queueDepth)
	return &BatchMetrics{
		outcomes:   outcomes,
		duration:   duration,
		queueDepth: queueDepth,
	}
}

// IncOutcome increments the counter for the given terminal status.
func (b *BatchMetrics) IncOutcome(status string) {
	if b == nil || b.outcomes == nil {
		return
	}
	b.outcomes.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveSubmission records the duration of one supplier submission.
func (b *BatchMetrics) ObserveSubmission(region string, duration time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	b.duration.WithLabelValues(normalizeLabel(region)).Observe(duration.Seconds())
}

// SetQueueDepth records how many jobs remain queued.
func (b *BatchMetrics) SetQueueDepth(depth int) {
	if b == nil || b.queueDepth == nil {
		return
	}
	b.queueDepth.Set(float64(depth))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
