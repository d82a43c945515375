package notification

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Batch outcomes used as the "outcome" label.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeAborted   = "aborted"
	OutcomeRejected  = "rejected"
)

// Metrics counts dispatcher activity. A nil *Metrics records nothing.
type Metrics struct {
	sent          prometheus.Counter
	failed        prometheus.Counter
	skipped       prometheus.Counter
	batches       *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

// NewMetrics creates the dispatcher collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mailbatch",
			Name:      "messages_sent_total",
			Help:      "Messages accepted by the transport.",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mailbatch",
			Name:      "messages_failed_total",
			Help:      "Messages that could not be composed or delivered.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mailbatch",
			Name:      "recipients_skipped_total",
			Help:      "Nil recipient entries skipped.",
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mailbatch",
			Name:      "batches_total",
			Help:      "Dispatch calls by outcome.",
		}, []string{"outcome"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mailbatch",
			Name:      "batch_duration_seconds",
			Help:      "Wall time of dispatch calls that produced a result.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}),
	}
	reg.MustRegister(m.sent, m.failed, m.skipped, m.batches, m.batchDuration)
	return m
}

func (m *Metrics) messageSent() {
	if m != nil {
		m.sent.Inc()
	}
}

func (m *Metrics) messageFailed() {
	if m != nil {
		m.failed.Inc()
	}
}

func (m *Metrics) recipientSkipped() {
	if m != nil {
		m.skipped.Inc()
	}
}

func (m *Metrics) batchFinished(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
	if outcome == OutcomeCompleted || outcome == OutcomeCancelled {
		m.batchDuration.Observe(d.Seconds())
	}
}
