// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/bitfantasy/nimo-oil/internal/apperr"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "nimo_oil"

// Submission kinds
const (
	KindPurchase = "purchase"
	KindBatch    = "batch"
	KindBlend    = "blend"
	KindSale     = "byproduct_sale"
)

// Metrics holds the collectors recorded by the oil services. A nil *Metrics
// records nothing.
type Metrics struct {
	Submissions       *prometheus.CounterVec
	SubmitDuration    *prometheus.HistogramVec
	SerialsAllocated  *prometheus.CounterVec
	LineageCollisions prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Submissions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		SubmitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submit_duration_seconds",
			Help:      "Duration of submission units of work.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		SerialsAllocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "serials_allocated_total",
			Help:      "Lineage serials issued by scope type.",
		}, []string{"scope"}),
		LineageCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lineage_collisions_total",
			Help:      "Generated lineage codes that already existed.",
		}),
	}
	reg.MustRegister(m.Submissions, m.SubmitDuration, m.SerialsAllocated, m.LineageCollisions)
	return m
}

// Observe records one submission and its outcome.
func (m *Metrics) Observe(kind string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(kind, Outcome(err)).Inc()
	m.SubmitDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	if apperr.IsCollision(err) {
		m.LineageCollisions.Inc()
	}
}

// SerialAllocated counts one issued serial.
func (m *Metrics) SerialAllocated(scope string) {
	if m == nil {
		return
	}
	m.SerialsAllocated.WithLabelValues(scope).Inc()
}

// Outcome classifies err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperr.IsCollision(err):
		return "collision"
	case apperr.IsDuplicate(err):
		return "duplicate"
	case apperr.IsInsufficientStock(err):
		return "insufficient_stock"
	case apperr.IsParse(err):
		return "parse"
	case apperr.IsReferenceData(err):
		return "reference_data"
	case apperr.IsValidation(err):
		return "validation"
	default:
		return "error"
	}
}
