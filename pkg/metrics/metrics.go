// Package metrics defines the Prometheus collectors exposed by the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Extraction outcomes used as the "outcome" label.
const (
	OutcomeOK            = "ok"
	OutcomeCountMismatch = "count_mismatch"
	OutcomeTotalMismatch = "total_mismatch"
	OutcomeDecodeError   = "decode_error"
)

const namespace = "statement_checks"

// Metrics holds the collectors for check extraction.
type Metrics struct {
	Extractions *prometheus.CounterVec
	ChecksFound prometheus.Histogram
	BlankPages  prometheus.Counter
	Duration    prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass a fresh prometheus.NewRegistry()
// in tests to avoid duplicate registration panics.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Statement extractions by outcome.",
		}, []string{"outcome"}),
		ChecksFound: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checks_per_statement",
			Help:      "Number of checks found per successfully decoded statement.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		BlankPages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blank_pages_total",
			Help:      "Pages that yielded no extractable text.",
		}),
		Duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent decoding and scanning one statement.",
			Buckets:   prometheus.DefBuckets,
		}),
		gatherer: reg,
	}
}

// ObserveExtraction records one extraction. It is a no-op on a nil receiver.
func (m *Metrics) ObserveExtraction(outcome string, checks, blankPages int, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.Extractions.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
	if outcome == OutcomeDecodeError {
		return
	}
	m.ChecksFound.Observe(float64(checks))
	m.BlankPages.Add(float64(blankPages))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
