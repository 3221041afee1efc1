// Package metrics exposes Prometheus instrumentation for the extraction
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "firescribe"

// Metrics bundles the pipeline instruments. Services record into it, the
// router serves it on /metrics.
type Metrics struct {
	ExtractionsTotal   *prometheus.CounterVec
	RecoveryStages     *prometheus.CounterVec
	GenerateDuration   *prometheus.HistogramVec
	TranscribeDuration prometheus.Histogram
	TranscriptCacheOps *prometheus.CounterVec
	ExportsTotal       *prometheus.CounterVec
	Completeness       prometheus.Histogram
}

// New registers the instruments on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the instruments on reg. Tests pass their own
// registry so repeated construction does not panic.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ExtractionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Number of extraction requests by source and outcome",
		}, []string{"source", "outcome"}),
		RecoveryStages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovery_stages_total",
			Help:      "Number of successful extractions by recovery cascade stage",
		}, []string{"stage"}),
		GenerateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generate_duration_seconds",
			Help:      "Generation backend call duration",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
		}, []string{"provider"}),
		TranscribeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transcribe_duration_seconds",
			Help:      "Transcription call duration",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		TranscriptCacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transcript_cache_ops_total",
			Help:      "Transcript cache lookups by result",
		}, []string{"result"}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Number of scheduled exports by format and outcome",
		}, []string{"format", "outcome"}),
		Completeness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "incident_completeness",
			Help:      "Completeness score distribution of stored incidents",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}

	reg.MustRegister(
		m.ExtractionsTotal, m.RecoveryStages,
		m.GenerateDuration, m.TranscribeDuration,
		m.TranscriptCacheOps, m.ExportsTotal,
		m.Completeness,
	)
	return m
}
