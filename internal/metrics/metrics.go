// Package metrics exposes the prometheus counters and histograms the
// c2pa-go CLI commands record for read/sign/validate operations.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	// ManifestsRead counts successful manifest store reads, by asset kind.
	ManifestsRead = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "c2pa_manifests_read_total",
		Help: "Number of manifest stores successfully read from an asset.",
	}, []string{"asset_kind"})

	// ManifestsSigned counts manifests produced by the sign operation.
	ManifestsSigned = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "c2pa_manifests_signed_total",
		Help: "Number of manifests signed, by signing algorithm.",
	}, []string{"algorithm"})

	// ValidationOutcomes counts validation runs, by final success/failure state.
	ValidationOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "c2pa_validation_outcomes_total",
		Help: "Number of validation runs, by outcome.",
	}, []string{"outcome"})

	// ValidationCodes counts individual validation status codes emitted
	// across all validated manifests and ingredients.
	ValidationCodes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "c2pa_validation_codes_total",
		Help: "Number of validation status codes emitted, by code.",
	}, []string{"code"})

	// SignDuration tracks wall-clock time spent producing a COSE_Sign1
	// signature over a claim, including any RFC3161 timestamp round trip.
	SignDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "c2pa_sign_duration_seconds",
		Help:    "Time spent signing a claim, including timestamping.",
		Buckets: prometheus.DefBuckets,
	})

	// ValidationDuration tracks wall-clock time spent validating a manifest
	// store, including recursive ingredient validation.
	ValidationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "c2pa_validation_duration_seconds",
		Help:    "Time spent validating a manifest store end to end.",
		Buckets: prometheus.DefBuckets,
	})
)

// Register registers all collectors with the default prometheus registry.
// Safe to call more than once; registration only happens on the first call.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ManifestsRead,
			ManifestsSigned,
			ValidationOutcomes,
			ValidationCodes,
			SignDuration,
			ValidationDuration,
		)
	})
}
