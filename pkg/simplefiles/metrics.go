package simplefiles

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Variant lookup results.
const (
	variantResultOriginal    = "original"
	variantResultHit         = "hit"
	variantResultFallback    = "fallback"
	variantResultUnsupported = "unsupported"
)

var (
	variantLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simplefiles_variant_lookups_total",
		Help: "Content fetches by requested size and how the variant was resolved.",
	}, []string{"size", "result"})

	jobsEnqueuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simplefiles_jobs_enqueued_total",
		Help: "Variant-generation jobs handed to the job queue, by outcome.",
	}, []string{"result"})

	filesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "simplefiles_files_created_total",
		Help: "Successfully created file records, by kind.",
	}, []string{"kind"})
)
