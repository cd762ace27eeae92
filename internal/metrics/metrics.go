package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "govdesign"

var (
	ScoringPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scoring_passes_total",
		Help:      "Scoring passes by kind (factor, initial_scope, refined_scope, canvas, stats).",
	}, []string{"kind"})

	ScoringDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scoring_duration_seconds",
		Help:      "Wall time of one scoring pass.",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
	}, []string{"kind"})

	WeightRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "weight_refresh_total",
		Help:      "Weight snapshot refreshes by resulting source and outcome.",
	}, []string{"source", "result"})

	ProjectsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projects_saved_total",
		Help:      "Projects created or updated.",
	})
)

// ObserveScoring records one scoring pass of the given kind started at start.
func ObserveScoring(kind string, start time.Time) {
	ScoringPasses.WithLabelValues(kind).Inc()
	ScoringDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
