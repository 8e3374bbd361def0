package rating

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK        = "ok"
	outcomeLockError = "lock_error"
	outcomeReadError = "read_error"
	outcomeWriteErr  = "write_error"
)

var (
	recomputeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_recompute_total",
			Help: "Book rating recomputations by outcome",
		},
		[]string{"outcome"},
	)

	recomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rating_recompute_duration_seconds",
			Help:    "Time spent recomputing a book rating while holding its lock",
			Buckets: prometheus.DefBuckets,
		},
	)

	lockWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rating_lock_wait_seconds",
			Help:    "Time spent waiting for the per-book rating lock",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		},
	)
)
