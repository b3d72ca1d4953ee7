package verify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Package-level metrics registered once on import so tests constructing
// multiple policies never double-register.
var (
	outcomeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "passgate_verification_outcomes_total",
		Help: "Purchase verification outcomes by terminal status",
	}, []string{"outcome"}) // outcome: delivered, failed, resolution_failed, timed_out, cancelled

	attemptsPerRun = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "passgate_verification_attempts_per_run",
		Help:    "Ownership check attempts consumed per verification run",
		Buckets: []float64{1, 2, 3, 4, 5},
	})
)

// CountOutcome records a terminal verification outcome.
func CountOutcome(outcome string) {
	outcomeTotal.WithLabelValues(outcome).Inc()
}

// ObserveAttempts records how many ownership calls one run consumed.
func ObserveAttempts(n int) {
	attemptsPerRun.Observe(float64(n))
}
