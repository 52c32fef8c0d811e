// Package metrics holds the Prometheus collectors for the analysis pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// dependencyCalls counts external calls by dependency and outcome
	// (ok, disabled, reported, transport, malformed).
	dependencyCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evidence",
		Subsystem: "dependency",
		Name:      "calls_total",
		Help:      "External analysis service calls by outcome",
	}, []string{"dependency", "outcome"})

	dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "evidence",
		Subsystem: "dependency",
		Name:      "latency_seconds",
		Help:      "External analysis service call latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 45},
	}, []string{"dependency"})

	analyses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "evidence",
		Subsystem: "pipeline",
		Name:      "analyses_total",
		Help:      "Completed analyses by outcome (complete, degraded, failed)",
	}, []string{"outcome"})

	priorityScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "evidence",
		Subsystem: "pipeline",
		Name:      "priority_score",
		Help:      "Distribution of computed priority scores",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})
)

func ObserveDependency(dependency, outcome string, elapsed time.Duration) {
	dependencyCalls.WithLabelValues(dependency, outcome).Inc()
	dependencyLatency.WithLabelValues(dependency).Observe(elapsed.Seconds())
}

func ObserveAnalysis(outcome string, priority float64) {
	analyses.WithLabelValues(outcome).Inc()
	if outcome != "failed" {
		priorityScores.Observe(priority)
	}
}
