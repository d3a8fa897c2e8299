package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/funvibe/calltower/internal/config"
)

// Package-level collectors for the resolution engine, registered with the
// default registry through promauto. Collectors are safe for concurrent use.
var (
	// outcomesTotal counts finished resolutions.
	//
	// Labels:
	//   - kind: "call" or "access"
	//   - outcome: "resolved", "deferred", "ambiguous", "inapplicable", "unresolved", "qualifier"
	outcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Subsystem: "resolve",
			Name:      "outcomes_total",
			Help:      "Total resolutions by call kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	// groupsVisited measures how many tower priority groups a resolution drained
	// before it stopped.
	groupsVisited = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Subsystem: "resolve",
			Name:      "groups_visited",
			Help:      "Tower priority groups visited per resolution.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
		},
		[]string{"kind"},
	)

	// candidatesTotal counts candidates produced by the consumers.
	//
	// Labels:
	//   - tier: applicability tier name
	candidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Subsystem: "resolve",
			Name:      "candidates_total",
			Help:      "Total candidates considered, by applicability tier.",
		},
		[]string{"tier"},
	)
)

// RecordResolution records one finished resolution.
func RecordResolution(kind, outcome string, groups int) {
	outcomesTotal.WithLabelValues(kind, outcome).Inc()
	groupsVisited.WithLabelValues(kind).Observe(float64(groups))
}

// RecordCandidate records one candidate at the given tier.
func RecordCandidate(tier string) {
	candidatesTotal.WithLabelValues(tier).Inc()
}
