// Package metrics exposes Prometheus counters for expansion and store
// activity. promauto registers everything against the default registry,
// so importing a package that increments a counter is all the wiring a
// binary needs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpansionsTotal counts Expand calls across all hop kinds.
	ExpansionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sleipnir_expansions_total",
			Help: "Total number of hop expansions started",
		},
	)

	// RelationshipsYielded counts candidates that passed both hop
	// predicates and were handed to the caller.
	RelationshipsYielded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sleipnir_relationships_yielded_total",
			Help: "Total number of relationships yielded by expansions",
		},
	)

	// CandidatesRejected counts candidates filtered out by a hop's
	// relationship or node predicate.
	CandidatesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sleipnir_candidates_rejected_total",
			Help: "Total number of candidate relationships rejected by predicates",
		},
	)

	// PropertyReads counts live property reads against the store,
	// labeled by entity kind (node or relationship).
	PropertyReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sleipnir_property_reads_total",
			Help: "Total number of store property reads",
		},
		[]string{"entity"},
	)

	// InvariantViolations counts internal-invariant errors. Anything
	// above zero means an engine bug, not a data problem.
	InvariantViolations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sleipnir_invariant_violations_total",
			Help: "Total number of internal invariant violations detected",
		},
	)
)
