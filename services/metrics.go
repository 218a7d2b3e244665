package services

import "github.com/prometheus/client_golang/prometheus"

var (
	namespaceEntriesAdded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biorel_namespace_entries_added_total",
			Help: "Number of namespace entries inserted.",
		},
		[]string{"namespace"},
	)
	namespaceEntriesSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biorel_namespace_entries_skipped_total",
			Help: "Number of identifier records that yielded no namespace entry.",
		},
		[]string{"namespace"},
	)
	edgesEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biorel_edges_emitted_total",
			Help: "Number of edges stored by a graph sink.",
		},
		[]string{"source", "relation"},
	)
	edgesDuplicate = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biorel_edges_duplicate_total",
			Help: "Number of edges a graph sink already held.",
		},
		[]string{"source", "relation"},
	)
	recordsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biorel_records_skipped_total",
			Help: "Number of interaction records that produced no edge.",
		},
		[]string{"source", "reason"},
	)
)

func init() {
	prometheus.MustRegister(namespaceEntriesAdded, namespaceEntriesSkipped, edgesEmitted, edgesDuplicate, recordsSkipped)
}
