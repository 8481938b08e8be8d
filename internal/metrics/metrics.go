package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestionsTotal tracks record ingestions by outcome.
	IngestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medgraph_ingestions_total",
			Help: "Total number of record ingestions",
		},
		[]string{"status"}, // "success", "error"
	)

	// QuestionsTotal tracks answered questions by outcome.
	QuestionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "medgraph_questions_total",
			Help: "Total number of natural-language questions processed",
		},
		[]string{"status"}, // "success", "error"
	)

	// QueryRepairsTotal counts schema-repair round trips.
	QueryRepairsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medgraph_query_repairs_total",
			Help: "Total number of query repair attempts after an execution failure",
		},
	)

	// UnsafeQueriesTotal counts generated queries rejected by the safety scan.
	UnsafeQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "medgraph_unsafe_queries_total",
			Help: "Total number of generated queries rejected for containing modification clauses",
		},
	)
)

func RecordIngestion(status string) {
	IngestionsTotal.WithLabelValues(status).Inc()
}

func RecordQuestion(status string) {
	QuestionsTotal.WithLabelValues(status).Inc()
}
