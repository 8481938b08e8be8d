package common

import "errors"

// Failure taxonomy for the ingestion and question-answering pipeline. Callers
// match with errors.Is; the concrete cause is carried by wrapping.
var (
	// ErrExtraction: model output did not conform to the record schema.
	ErrExtraction = errors.New("extraction output did not match the record schema")

	// ErrService: transport or auth failure talking to an external service.
	ErrService = errors.New("external service failure")

	// ErrUnsafeQuery: a generated query contained a data-modifying clause.
	ErrUnsafeQuery = errors.New("generated query contains a modification clause")

	// ErrQueryExecution: the query ran and failed, or failed again after the
	// single repair attempt.
	ErrQueryExecution = errors.New("query could not be completed")

	// ErrIdentity: no usable patient identity could be established.
	ErrIdentity = errors.New("no usable patient identity")
)
