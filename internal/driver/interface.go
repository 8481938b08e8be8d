package driver

import (
	"context"

	"github.com/medassist/medgraph/internal/core/model"
)

// GraphDriver is the narrow contract the pipeline consumes. Implementations
// must scope a connection to each call: acquired when the operation starts,
// released on success and failure alike. Statement parameters are always
// bound, never interpolated into the statement text.
type GraphDriver interface {
	// ExecuteWrite runs a mutation statement and returns its single
	// confirmation record, or nil if the statement produced no rows.
	ExecuteWrite(ctx context.Context, query string, params map[string]any) (map[string]any, error)

	// ExecuteRead runs a read statement and returns all rows, each a mapping
	// from column name to value.
	ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)

	// Schema introspects the currently defined node labels and relationship types.
	Schema(ctx context.Context) (model.GraphSchema, error)

	// Snapshot fetches up to limit relationships for visualization.
	Snapshot(ctx context.Context, limit int) (model.GraphSnapshot, error)

	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
