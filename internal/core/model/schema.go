package model

// GraphSchema is a live snapshot of what the database currently defines,
// refreshed before query synthesis and again before a repair attempt.
type GraphSchema struct {
	Labels            []string `json:"labels"`
	RelationshipTypes []string `json:"relationship_types"`
}

// GraphSnapshot is a bounded read of the graph for visualization only.
type GraphSnapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Edges []SnapshotEdge `json:"edges"`
}

type SnapshotNode struct {
	ID         string         `json:"id"`
	Labels     []string       `json:"labels"`
	Properties map[string]any `json:"properties"`
}

type SnapshotEdge struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Source string `json:"source"`
	Target string `json:"target"`
}
