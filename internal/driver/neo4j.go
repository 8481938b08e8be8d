package driver

import (
	"context"
	"fmt"
	"sort"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"

	"github.com/medassist/medgraph/internal/core/model"
)

type Neo4jDriver struct {
	driver   neo4j.DriverWithContext
	database string
}

func NewNeo4jDriver(ctx context.Context, uri, username, password, database string) (*Neo4jDriver, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, err
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}

	log.Info().Str("uri", uri).Str("database", database).Msg("Connected to Neo4j")
	return &Neo4jDriver{driver: driver, database: database}, nil
}

func (d *Neo4jDriver) Close(ctx context.Context) error {
	return d.driver.Close(ctx)
}

func (d *Neo4jDriver) session(ctx context.Context) neo4j.SessionWithContext {
	return d.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: d.database})
}

func (d *Neo4jDriver) ExecuteWrite(ctx context.Context, query string, params map[string]any) (map[string]any, error) {
	session := d.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, nil
		}
		return recordToMap(records[0]), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute write: %w", err)
	}
	if result == nil {
		return nil, nil
	}
	return result.(map[string]any), nil
}

func (d *Neo4jDriver) ExecuteRead(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	session := d.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		records, err := res.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]map[string]any, 0, len(records))
		for _, rec := range records {
			rows = append(rows, recordToMap(rec))
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]map[string]any), nil
}

func (d *Neo4jDriver) Schema(ctx context.Context) (model.GraphSchema, error) {
	labels, err := d.readStrings(ctx, LabelsQuery, "label")
	if err != nil {
		return model.GraphSchema{}, fmt.Errorf("failed to introspect labels: %w", err)
	}
	rels, err := d.readStrings(ctx, RelationshipTypesQuery, "relationshipType")
	if err != nil {
		return model.GraphSchema{}, fmt.Errorf("failed to introspect relationship types: %w", err)
	}
	sort.Strings(labels)
	sort.Strings(rels)
	return model.GraphSchema{Labels: labels, RelationshipTypes: rels}, nil
}

func (d *Neo4jDriver) readStrings(ctx context.Context, query, column string) ([]string, error) {
	rows, err := d.ExecuteRead(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if s, ok := row[column].(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (d *Neo4jDriver) Snapshot(ctx context.Context, limit int) (model.GraphSnapshot, error) {
	rows, err := d.ExecuteRead(ctx, SnapshotQuery, map[string]any{"limit": limit})
	if err != nil {
		return model.GraphSnapshot{}, err
	}

	snapshot := model.GraphSnapshot{}
	seen := map[string]bool{}
	for _, row := range rows {
		for _, col := range []string{"n", "m"} {
			node, ok := row[col].(neo4j.Node)
			if !ok || seen[node.ElementId] {
				continue
			}
			seen[node.ElementId] = true
			snapshot.Nodes = append(snapshot.Nodes, model.SnapshotNode{
				ID:         node.ElementId,
				Labels:     node.Labels,
				Properties: node.Props,
			})
		}
		if rel, ok := row["r"].(neo4j.Relationship); ok {
			snapshot.Edges = append(snapshot.Edges, model.SnapshotEdge{
				ID:     rel.ElementId,
				Type:   rel.Type,
				Source: rel.StartElementId,
				Target: rel.EndElementId,
			})
		}
	}
	return snapshot, nil
}

func (d *Neo4jDriver) BuildIndices(ctx context.Context) error {
	queries := []string{
		"CREATE INDEX patient_mrn IF NOT EXISTS FOR (p:Patient) ON (p.mrn)",
		"CREATE INDEX patient_id IF NOT EXISTS FOR (p:Patient) ON (p.patientId)",
		"CREATE INDEX condition_name IF NOT EXISTS FOR (c:Condition) ON (c.name)",
		"CREATE INDEX medication_name IF NOT EXISTS FOR (m:Medication) ON (m.name)",
		"CREATE INDEX allergy_allergen IF NOT EXISTS FOR (a:Allergy) ON (a.allergen)",
		"CREATE INDEX procedure_name IF NOT EXISTS FOR (p:Procedure) ON (p.name)",
		"CREATE INDEX symptom_name IF NOT EXISTS FOR (s:Symptom) ON (s.name)",
	}

	session := d.session(ctx)
	defer session.Close(ctx)

	for _, q := range queries {
		_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, q, nil)
			return nil, err
		})
		if err != nil {
			// Index may already exist or the server may predate the syntax.
			log.Warn().Err(err).Str("query", q).Msg("failed to create index")
		}
	}

	return nil
}

func recordToMap(rec *neo4j.Record) map[string]any {
	row := make(map[string]any, len(rec.Keys))
	for i, key := range rec.Keys {
		row[key] = rec.Values[i]
	}
	return row
}
