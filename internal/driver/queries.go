package driver

const (
	LabelsQuery            = `CALL db.labels() YIELD label RETURN label`
	RelationshipTypesQuery = `CALL db.relationshipTypes() YIELD relationshipType RETURN relationshipType`

	SnapshotQuery = `
		MATCH (n)-[r]->(m)
		RETURN n, r, m
		LIMIT $limit
	`
)
