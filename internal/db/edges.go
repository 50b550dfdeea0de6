package db

import "fmt"

func scanEdge(scanner interface{ Scan(dest ...any) error }) (Edge, error) {
	var e Edge
	err := scanner.Scan(&e.SourceID, &e.TargetID, &e.EdgeType)
	return e, err
}

// InsertEdge records a directed relation. Both endpoints must already exist
// and the (source, target, type) triple must be new.
func (o ops) InsertEdge(e Edge) error {
	_, err := o.q.Exec(`INSERT INTO edges (source_id, target_id, edge_type) VALUES (?, ?, ?)`,
		e.SourceID, e.TargetID, e.EdgeType)
	return wrapErr(fmt.Sprintf("inserting edge %s -[%s]-> %s", e.SourceID, e.EdgeType, e.TargetID), err)
}

// AllEdges returns every edge ordered by source, target and type.
func (o ops) AllEdges() ([]Edge, error) {
	return o.queryEdges(`SELECT source_id, target_id, edge_type FROM edges ORDER BY source_id, target_id, edge_type`)
}

// EdgesFrom returns the outgoing edges of a node.
func (o ops) EdgesFrom(id string) ([]Edge, error) {
	return o.queryEdges(`
		SELECT source_id, target_id, edge_type FROM edges
		WHERE source_id = ? ORDER BY target_id, edge_type
	`, id)
}

// EdgesTo returns the incoming edges of a node.
func (o ops) EdgesTo(id string) ([]Edge, error) {
	return o.queryEdges(`
		SELECT source_id, target_id, edge_type FROM edges
		WHERE target_id = ? ORDER BY source_id, edge_type
	`, id)
}

// ClearEdges removes every edge. Nodes are untouched.
func (o ops) ClearEdges() error {
	_, err := o.q.Exec(`DELETE FROM edges`)
	return wrapErr("clearing edges", err)
}

func (o ops) queryEdges(query string, args ...any) ([]Edge, error) {
	rows, err := o.q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		e, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
