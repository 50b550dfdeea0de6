package db

import (
	"database/sql"
	"errors"
	"fmt"
)

const nodeColumns = `id, tier, type, name, token_estimate, frontmatter, last_modified`

// scanNode scans a row into a Node. The row must have nodeColumns in order.
func scanNode(scanner interface{ Scan(dest ...any) error }) (Node, error) {
	var n Node
	err := scanner.Scan(&n.ID, &n.Tier, &n.Type, &n.Name, &n.TokenEstimate, &n.Frontmatter, &n.LastModified)
	return n, err
}

// UpsertNode inserts n, or updates every column of the existing row with the
// same id. Edges and glossary rows that reference the node are untouched.
func (o ops) UpsertNode(n Node) error {
	_, err := o.q.Exec(`
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			tier = excluded.tier,
			type = excluded.type,
			name = excluded.name,
			token_estimate = excluded.token_estimate,
			frontmatter = excluded.frontmatter,
			last_modified = excluded.last_modified
	`, n.ID, n.Tier, n.Type, n.Name, n.TokenEstimate, n.Frontmatter, n.LastModified)
	return wrapErr(fmt.Sprintf("upserting node %s", n.ID), err)
}

// GetNode returns a single node by ID. A missing node yields ErrNotFound.
func (o ops) GetNode(id string) (*Node, error) {
	row := o.q.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)
	n, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// AllNodes returns all nodes ordered by id
func (o ops) AllNodes() ([]Node, error) {
	rows, err := o.q.Query(`SELECT ` + nodeColumns + ` FROM nodes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// DeleteNode removes a node together with every edge touching it and any
// glossary terms sourced from it.
func (o ops) DeleteNode(id string) error {
	if err := o.DeleteGlossaryFrom(id); err != nil {
		return err
	}
	if _, err := o.q.Exec(`DELETE FROM edges WHERE source_id = ? OR target_id = ?`, id, id); err != nil {
		return wrapErr(fmt.Sprintf("deleting edges of %s", id), err)
	}
	res, err := o.q.Exec(`DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return wrapErr(fmt.Sprintf("deleting node %s", id), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	return nil
}

// Reset deletes every row from every table, children first.
func (o ops) Reset() error {
	for i := len(Tables) - 1; i >= 0; i-- {
		if _, err := o.q.Exec(`DELETE FROM ` + Tables[i]); err != nil {
			return wrapErr("clearing "+Tables[i], err)
		}
	}
	return nil
}

// Counts returns the row count of each table.
func (o ops) Counts() (Counts, error) {
	var c Counts
	err := o.q.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM nodes),
			(SELECT COUNT(*) FROM edges),
			(SELECT COUNT(*) FROM glossary_canonical),
			(SELECT COUNT(*) FROM glossary_variants),
			(SELECT COUNT(*) FROM glossary_forbidden)
	`).Scan(&c.Nodes, &c.Edges, &c.Canonical, &c.Variants, &c.Forbidden)
	return c, err
}
