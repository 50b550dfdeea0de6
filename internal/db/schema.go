package db

import "fmt"

// Tables lists every table the index owns, parents before children.
var Tables = []string{"nodes", "edges", "glossary_canonical", "glossary_variants", "glossary_forbidden"}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS nodes (
	id              TEXT PRIMARY KEY NOT NULL,
	tier            INTEGER NOT NULL CHECK (tier BETWEEN 1 AND 3),
	type            TEXT NOT NULL,
	name            TEXT,
	token_estimate  INTEGER,
	frontmatter     TEXT, -- opaque JSON, never validated here
	last_modified   TEXT
);

CREATE TABLE IF NOT EXISTS edges (
	source_id   TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	edge_type   TEXT NOT NULL,
	UNIQUE (source_id, target_id, edge_type),
	FOREIGN KEY (source_id) REFERENCES nodes(id),
	FOREIGN KEY (target_id) REFERENCES nodes(id)
);

CREATE INDEX IF NOT EXISTS edges_target ON edges(target_id);

CREATE TABLE IF NOT EXISTS glossary_canonical (
	term        TEXT PRIMARY KEY NOT NULL,
	definition  TEXT NOT NULL,
	source_file TEXT NOT NULL,
	FOREIGN KEY (source_file) REFERENCES nodes(id)
);

CREATE TABLE IF NOT EXISTS glossary_variants (
	variant         TEXT PRIMARY KEY NOT NULL,
	canonical_term  TEXT NOT NULL,
	usage_rule      TEXT,
	FOREIGN KEY (canonical_term) REFERENCES glossary_canonical(term)
);

CREATE TABLE IF NOT EXISTS glossary_forbidden (
	forbidden_term  TEXT PRIMARY KEY NOT NULL,
	canonical_term  TEXT NOT NULL,
	FOREIGN KEY (canonical_term) REFERENCES glossary_canonical(term)
);
`

// CreateSchema creates any missing tables. Safe to run against an existing
// index; it never drops or rewrites data.
func (d *DB) CreateSchema() error {
	if _, err := d.conn.Exec(schemaSQL); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// JournalMode returns the connection's journal mode ("wal" for file databases).
func (d *DB) JournalMode() (string, error) {
	var mode string
	err := d.conn.QueryRow("PRAGMA journal_mode").Scan(&mode)
	return mode, err
}

// ForeignKeysEnabled reports whether foreign key enforcement is on.
func (d *DB) ForeignKeysEnabled() (bool, error) {
	var on int
	err := d.conn.QueryRow("PRAGMA foreign_keys").Scan(&on)
	return on == 1, err
}
