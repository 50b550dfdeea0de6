package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection
type DB struct {
	ops
	conn *sql.DB
	Path string
}

// Tx is an open write transaction. It exposes the same operations as DB.
type Tx struct {
	ops
	tx *sql.Tx
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type ops struct {
	q querier
}

// OpenDB opens (or creates) the index at path with WAL mode and foreign keys
// enabled, and applies the schema.
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer per store. A single connection also keeps ":memory:" a
	// single database and the pragmas below in effect.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening database: %w", err)
	}

	d := &DB{ops: ops{q: conn}, conn: conn, Path: path}
	if err := d.CreateSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return d, nil
}

// dsn applies the connection pragmas: WAL so readers never block on the
// indexer, and foreign keys so every reference is enforced.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying sql.DB for custom queries
func (d *DB) Conn() *sql.DB {
	return d.conn
}

// Begin starts a write transaction. While it is open, use only the Tx.
func (d *DB) Begin() (*Tx, error) {
	tx, err := d.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Tx{ops: ops{q: tx}, tx: tx}, nil
}

// WithTx runs fn in a transaction, committing if it returns nil and rolling
// back otherwise.
func (d *DB) WithTx(fn func(tx *Tx) error) error {
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return wrapErr("committing transaction", err)
	}
	return nil
}

// Rollback aborts the transaction.
func (t *Tx) Rollback() error {
	return t.tx.Rollback()
}
