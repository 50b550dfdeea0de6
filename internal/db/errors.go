package db

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrIntegrity marks a write rejected by a constraint: a dangling
	// reference, a duplicate key or an out-of-range tier.
	ErrIntegrity = errors.New("integrity violation")

	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("not found")
)

// wrapErr annotates err with op and tags constraint failures with ErrIntegrity.
func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isConstraint(err) {
		return fmt.Errorf("%s: %w: %w", op, ErrIntegrity, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
