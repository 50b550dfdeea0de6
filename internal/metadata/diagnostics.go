// Package metadata extracts per-file attributes for the documentation index.
// Every extractor fails soft: on unreadable or malformed input it returns an
// empty result and, when given a Diagnostics collector, records why.
package metadata

import "fmt"

// Diagnostic is one soft failure recorded during extraction.
type Diagnostic struct {
	Path string
	Op   string
	Err  error
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s: %v", d.Op, d.Path, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics collects soft failures. A nil *Diagnostics discards them.
type Diagnostics struct {
	items []Diagnostic
}

// Add records a failure. It is a no-op on a nil receiver.
func (d *Diagnostics) Add(path, op string, err error) {
	if d == nil || err == nil {
		return
	}
	d.items = append(d.items, Diagnostic{Path: path, Op: op, Err: err})
}

// Items returns the recorded diagnostics in order.
func (d *Diagnostics) Items() []Diagnostic {
	if d == nil {
		return nil
	}
	return d.items
}

// Len returns the number of recorded diagnostics.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}
