// Package staleness decides whether generated documents still describe their
// sources. A generated document records, in its frontmatter key
// "source_files", the git blob hash of every file it was written from; a
// document is stale once any of those files changes or disappears.
package staleness

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"docgen/internal/db"
	"docgen/internal/metadata"
)

// SourcesKey is the frontmatter key holding path -> blob hash.
const SourcesKey = "source_files"

// Reason explains why a source no longer matches.
type Reason string

const (
	ReasonChanged Reason = "changed"
	ReasonMissing Reason = "missing"
	ReasonInvalid Reason = "invalid" // recorded hash is not a string
)

// StaleSource is one source file whose content moved on.
type StaleSource struct {
	Path     string `json:"path"`
	Recorded string `json:"recorded"`
	Current  string `json:"current,omitempty"`
	Reason   Reason `json:"reason"`
}

// StaleDoc is a generated document with at least one stale source.
type StaleDoc struct {
	Doc     string        `json:"doc"`
	Sources []StaleSource `json:"sources"`
}

// Drift is an indexed node whose file changed since the index was written.
type Drift struct {
	ID      string `json:"id"`
	Indexed string `json:"indexed"`
	Current string `json:"current,omitempty"` // empty when the file is gone
}

// Report is the outcome of a staleness check.
type Report struct {
	Checked   int        `json:"checked"`   // documents with recorded sources
	Untracked []string   `json:"untracked"` // documents without recorded sources
	Docs      []StaleDoc `json:"stale_docs"`
	Drift     []Drift    `json:"drift"`
}

// Stale reports whether anything needs regenerating or re-indexing.
func (r *Report) Stale() bool {
	return len(r.Docs) > 0 || len(r.Drift) > 0
}

// NodeLister is the index surface used for drift detection.
type NodeLister interface {
	AllNodes() ([]db.Node, error)
}

// Check compares every markdown document under dir against its recorded
// sources, resolved relative to root. When idx is non-nil it also reports
// index drift.
func Check(root, dir string, idx NodeLister) (*Report, error) {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	report := &Report{}

	docs, err := markdownFiles(dir)
	if err != nil {
		return nil, err
	}
	for _, doc := range docs {
		rel, err := filepath.Rel(root, doc)
		if err != nil {
			rel = doc
		}
		rel = filepath.ToSlash(rel)

		recorded := recordedSources(doc)
		if recorded == nil {
			report.Untracked = append(report.Untracked, rel)
			continue
		}
		report.Checked++

		stale, err := compareSources(root, recorded)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", rel, err)
		}
		if len(stale) > 0 {
			report.Docs = append(report.Docs, StaleDoc{Doc: rel, Sources: stale})
		}
	}

	if idx != nil {
		drift, err := indexDrift(root, idx)
		if err != nil {
			return nil, err
		}
		report.Drift = drift
	}
	return report, nil
}

func markdownFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(p), ".md") {
			files = append(files, p)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// recordedSources reads the source_files mapping. Documents without one, or
// with a malformed one, return nil.
func recordedSources(doc string) map[string]any {
	fm := metadata.ParseFrontmatter(doc, nil)
	if fm == nil {
		return nil
	}
	sources, _ := fm[SourcesKey].(map[string]any)
	if len(sources) == 0 {
		return nil
	}
	return sources
}

func compareSources(root string, recorded map[string]any) ([]StaleSource, error) {
	paths := make([]string, 0, len(recorded))
	for p := range recorded {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var stale []StaleSource
	var present []string
	for _, p := range paths {
		want, ok := recorded[p].(string)
		if !ok {
			stale = append(stale, StaleSource{Path: p, Recorded: fmt.Sprint(recorded[p]), Reason: ReasonInvalid})
			continue
		}
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(p))); err != nil {
			stale = append(stale, StaleSource{Path: p, Recorded: want, Reason: ReasonMissing})
			continue
		}
		present = append(present, p)
	}

	current, err := HashFiles(root, present)
	if err != nil {
		return nil, err
	}
	for _, p := range present {
		want := recorded[p].(string)
		if current[p] != want {
			stale = append(stale, StaleSource{Path: p, Recorded: want, Current: current[p], Reason: ReasonChanged})
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].Path < stale[j].Path })
	return stale, nil
}

func indexDrift(root string, idx NodeLister) ([]Drift, error) {
	nodes, err := idx.AllNodes()
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	var drift []Drift
	for _, n := range nodes {
		if n.LastModified == nil {
			continue
		}
		current := metadata.LastModified(filepath.Join(root, filepath.FromSlash(n.ID)), nil)
		if current != *n.LastModified {
			drift = append(drift, Drift{ID: n.ID, Indexed: *n.LastModified, Current: current})
		}
	}
	return drift, nil
}
