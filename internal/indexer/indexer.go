// Package indexer rebuilds the documentation index: it walks the repository,
// extracts metadata for every non-excluded file, and writes nodes, edges and
// the glossary in one transaction.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"docgen/internal/db"
	"docgen/internal/glossary"
	"docgen/internal/metadata"
	"docgen/internal/tier"
)

// Options configures an Indexer.
type Options struct {
	Root     string
	Rules    *tier.Rules        // nil uses tier.Default()
	Glossary *glossary.Glossary // nil leaves the glossary tables empty
	Logger   *slog.Logger
	Metrics  *Metrics
}

// Indexer writes one repository into one store. Runs must not overlap.
type Indexer struct {
	store    *db.DB
	root     string
	rules    *tier.Rules
	glossary *glossary.Glossary
	logger   *slog.Logger
	metrics  *Metrics
}

// New creates an Indexer for store.
func New(store *db.DB, opts Options) *Indexer {
	if opts.Rules == nil {
		opts.Rules = tier.Default()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Indexer{
		store:    store,
		root:     opts.Root,
		rules:    opts.Rules,
		glossary: opts.Glossary,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}
}

// Rebuild clears the index and re-indexes the whole repository. On any store
// error nothing is committed.
func (ix *Indexer) Rebuild(ctx context.Context) (*Stats, error) {
	return ix.run(ctx, false)
}

// Update re-indexes only files whose modification time changed, adds new
// files and removes nodes whose file is gone.
func (ix *Indexer) Update(ctx context.Context) (*Stats, error) {
	return ix.run(ctx, true)
}

func (ix *Indexer) run(ctx context.Context, incremental bool) (*Stats, error) {
	start := time.Now()
	stats := newStats(incremental)
	var diags metadata.Diagnostics

	err := ix.store.WithTx(func(tx *db.Tx) error {
		if incremental {
			return ix.update(ctx, tx, stats, &diags)
		}
		return ix.rebuild(ctx, tx, stats, &diags)
	})
	if err != nil {
		return nil, err
	}

	stats.Diagnostics = diags.Items()
	stats.Duration = time.Since(start)
	for _, d := range stats.Diagnostics {
		ix.logger.Warn("extraction degraded", "path", d.Path, "op", d.Op, "error", d.Err)
	}
	ix.metrics.observe(stats)
	ix.logger.Info("index committed",
		"incremental", incremental,
		"indexed", stats.Indexed,
		"unchanged", stats.Unchanged,
		"removed", stats.Removed,
		"edges", stats.Edges,
		"glossary_terms", stats.Glossary,
		"duration", stats.Duration)
	return stats, nil
}

func (ix *Indexer) rebuild(ctx context.Context, tx *db.Tx, stats *Stats, diags *metadata.Diagnostics) error {
	if err := tx.Reset(); err != nil {
		return err
	}

	known := make(map[string]bool)
	var records []record
	for fd, err := range tier.Walk(ix.root, ix.rules) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			if errors.Is(err, tier.ErrWalkRoot) {
				return err
			}
			diags.Add(ix.root, "walk", err)
			continue
		}
		r := extract(fd, diags)
		if err := tx.UpsertNode(r.node); err != nil {
			return err
		}
		ix.logger.Debug("indexed", "id", r.node.ID, "tier", r.tier, "type", r.nodeType)
		known[r.node.ID] = true
		records = append(records, r)
		stats.add(r)
	}

	if err := ix.writeEdges(tx, records, known, stats, diags); err != nil {
		return err
	}
	return ix.loadGlossary(tx, known, stats, diags)
}

func (ix *Indexer) update(ctx context.Context, tx *db.Tx, stats *Stats, diags *metadata.Diagnostics) error {
	nodes, err := tx.AllNodes()
	if err != nil {
		return fmt.Errorf("reading index: %w", err)
	}
	stored := make(map[string]db.Node, len(nodes))
	for _, n := range nodes {
		stored[n.ID] = n
	}

	known := make(map[string]bool)
	var records []record
	for fd, err := range tier.Walk(ix.root, ix.rules) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			if errors.Is(err, tier.ErrWalkRoot) {
				return err
			}
			diags.Add(ix.root, "walk", err)
			continue
		}
		known[fd.RelPath] = true
		if prev, ok := stored[fd.RelPath]; ok && unchanged(prev, fd) {
			stats.Unchanged++
			if prev.Frontmatter != nil {
				records = append(records, reread(fd))
			}
			continue
		}
		r := extract(fd, diags)
		if err := tx.UpsertNode(r.node); err != nil {
			return err
		}
		ix.logger.Debug("re-indexed", "id", r.node.ID, "tier", r.tier, "type", r.nodeType)
		records = append(records, r)
		stats.add(r)
	}

	// Edges and the glossary are rebuilt below, so neither blocks a removal.
	if err := tx.ClearGlossary(); err != nil {
		return err
	}
	if err := tx.ClearEdges(); err != nil {
		return err
	}
	for id := range stored {
		if known[id] {
			continue
		}
		if err := tx.DeleteNode(id); err != nil {
			return err
		}
		ix.logger.Debug("removed", "id", id)
		stats.Removed++
	}

	// Every edge is re-derived: an unchanged file may name a target that was
	// just added or re-created.
	if err := ix.writeEdges(tx, records, known, stats, diags); err != nil {
		return err
	}
	return ix.loadGlossary(tx, known, stats, diags)
}

// unchanged reports whether the stored node still matches the file on disk.
func unchanged(n db.Node, fd tier.FileDescriptor) bool {
	if n.LastModified == nil || *n.LastModified == "" {
		return false
	}
	return *n.LastModified == metadata.LastModified(fd.Path, nil)
}

// reread recovers the frontmatter of an unchanged file for edge derivation.
// Its parse problems were reported when it was last indexed.
func reread(fd tier.FileDescriptor) record {
	return record{
		node:        db.Node{ID: fd.RelPath},
		frontmatter: metadata.ParseFrontmatter(fd.Path, nil),
	}
}

func (ix *Indexer) writeEdges(tx *db.Tx, records []record, known map[string]bool, stats *Stats, diags *metadata.Diagnostics) error {
	for _, r := range records {
		for _, e := range deriveEdges(r, known, diags) {
			if err := tx.InsertEdge(e); err != nil {
				return err
			}
			stats.Edges++
		}
	}
	return nil
}

// loadGlossary inserts every term whose source file is indexed. Terms with an
// unindexed source are reported and skipped along with their variants.
func (ix *Indexer) loadGlossary(tx *db.Tx, known map[string]bool, stats *Stats, diags *metadata.Diagnostics) error {
	if ix.glossary == nil {
		return nil
	}
	var terms []glossary.Term
	for _, t := range ix.glossary.Terms {
		if !known[t.Source] {
			diags.Add(t.Source, "glossary", fmt.Errorf("source of term %q is not indexed", t.Term))
			continue
		}
		terms = append(terms, t)
	}
	if err := glossary.Insert(tx, terms); err != nil {
		return err
	}
	stats.Glossary = len(terms)
	return nil
}
