package indexer

import (
	"time"

	"docgen/internal/metadata"
	"docgen/internal/tier"
)

// Stats summarizes one indexing run.
type Stats struct {
	Incremental bool
	Indexed     int // nodes written this run
	Unchanged   int // skipped by an incremental run
	Removed     int // nodes whose file vanished
	ByTier      map[tier.Tier]int
	ByType      map[tier.NodeType]int
	Tokens      int
	Edges       int
	Glossary    int // canonical terms loaded
	Diagnostics []metadata.Diagnostic
	Duration    time.Duration
}

func newStats(incremental bool) *Stats {
	return &Stats{
		Incremental: incremental,
		ByTier:      make(map[tier.Tier]int),
		ByType:      make(map[tier.NodeType]int),
	}
}

func (s *Stats) add(r record) {
	s.Indexed++
	s.ByTier[r.tier]++
	s.ByType[r.nodeType]++
	if r.node.TokenEstimate != nil {
		s.Tokens += *r.node.TokenEstimate
	}
}
