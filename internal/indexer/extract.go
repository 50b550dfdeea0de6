package indexer

import (
	"encoding/json"
	"path"
	"path/filepath"
	"strings"

	"docgen/internal/db"
	"docgen/internal/metadata"
	"docgen/internal/tier"
)

// EdgeKeys are the frontmatter keys that name related nodes. The key becomes
// the edge type.
var EdgeKeys = []string{"depends_on", "related", "implements", "supersedes", "epic"}

// record is one extracted file, kept until its edges are written.
type record struct {
	node        db.Node
	tier        tier.Tier
	nodeType    tier.NodeType
	frontmatter map[string]any
}

// extract computes every stored attribute of a walked file. Failures degrade
// to empty values and land in diags.
func extract(fd tier.FileDescriptor, diags *metadata.Diagnostics) record {
	fm := metadata.ParseFrontmatter(fd.Path, diags)

	t, nodeType := fd.Tier, fd.Type
	if t > tier.Tier1 && metadata.ShouldUpgrade(fm) {
		t = tier.Tier1
		nodeType = tier.DeriveType(fd.RelPath, t)
	}

	blob := fm
	if blob == nil && t <= tier.Tier2 && metadata.IsStructuredConfig(filepath.Base(fd.Path)) {
		blob = metadata.ParseConfig(fd.Path, diags)
	}

	n := db.Node{
		ID:            fd.RelPath,
		Tier:          int(t),
		Type:          string(nodeType),
		Name:          db.Ptr(metadata.ExtractName(fd.Path, fm)),
		TokenEstimate: db.Ptr(metadata.EstimateTokens(fd.Path)),
	}
	if blob != nil {
		raw, err := json.Marshal(blob)
		if err != nil {
			diags.Add(fd.Path, "frontmatter", err)
		} else {
			n.Frontmatter = db.Ptr(string(raw))
		}
	}
	if mod := metadata.LastModified(fd.Path, diags); mod != "" {
		n.LastModified = db.Ptr(mod)
	}
	return record{node: n, tier: t, nodeType: nodeType, frontmatter: fm}
}

// deriveEdges lists the edges named by a node's frontmatter, deduplicated and
// in key order. Targets that are not in known are reported and dropped.
func deriveEdges(r record, known map[string]bool, diags *metadata.Diagnostics) []db.Edge {
	if r.frontmatter == nil {
		return nil
	}
	var edges []db.Edge
	seen := make(map[db.Edge]bool)
	for _, key := range EdgeKeys {
		for _, target := range targets(r.frontmatter[key]) {
			e := db.Edge{SourceID: r.node.ID, TargetID: target, EdgeType: key}
			if seen[e] {
				continue
			}
			seen[e] = true
			if !known[target] {
				diags.Add(r.node.ID, "edge", &DanglingEdgeError{Key: key, Target: target})
				continue
			}
			edges = append(edges, e)
		}
	}
	return edges
}

// targets accepts a single id or a list of ids. Non-string entries are ignored.
func targets(v any) []string {
	var raw []string
	switch v := v.(type) {
	case string:
		raw = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	out := raw[:0]
	for _, s := range raw {
		s = strings.TrimSpace(filepath.ToSlash(s))
		if s == "" {
			continue
		}
		out = append(out, strings.TrimPrefix(path.Clean(s), "./"))
	}
	return out
}

// DanglingEdgeError reports a frontmatter reference to a file that is not indexed.
type DanglingEdgeError struct {
	Key    string
	Target string
}

func (e *DanglingEdgeError) Error() string {
	return e.Key + " target " + e.Target + " is not indexed"
}
