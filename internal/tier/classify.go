// Package tier decides which repository files are indexed and how they are
// categorized: glob rules, tier classification, node types and the pruning
// file walker.
package tier

import (
	"path"
	"path/filepath"
	"strings"
)

// Tier expresses a file's importance to documentation generation.
type Tier int

const (
	Tier1        Tier = 1 // definitional
	Tier2        Tier = 2 // structural
	Tier3        Tier = 3 // implementation, the default
	TierExcluded Tier = 4 // never indexed
)

// Classify assigns a tier to a repository-relative path. Evaluation order is
// exclusion, tier 1, tier 2, then the tier 3 default; the first match wins.
func Classify(relPath string, r *Rules) Tier {
	rel := filepath.ToSlash(relPath)

	if r.excluded(rel) {
		return TierExcluded
	}
	for _, p := range r.tier1 {
		if p.Match(rel) {
			return Tier1
		}
	}
	for _, p := range r.tier2 {
		if p.Match(rel) {
			return Tier2
		}
	}
	return Tier3
}

func (r *Rules) excluded(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if r.excludedDirs[part] {
			return true
		}
	}
	base := path.Base(rel)
	if ext := Ext(base); ext != "" && r.excludedExts[ext] {
		return true
	}
	return r.excludedFiles[base] || r.excludedFiles[rel]
}

// Ext returns the extension of a file name, ignoring leading dots so that
// ".env" has no extension and ".env.example" has ".example".
func Ext(name string) string {
	trimmed := strings.TrimLeft(name, ".")
	i := strings.LastIndex(trimmed, ".")
	if i < 0 {
		return ""
	}
	return trimmed[i:]
}

// Stem returns name with Ext removed.
func Stem(name string) string {
	return strings.TrimSuffix(name, Ext(name))
}
