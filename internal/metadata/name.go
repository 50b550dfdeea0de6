package metadata

import (
	"fmt"
	"path/filepath"
	"strings"

	"docgen/internal/tier"
)

var nameKeys = []string{"title", "name", "id"}

var upgradeKeys = []string{"id", "title", "role"}

var nameReplacer = strings.NewReplacer("-", " ", "_", " ")

// ExtractName returns a human-readable name: the first non-null of the
// frontmatter title, name and id, else the basename without its extension
// with hyphens and underscores turned into spaces.
func ExtractName(path string, fm map[string]any) string {
	for _, k := range nameKeys {
		if v, ok := fm[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return nameReplacer.Replace(tier.Stem(filepath.Base(path)))
}

// ShouldUpgrade reports whether frontmatter promotes a tier 2 or 3 file to
// tier 1. Presence of any upgrade key counts, even with a null value.
func ShouldUpgrade(fm map[string]any) bool {
	for _, k := range upgradeKeys {
		if _, ok := fm[k]; ok {
			return true
		}
	}
	return false
}
