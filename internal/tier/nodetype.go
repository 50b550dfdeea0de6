package tier

import (
	"path"
	"path/filepath"
	"strings"
)

// NodeType is the semantic category of an indexed file.
type NodeType string

const (
	TypeStory          NodeType = "story"
	TypeEpic           NodeType = "epic"
	TypeHook           NodeType = "hook"
	TypeSkill          NodeType = "skill"
	TypeAgent          NodeType = "agent"
	TypeADR            NodeType = "adr"
	TypeConfig         NodeType = "config"
	TypeDef            NodeType = "type_def"
	TypeModule         NodeType = "module"
	TypeImplementation NodeType = "implementation"
)

// Ordered most specific first.
var directoryTypes = []struct {
	pattern Pattern
	typ     NodeType
}{
	{MustCompilePattern("docs/stories/**"), TypeStory},
	{MustCompilePattern("docs/epics/**"), TypeEpic},
	{MustCompilePattern(".claude/hooks/**"), TypeHook},
	{MustCompilePattern(".claude/skills/**"), TypeSkill},
	{MustCompilePattern(".claude/agents/**"), TypeAgent},
	{MustCompilePattern("docs/adr/**"), TypeADR},
}

const typeDefSuffix = ".d.ts"

var moduleEntryPoints = map[string]bool{
	"index.ts": true,
	"index.js": true,
}

var structuredExts = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// DeriveType maps a path and its tier to a node type. It looks only at the
// path shape, never at file content.
func DeriveType(relPath string, t Tier) NodeType {
	rel := filepath.ToSlash(relPath)

	for _, dt := range directoryTypes {
		if dt.pattern.Match(rel) {
			return dt.typ
		}
	}
	if strings.HasSuffix(rel, typeDefSuffix) {
		return TypeDef
	}
	base := path.Base(rel)
	if moduleEntryPoints[base] {
		return TypeModule
	}
	if structuredExts[Ext(base)] && t <= Tier2 {
		return TypeConfig
	}
	return TypeImplementation
}
