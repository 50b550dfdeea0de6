package db

// Node represents a row in the nodes table
type Node struct {
	ID            string  `json:"id"`   // repo-relative path, forward slashes
	Tier          int     `json:"tier"` // 1..3
	Type          string  `json:"type"` // "story", "skill", "config", ...
	Name          *string `json:"name"`
	TokenEstimate *int    `json:"token_estimate"`
	Frontmatter   *string `json:"frontmatter"` // JSON object
	LastModified  *string `json:"last_modified"`
}

// Edge represents a row in the edges table
type Edge struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	EdgeType string `json:"edge_type"` // frontmatter key: "depends_on", "related", ...
}

// GlossaryTerm represents a row in glossary_canonical
type GlossaryTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	SourceFile string `json:"source_file"`
}

// GlossaryVariant represents a row in glossary_variants
type GlossaryVariant struct {
	Variant       string  `json:"variant"`
	CanonicalTerm string  `json:"canonical_term"`
	UsageRule     *string `json:"usage_rule"`
}

// GlossaryForbidden represents a row in glossary_forbidden
type GlossaryForbidden struct {
	ForbiddenTerm string `json:"forbidden_term"`
	CanonicalTerm string `json:"canonical_term"`
}

// Counts holds row counts per table.
type Counts struct {
	Nodes     int `json:"nodes"`
	Edges     int `json:"edges"`
	Canonical int `json:"glossary_canonical"`
	Variants  int `json:"glossary_variants"`
	Forbidden int `json:"glossary_forbidden"`
}

// Ptr returns a pointer to v, for filling nullable columns.
func Ptr[T any](v T) *T {
	return &v
}
