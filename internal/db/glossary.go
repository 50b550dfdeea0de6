package db

import "fmt"

// InsertCanonical adds a canonical term. SourceFile must be an indexed node.
func (o ops) InsertCanonical(g GlossaryTerm) error {
	_, err := o.q.Exec(`INSERT INTO glossary_canonical (term, definition, source_file) VALUES (?, ?, ?)`,
		g.Term, g.Definition, g.SourceFile)
	return wrapErr(fmt.Sprintf("inserting term %q", g.Term), err)
}

// InsertVariant adds an accepted variant of an existing canonical term.
func (o ops) InsertVariant(v GlossaryVariant) error {
	_, err := o.q.Exec(`INSERT INTO glossary_variants (variant, canonical_term, usage_rule) VALUES (?, ?, ?)`,
		v.Variant, v.CanonicalTerm, v.UsageRule)
	return wrapErr(fmt.Sprintf("inserting variant %q", v.Variant), err)
}

// InsertForbidden adds a term that must be replaced by its canonical form.
func (o ops) InsertForbidden(f GlossaryForbidden) error {
	_, err := o.q.Exec(`INSERT INTO glossary_forbidden (forbidden_term, canonical_term) VALUES (?, ?)`,
		f.ForbiddenTerm, f.CanonicalTerm)
	return wrapErr(fmt.Sprintf("inserting forbidden term %q", f.ForbiddenTerm), err)
}

// CanonicalTerms returns every canonical term ordered by term.
func (o ops) CanonicalTerms() ([]GlossaryTerm, error) {
	rows, err := o.q.Query(`SELECT term, definition, source_file FROM glossary_canonical ORDER BY term`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GlossaryTerm
	for rows.Next() {
		var g GlossaryTerm
		if err := rows.Scan(&g.Term, &g.Definition, &g.SourceFile); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Variants returns every variant ordered by variant.
func (o ops) Variants() ([]GlossaryVariant, error) {
	rows, err := o.q.Query(`SELECT variant, canonical_term, usage_rule FROM glossary_variants ORDER BY variant`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GlossaryVariant
	for rows.Next() {
		var v GlossaryVariant
		if err := rows.Scan(&v.Variant, &v.CanonicalTerm, &v.UsageRule); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ForbiddenTerms returns every forbidden term ordered by term.
func (o ops) ForbiddenTerms() ([]GlossaryForbidden, error) {
	rows, err := o.q.Query(`SELECT forbidden_term, canonical_term FROM glossary_forbidden ORDER BY forbidden_term`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GlossaryForbidden
	for rows.Next() {
		var f GlossaryForbidden
		if err := rows.Scan(&f.ForbiddenTerm, &f.CanonicalTerm); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteGlossaryFrom removes the terms sourced from a node, with their
// variants and forbidden forms.
func (o ops) DeleteGlossaryFrom(sourceFile string) error {
	for _, stmt := range []string{
		`DELETE FROM glossary_forbidden WHERE canonical_term IN (SELECT term FROM glossary_canonical WHERE source_file = ?)`,
		`DELETE FROM glossary_variants WHERE canonical_term IN (SELECT term FROM glossary_canonical WHERE source_file = ?)`,
		`DELETE FROM glossary_canonical WHERE source_file = ?`,
	} {
		if _, err := o.q.Exec(stmt, sourceFile); err != nil {
			return wrapErr(fmt.Sprintf("deleting glossary of %s", sourceFile), err)
		}
	}
	return nil
}

// ClearGlossary removes every glossary row.
func (o ops) ClearGlossary() error {
	for _, table := range []string{"glossary_forbidden", "glossary_variants", "glossary_canonical"} {
		if _, err := o.q.Exec(`DELETE FROM ` + table); err != nil {
			return wrapErr("clearing "+table, err)
		}
	}
	return nil
}
