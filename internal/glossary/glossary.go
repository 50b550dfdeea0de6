// Package glossary loads the documentation glossary and checks prose against
// it. The glossary is authored as YAML, stored in the index, and read back
// from the index by the validator.
package glossary

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"docgen/internal/db"
)

// ErrInvalidGlossary marks a glossary file that fails validation.
var ErrInvalidGlossary = errors.New("invalid glossary")

var glossaryValidate = validator.New()

// Glossary is the full set of canonical terms.
type Glossary struct {
	Terms []Term `yaml:"terms" validate:"dive"`
}

// Term is one canonical phrasing with its accepted and forbidden alternatives.
type Term struct {
	Term       string    `yaml:"term" validate:"required"`
	Definition string    `yaml:"definition" validate:"required"`
	Source     string    `yaml:"source" validate:"required"` // indexed node id
	Variants   []Variant `yaml:"variants" validate:"dive"`
	Forbidden  []string  `yaml:"forbidden" validate:"dive,required"`
}

// Variant is an acceptable alternate phrasing, optionally restricted.
type Variant struct {
	Phrase    string `yaml:"phrase" validate:"required"`
	UsageRule string `yaml:"usage_rule"`
}

// Parse decodes and validates a glossary document.
func Parse(data []byte) (*Glossary, error) {
	var g Glossary
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGlossary, err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Load reads and parses the glossary at path.
func Load(path string) (*Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading glossary: %w", err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Validate checks field constraints and cross-term uniqueness. A phrase may
// be a canonical term, a variant or forbidden, but only one of them.
func (g *Glossary) Validate() error {
	if err := glossaryValidate.Struct(g); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGlossary, err)
	}

	seen := make(map[string]string)
	claim := func(phrase, role string) error {
		key := strings.ToLower(phrase)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q used as %s and %s", ErrInvalidGlossary, phrase, prev, role)
		}
		seen[key] = role
		return nil
	}
	for _, t := range g.Terms {
		if err := claim(t.Term, "term"); err != nil {
			return err
		}
	}
	for _, t := range g.Terms {
		for _, v := range t.Variants {
			if err := claim(v.Phrase, "variant of "+t.Term); err != nil {
				return err
			}
		}
		for _, f := range t.Forbidden {
			if err := claim(f, "forbidden for "+t.Term); err != nil {
				return err
			}
		}
	}
	return nil
}

// Writer is the store surface needed to persist a glossary.
type Writer interface {
	InsertCanonical(db.GlossaryTerm) error
	InsertVariant(db.GlossaryVariant) error
	InsertForbidden(db.GlossaryForbidden) error
}

// Insert writes every term, then its variants and forbidden forms, so each
// row's canonical reference exists before it is inserted.
func Insert(w Writer, terms []Term) error {
	for _, t := range terms {
		if err := w.InsertCanonical(db.GlossaryTerm{Term: t.Term, Definition: t.Definition, SourceFile: t.Source}); err != nil {
			return err
		}
	}
	for _, t := range terms {
		for _, v := range t.Variants {
			var rule *string
			if v.UsageRule != "" {
				rule = db.Ptr(v.UsageRule)
			}
			if err := w.InsertVariant(db.GlossaryVariant{Variant: v.Phrase, CanonicalTerm: t.Term, UsageRule: rule}); err != nil {
				return err
			}
		}
		for _, f := range t.Forbidden {
			if err := w.InsertForbidden(db.GlossaryForbidden{ForbiddenTerm: f, CanonicalTerm: t.Term}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reader is the store surface needed to read a glossary back.
type Reader interface {
	CanonicalTerms() ([]db.GlossaryTerm, error)
	Variants() ([]db.GlossaryVariant, error)
	ForbiddenTerms() ([]db.GlossaryForbidden, error)
}

// FromStore rebuilds a Glossary from the index tables.
func FromStore(r Reader) (*Glossary, error) {
	canon, err := r.CanonicalTerms()
	if err != nil {
		return nil, fmt.Errorf("reading glossary terms: %w", err)
	}
	variants, err := r.Variants()
	if err != nil {
		return nil, fmt.Errorf("reading glossary variants: %w", err)
	}
	forbidden, err := r.ForbiddenTerms()
	if err != nil {
		return nil, fmt.Errorf("reading forbidden terms: %w", err)
	}

	g := &Glossary{Terms: make([]Term, 0, len(canon))}
	index := make(map[string]int, len(canon))
	for _, c := range canon {
		index[c.Term] = len(g.Terms)
		g.Terms = append(g.Terms, Term{Term: c.Term, Definition: c.Definition, Source: c.SourceFile})
	}
	for _, v := range variants {
		i, ok := index[v.CanonicalTerm]
		if !ok {
			continue
		}
		variant := Variant{Phrase: v.Variant}
		if v.UsageRule != nil {
			variant.UsageRule = *v.UsageRule
		}
		g.Terms[i].Variants = append(g.Terms[i].Variants, variant)
	}
	for _, f := range forbidden {
		if i, ok := index[f.CanonicalTerm]; ok {
			g.Terms[i].Forbidden = append(g.Terms[i].Forbidden, f.ForbiddenTerm)
		}
	}
	return g, nil
}
