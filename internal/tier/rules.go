package tier

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidRules is returned when a tier rules document fails validation.
var ErrInvalidRules = errors.New("invalid tier rules")

//go:embed default-rules.yaml
var defaultRulesYAML []byte

var rulesValidate = validator.New()

// Document is the on-disk shape of a tier rules file.
type Document struct {
	Tier1 []string          `yaml:"tier_1" validate:"dive,required"`
	Tier2 []string          `yaml:"tier_2" validate:"dive,required"`
	Tier3 []string          `yaml:"tier_3"` // informational, never evaluated
	Tier4 ExclusionDocument `yaml:"tier_4"`
}

// ExclusionDocument lists what tier 4 excludes.
type ExclusionDocument struct {
	Directories []string `yaml:"directories" validate:"dive,required,excludesall=/"`
	Extensions  []string `yaml:"extensions" validate:"dive,required,startswith=."`
	Files       []string `yaml:"files" validate:"dive,required"`
}

// Rules is a compiled, read-only tier ruleset. Build one with Compile, Parse,
// Load or Default.
type Rules struct {
	doc           Document
	tier1         []Pattern
	tier2         []Pattern
	excludedDirs  map[string]bool
	excludedExts  map[string]bool
	excludedFiles map[string]bool
}

// Compile validates doc and compiles every pattern in it.
func Compile(doc Document) (*Rules, error) {
	if err := rulesValidate.Struct(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRules, err)
	}

	r := &Rules{
		doc:           doc.clone(),
		excludedDirs:  toSet(doc.Tier4.Directories),
		excludedExts:  toSet(doc.Tier4.Extensions),
		excludedFiles: toSet(doc.Tier4.Files),
	}
	var err error
	if r.tier1, err = compileAll(doc.Tier1); err != nil {
		return nil, fmt.Errorf("tier_1: %w", err)
	}
	if r.tier2, err = compileAll(doc.Tier2); err != nil {
		return nil, fmt.Errorf("tier_2: %w", err)
	}
	return r, nil
}

// Parse decodes a YAML rules document and compiles it. Unknown keys are an error.
func Parse(data []byte) (*Rules, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding yaml: %v", ErrInvalidRules, err)
	}
	return Compile(doc)
}

// Load reads and compiles the rules file at path.
func Load(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier rules: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Default returns the built-in ruleset.
func Default() *Rules {
	r, err := Parse(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in tier rules: %v", err))
	}
	return r
}

// Document returns a copy of the document the rules were compiled from.
func (r *Rules) Document() Document { return r.doc.clone() }

// ExcludedDir reports whether a directory with this name is pruned.
func (r *Rules) ExcludedDir(name string) bool { return r.excludedDirs[name] }

func (d Document) clone() Document {
	return Document{
		Tier1: append([]string(nil), d.Tier1...),
		Tier2: append([]string(nil), d.Tier2...),
		Tier3: append([]string(nil), d.Tier3...),
		Tier4: ExclusionDocument{
			Directories: append([]string(nil), d.Tier4.Directories...),
			Extensions:  append([]string(nil), d.Tier4.Extensions...),
			Files:       append([]string(nil), d.Tier4.Files...),
		},
	}
}

func compileAll(raw []string) ([]Pattern, error) {
	out := make([]Pattern, 0, len(raw))
	for _, s := range raw {
		p, err := CompilePattern(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
