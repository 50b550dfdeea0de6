package tier

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrInvalidPattern is returned when a tier rule pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

type patternKind int

const (
	kindAnywhere patternKind = iota // **/suffix
	kindUnder                       // prefix/**/suffix
	kindSimple                      // full path or basename
)

// Pattern is a compiled tier rule glob. The form is decided once at compile
// time; Match never re-parses the pattern.
//
//	**/suffix         suffix matches any trailing run of path components
//	prefix/**/suffix  path starts with prefix, remainder has a trailing run matching suffix
//	anything else     matches the full path or the basename
//
// Within a component, *, ? and character classes behave as in path.Match and
// never cross a slash. Braces and backslashes are literal. A prefix is
// matched component by component, and prefix/** also matches the prefix
// path itself.
type Pattern struct {
	raw    string
	kind   patternKind
	prefix []string
	suffix string
}

// CompilePattern parses raw into a Pattern. Patterns with more than one "**"
// are rejected.
func CompilePattern(raw string) (Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return Pattern{}, fmt.Errorf("%w: empty pattern", ErrInvalidPattern)
	}
	if n := strings.Count(raw, "**"); n > 1 {
		return Pattern{}, fmt.Errorf("%w: %q has %d '**' segments, at most one is supported", ErrInvalidPattern, raw, n)
	}

	p := Pattern{raw: raw}
	switch {
	case strings.HasPrefix(raw, "**/"):
		p.kind = kindAnywhere
		p.suffix = raw[3:]
		if p.suffix == "" {
			return Pattern{}, fmt.Errorf("%w: %q has nothing after '**/'", ErrInvalidPattern, raw)
		}
	case strings.Contains(raw, "**"):
		p.kind = kindUnder
		i := strings.Index(raw, "**")
		if prefix := strings.Trim(raw[:i], "/"); prefix != "" {
			p.prefix = strings.Split(prefix, "/")
		}
		p.suffix = strings.TrimLeft(raw[i+2:], "/")
	default:
		p.kind = kindSimple
		p.suffix = raw
	}

	p.suffix = literalBraces(p.suffix)
	for i := range p.prefix {
		p.prefix[i] = literalBraces(p.prefix[i])
	}
	for _, part := range append([]string{p.suffix}, p.prefix...) {
		if part != "" && !doublestar.ValidatePattern(part) {
			return Pattern{}, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
		}
	}
	return p, nil
}

// MustCompilePattern is like CompilePattern but panics on error. Intended for
// package-level pattern tables.
func MustCompilePattern(raw string) Pattern {
	p, err := CompilePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as written.
func (p Pattern) String() string { return p.raw }

// Match reports whether the forward-slash relative path rel matches p.
func (p Pattern) Match(rel string) bool {
	switch p.kind {
	case kindAnywhere:
		return matchTail(strings.Split(rel, "/"), p.suffix)
	case kindUnder:
		segs := strings.Split(rel, "/")
		if len(segs) < len(p.prefix) {
			return false
		}
		for i, part := range p.prefix {
			if !segmentMatch(part, segs[i]) {
				return false
			}
		}
		if p.suffix == "" {
			return true
		}
		if len(segs) == len(p.prefix) {
			return false
		}
		return matchTail(segs[len(p.prefix):], p.suffix)
	default:
		return segmentMatch(p.suffix, rel) || segmentMatch(p.suffix, path.Base(rel))
	}
}

// Match compiles pattern and matches it against rel.
func Match(rel, pattern string) (bool, error) {
	p, err := CompilePattern(pattern)
	if err != nil {
		return false, err
	}
	return p.Match(rel), nil
}

// matchTail tries pattern against segs[i:] for every i, longest first.
func matchTail(segs []string, pattern string) bool {
	for i := range segs {
		if segmentMatch(pattern, strings.Join(segs[i:], "/")) {
			return true
		}
	}
	return false
}

// braceEscaper turns off doublestar's {a,b} alternation and backslash
// escapes, so those characters match themselves.
var braceEscaper = strings.NewReplacer(`\`, `\\`, "{", `\{`, "}", `\}`)

func literalBraces(pattern string) string {
	return braceEscaper.Replace(pattern)
}

func segmentMatch(pattern, name string) bool {
	ok, _ := doublestar.Match(pattern, name)
	return ok
}
