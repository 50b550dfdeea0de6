package glossary

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"docgen/internal/metadata"
)

// Violation is one forbidden phrase found in a document.
type Violation struct {
	Line      int    // 1-based
	Column    int    // 1-based, in runes
	Found     string // text as written
	Forbidden string
	Canonical string
}

func (v Violation) String() string {
	return fmt.Sprintf("%d:%d: %q is forbidden, use %q", v.Line, v.Column, v.Found, v.Canonical)
}

type forbiddenPattern struct {
	re        *regexp.Regexp
	forbidden string
	canonical string
}

// Check scans text for forbidden terms, case-insensitively and on whole
// words only. A leading frontmatter block and fenced code blocks are skipped.
// Results are ordered by position.
func Check(text string, g *Glossary) []Violation {
	var patterns []forbiddenPattern
	for _, t := range g.Terms {
		for _, f := range t.Forbidden {
			patterns = append(patterns, forbiddenPattern{
				re:        regexp.MustCompile(`(?i)` + regexp.QuoteMeta(f)),
				forbidden: f,
				canonical: t.Term,
			})
		}
	}
	if len(patterns) == 0 {
		return nil
	}

	var out []Violation
	for i, line := range proseLines(text) {
		if line == "" {
			continue
		}
		for _, p := range patterns {
			for _, loc := range p.re.FindAllStringIndex(line, -1) {
				if !wordBoundary(line, loc[0], loc[1]) {
					continue
				}
				out = append(out, Violation{
					Line:      i + 1,
					Column:    utf8.RuneCountInString(line[:loc[0]]) + 1,
					Found:     line[loc[0]:loc[1]],
					Forbidden: p.forbidden,
					Canonical: p.canonical,
				})
			}
		}
	}
	slices.SortFunc(out, func(a, b Violation) int {
		if a.Line != b.Line {
			return a.Line - b.Line
		}
		return a.Column - b.Column
	})
	return out
}

// proseLines splits text into lines, blanking the ones that are not prose so
// line numbers still match the source.
func proseLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	start := 0
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == metadata.Delimiter {
		for i := 1; i < len(lines); i++ {
			if strings.TrimSpace(lines[i]) == metadata.Delimiter {
				start = i + 1
				break
			}
		}
	}
	for i := range start {
		lines[i] = ""
	}

	inFence := false
	for i := start; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			lines[i] = ""
			continue
		}
		if inFence {
			lines[i] = ""
		}
	}
	return lines
}

func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
