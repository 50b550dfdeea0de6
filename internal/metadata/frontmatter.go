package metadata

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a frontmatter block.
const Delimiter = "---"

var errNotUTF8 = errors.New("content is not valid UTF-8")

// ParseFrontmatter returns the YAML mapping between a leading delimiter line
// and the next delimiter line, or nil when the file has none. The delimiter
// must be the first line. Scalars, empty blocks and unclosed blocks are not
// frontmatter.
func ParseFrontmatter(path string, diags *Diagnostics) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		diags.Add(path, "frontmatter", err)
		return nil
	}
	if !utf8.Valid(data) {
		diags.Add(path, "frontmatter", errNotUTF8)
		return nil
	}
	fm, err := FrontmatterFromText(string(data))
	if err != nil {
		diags.Add(path, "frontmatter", err)
		return nil
	}
	return fm
}

// FrontmatterFromText is ParseFrontmatter over in-memory content. A non-nil
// error means the block was present but malformed.
func FrontmatterFromText(content string) (map[string]any, error) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != Delimiter {
		return nil, nil
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == Delimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, nil
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &parsed); err != nil {
		return nil, fmt.Errorf("malformed yaml: %w", err)
	}
	m, ok := normalize(parsed).(map[string]any)
	if !ok {
		return nil, nil
	}
	return m, nil
}

// normalize rewrites map[any]any (non-string YAML keys) into map[string]any
// so the result always serializes to JSON.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
