package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var errNotMapping = errors.New("top level is not a mapping")

// configRule extracts the interesting part of a recognized config file.
// extract returns nil for "no data".
type configRule struct {
	name    string
	matches func(base string) bool
	extract func(data map[string]any) map[string]any
}

// configRules is consulted in order; the first matching rule wins and
// genericConfig applies when none match.
var configRules = []configRule{
	{"package-manifest", basenameIn("package.json"), pickKeys("name", "version", "description")},
	{"compiler-config", basenameIn("tsconfig.json"), compilerOptions},
	{"settings", basenameIn("settings.json", "settings.local.json"), hooksOnly},
}

var genericConfig = configRule{
	name:    "generic",
	matches: func(string) bool { return true },
	extract: func(data map[string]any) map[string]any { return data },
}

var configDecoders = map[string]func([]byte) (any, error){
	".json": decodeJSON,
	".yaml": decodeYAML,
	".yml":  decodeYAML,
	".toml": decodeTOML,
}

// IsStructuredConfig reports whether ParseConfig can decode the named file.
func IsStructuredConfig(name string) bool {
	_, ok := configDecoders[strings.ToLower(filepath.Ext(name))]
	return ok
}

// ParseConfig decodes a JSON, YAML or TOML file and applies the extraction
// rule for its basename. It returns nil when there is nothing to report.
func ParseConfig(path string, diags *Diagnostics) map[string]any {
	decode, ok := configDecoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		diags.Add(path, "config", err)
		return nil
	}
	parsed, err := decode(raw)
	if err != nil {
		diags.Add(path, "config", err)
		return nil
	}
	data, ok := normalize(parsed).(map[string]any)
	if !ok {
		diags.Add(path, "config", errNotMapping)
		return nil
	}
	return ruleFor(filepath.Base(path)).extract(data)
}

func ruleFor(base string) configRule {
	for _, r := range configRules {
		if r.matches(base) {
			return r
		}
	}
	return genericConfig
}

func basenameIn(names ...string) func(string) bool {
	return func(base string) bool {
		for _, n := range names {
			if base == n {
				return true
			}
		}
		return false
	}
}

// pickKeys keeps the listed keys that are present. An empty result is still
// data, not "no data".
func pickKeys(keys ...string) func(map[string]any) map[string]any {
	return func(data map[string]any) map[string]any {
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			if v, ok := data[k]; ok {
				out[k] = v
			}
		}
		return out
	}
}

func compilerOptions(data map[string]any) map[string]any {
	opts, _ := data["compilerOptions"].(map[string]any)
	out := pickKeys("target", "module")(opts)
	if len(out) == 0 {
		return nil
	}
	return out
}

func hooksOnly(data map[string]any) map[string]any {
	hooks, ok := data["hooks"]
	if !ok {
		return nil
	}
	return map[string]any{"hooks": hooks}
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return v, nil
}

func decodeYAML(raw []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return v, nil
}

func decodeTOML(raw []byte) (any, error) {
	var v map[string]any
	if err := toml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding toml: %w", err)
	}
	return v, nil
}
