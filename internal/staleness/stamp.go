package staleness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"docgen/internal/metadata"
)

var errNotMapping = errors.New("frontmatter is not a mapping")

// Stamp records the current blob hash of every file in files (relative to
// root) under the source_files key of doc's frontmatter. Other frontmatter
// keys and the body are kept as written; a document without frontmatter
// gets one. It returns the recorded hashes.
func Stamp(root, doc string, files []string) (map[string]string, error) {
	rel := make([]string, len(files))
	for i, f := range files {
		rel[i] = filepath.ToSlash(filepath.Clean(f))
	}
	hashes, err := HashFiles(root, rel)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(doc)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", doc, err)
	}
	stamped, err := stampContent(string(content), hashes)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", doc, err)
	}

	info, err := os.Stat(doc)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(doc, []byte(stamped), info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("writing %s: %w", doc, err)
	}
	return hashes, nil
}

// stampContent sets the source_files mapping in content's frontmatter.
func stampContent(content string, hashes map[string]string) (string, error) {
	header, body := splitFrontmatter(content)

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(header), &doc); err != nil {
		return "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return "", errNotMapping
	}

	var value yaml.Node
	if err := value.Encode(hashes); err != nil {
		return "", err
	}
	setKey(m, SourcesKey, &value)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return metadata.Delimiter + "\n" + buf.String() + metadata.Delimiter + "\n" + body, nil
}

// setKey replaces the value of key in a mapping node, or appends the pair.
func setKey(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, value)
}

// splitFrontmatter separates a leading frontmatter block from the body. A
// document without a closed block has an empty header and is all body.
func splitFrontmatter(content string) (header, body string) {
	first, rest, ok := strings.Cut(content, "\n")
	if !ok || strings.TrimSpace(first) != metadata.Delimiter {
		return "", content
	}
	offset := 0
	for offset <= len(rest) {
		line, after, found := strings.Cut(rest[offset:], "\n")
		if strings.TrimSpace(line) == metadata.Delimiter {
			if !found {
				return rest[:offset], ""
			}
			return rest[:offset], after
		}
		if !found {
			break
		}
		offset += len(line) + 1
	}
	return "", content
}
