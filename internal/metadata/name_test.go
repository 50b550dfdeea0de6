package metadata

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractName(t *testing.T) {
	tests := []struct {
		name string
		path string
		fm   map[string]any
		want string
	}{
		{"title wins", "doc.md", map[string]any{"title": "My Title", "name": "n", "id": "i"}, "My Title"},
		{"name over id", "doc.md", map[string]any{"name": "My Name", "id": "i"}, "My Name"},
		{"id last", "doc.md", map[string]any{"id": "story-1"}, "story-1"},
		{"null title skipped", "doc.md", map[string]any{"title": nil, "id": "x"}, "x"},
		{"numeric id", "doc.md", map[string]any{"id": 42}, "42"},
		{"no frontmatter hyphens", "docs/my-cool-doc.md", nil, "my cool doc"},
		{"no frontmatter underscores", "my_helper_func.ts", nil, "my helper func"},
		{"mixed separators", "src/some-mixed_name.test.ts", nil, "some mixed name.test"},
		{"empty frontmatter", "readme-file.md", map[string]any{}, "readme file"},
		{"only irrelevant keys", "a-b.md", map[string]any{"tags": []any{"x"}}, "a b"},
		{"dotfile", ".env.example", nil, ".env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractName(tt.path, tt.fm))
		})
	}
}

func TestShouldUpgrade(t *testing.T) {
	assert.True(t, ShouldUpgrade(map[string]any{"id": "x"}))
	assert.True(t, ShouldUpgrade(map[string]any{"title": "x"}))
	assert.True(t, ShouldUpgrade(map[string]any{"role": "config"}))
	assert.True(t, ShouldUpgrade(map[string]any{"role": nil}))
	assert.True(t, ShouldUpgrade(map[string]any{"id": 1, "title": "t", "tags": []any{}}))

	assert.False(t, ShouldUpgrade(map[string]any{"tags": []any{"a", "b"}}))
	assert.False(t, ShouldUpgrade(map[string]any{}))
	assert.False(t, ShouldUpgrade(nil))
}

var isoUTC = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{6})?\+00:00$`)

func TestLastModified(t *testing.T) {
	path := writeFile(t, "f.txt", "x")
	mtime := time.Date(2024, 3, 15, 10, 30, 0, 0, time.FixedZone("EST", -5*3600))
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	got := LastModified(path, nil)
	assert.Equal(t, "2024-03-15T15:30:00+00:00", got)
	assert.Regexp(t, isoUTC, got)

	parsed, err := time.Parse(time.RFC3339, got)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(mtime))
}

func TestLastModified_Fraction(t *testing.T) {
	tests := []struct {
		name  string
		nanos int
		want  string
	}{
		{"truncated to micros", 123456789, "2024-01-02T03:04:05.123456+00:00"},
		{"trailing zeros kept", 120000000, "2024-01-02T03:04:05.120000+00:00"},
		{"single micro", 1000, "2024-01-02T03:04:05.000001+00:00"},
		{"sub-micro dropped", 999, "2024-01-02T03:04:05+00:00"},
		{"whole second", 0, "2024-01-02T03:04:05+00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := time.Date(2024, 1, 2, 3, 4, 5, tt.nanos, time.UTC)
			assert.Equal(t, tt.want, FormatTimestamp(ts))
		})
	}
}

func TestLastModified_Missing(t *testing.T) {
	var diags Diagnostics
	assert.Equal(t, "", LastModified(filepath.Join(t.TempDir(), "gone"), &diags))
	assert.Equal(t, 1, diags.Len())
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"ten words", "one two three four five six seven eight nine ten", 13},
		{"single word", "hello", 1},
		{"empty", "", 0},
		{"whitespace only", "   \n\n\t  ", 0},
		{"multiline", strings.Repeat("word ", 20), 26},
		{"round up", "alpha beta gamma", 4},
		{"half to even down", "a b c d e", 6},
		{"half to even up", strings.Repeat("w ", 15), 20},
		{"hundred", strings.Repeat("word\n", 100), 130},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateTokens(writeFile(t, "f.txt", tt.content)))
		})
	}
}

func TestEstimateTokens_Unreadable(t *testing.T) {
	assert.Zero(t, EstimateTokens("/no/such/file.txt"))

	path := filepath.Join(t.TempDir(), "binary.bin")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("\x00\x01\x80\xff\xfe\x00\x00", 100)), 0o644))
	assert.Zero(t, EstimateTokens(path))
}

func TestScaleWords(t *testing.T) {
	// x.5 cases: 5 -> 6.5, 15 -> 19.5, 25 -> 32.5, 35 -> 45.5
	assert.Equal(t, 6, scaleWords(5))
	assert.Equal(t, 20, scaleWords(15))
	assert.Equal(t, 32, scaleWords(25))
	assert.Equal(t, 46, scaleWords(35))
	assert.Equal(t, 0, scaleWords(0))
}
