package staleness

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStampContent(t *testing.T) {
	hashes := map[string]string{"src/b.ts": "bbb", "src/a.ts": "aaa"}
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			"no frontmatter",
			"# Title\nBody\n",
			"---\nsource_files:\n  src/a.ts: aaa\n  src/b.ts: bbb\n---\n# Title\nBody\n",
		},
		{
			"keeps other keys in order",
			"---\ntitle: Doc\nid: d1\n---\nBody\n",
			"---\ntitle: Doc\nid: d1\nsource_files:\n  src/a.ts: aaa\n  src/b.ts: bbb\n---\nBody\n",
		},
		{
			"replaces previous stamp",
			"---\nsource_files:\n  old.ts: zzz\ntitle: Doc\n---\nBody\n",
			"---\nsource_files:\n  src/a.ts: aaa\n  src/b.ts: bbb\ntitle: Doc\n---\nBody\n",
		},
		{
			"unclosed block is body",
			"---\ntitle: Doc\n",
			"---\nsource_files:\n  src/a.ts: aaa\n  src/b.ts: bbb\n---\n---\ntitle: Doc\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stampContent(tt.content, hashes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStampContent_ScalarFrontmatter(t *testing.T) {
	_, err := stampContent("---\njust text\n---\nBody\n", map[string]string{"a": "b"})
	assert.ErrorIs(t, err, errNotMapping)
}

func TestSplitFrontmatter(t *testing.T) {
	header, body := splitFrontmatter("---\na: 1\n---\nbody")
	assert.Equal(t, "a: 1\n", header)
	assert.Equal(t, "body", body)

	header, body = splitFrontmatter("---\na: 1\n---")
	assert.Equal(t, "a: 1\n", header)
	assert.Empty(t, body)

	header, body = splitFrontmatter("plain")
	assert.Empty(t, header)
	assert.Equal(t, "plain", body)
}

func TestStamp_ThenCheck(t *testing.T) {
	requireGit(t)
	root := t.TempDir()
	mkfile(t, root, "src/a.ts", "export const a = 1\n")
	doc := mkfile(t, root, "out/doc.md", "---\ntitle: Generated\n---\nBody\n")

	hashes, err := Stamp(root, doc, []string{"./src/a.ts"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"src/a.ts": blobHash("export const a = 1\n")}, hashes)

	content, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Contains(t, string(content), "title: Generated\n")
	assert.Contains(t, string(content), "---\nBody\n")

	report, err := Check(root, "out", nil)
	require.NoError(t, err)
	assert.False(t, report.Stale())
	assert.Equal(t, 1, report.Checked)

	mkfile(t, root, "src/a.ts", "export const a = 2\n")
	report, err = Check(root, "out", nil)
	require.NoError(t, err)
	assert.True(t, report.Stale())
}

func TestStamp_MissingSource(t *testing.T) {
	requireGit(t)
	root := t.TempDir()
	doc := mkfile(t, root, "doc.md", "Body\n")
	_, err := Stamp(root, doc, []string{"nope.ts"})
	assert.Error(t, err)

	content, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, "Body\n", string(content))
}
