package tier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Excluded(t *testing.T) {
	r := Default()
	for _, p := range []string{
		"node_modules/pkg/index.js",
		"packages/app/node_modules/pkg/README.md",
		".git/config",
		"dist/bundle.js",
		"cdk.out/manifest.json",
		".build/output.js",
		"package-lock.json",
		"frontend/yarn.lock",
		"logo.png",
		"fonts/inter.woff",
		"temp.tmp",
		"docs/_docgen/index.db",
	} {
		assert.Equal(t, TierExcluded, Classify(p, r), p)
	}
}

func TestClassify_Tier1(t *testing.T) {
	r := Default()
	for _, p := range []string{
		".claude/skills/review/SKILL.md",
		".claude/hooks/bash-guard.sh",
		".claude/commands/deploy.md",
		".claude/agents/reviewer.md",
		"docs/adr/adr-001.md",
		"docs/epics/epic-1.md",
		"docs/stories/story-1-1.md",
		"README.md",
		"some/nested/README.md",
		"some/SKILL.md",
		"CLAUDE.md",
		"some/nested/CLAUDE.md",
	} {
		assert.Equal(t, Tier1, Classify(p, r), p)
	}
}

func TestClassify_Tier2(t *testing.T) {
	r := Default()
	for _, p := range []string{
		"package.json",
		"tsconfig.json",
		"jest.config.ts",
		".eslintrc.js",
		".claude/settings.json",
		"shared/types/index.d.ts",
		"src/index.ts",
		"lib/index.js",
		".github/workflows/ci.yml",
		".env.example",
		"docs/_docgen/tier-rules.yaml",
	} {
		assert.Equal(t, Tier2, Classify(p, r), p)
	}
}

func TestClassify_Tier3Default(t *testing.T) {
	r := Default()
	for _, p := range []string{
		"src/handler.ts",
		"src/utils.js",
		"frontend/App.tsx",
		"frontend/Button.jsx",
		"src/handler.test.ts",
		"src/handler.spec.ts",
		"scripts/migrate.py",
	} {
		assert.Equal(t, Tier3, Classify(p, r), p)
	}
}

func TestClassify_Tier1BeatsTier2(t *testing.T) {
	r, err := Compile(Document{
		Tier1: []string{"**/*.md"},
		Tier2: []string{"docs/**"},
	})
	require.NoError(t, err)
	assert.Equal(t, Tier1, Classify("docs/guide.md", r))
	assert.Equal(t, Tier2, Classify("docs/guide.txt", r))
}

func TestClassify_ExclusionBeatsTier1(t *testing.T) {
	r, err := Compile(Document{
		Tier1: []string{"**/README.md"},
		Tier4: ExclusionDocument{Directories: []string{"vendor"}},
	})
	require.NoError(t, err)
	assert.Equal(t, TierExcluded, Classify("vendor/lib/README.md", r))
}

func TestClassify_ExcludedFileByRelativePath(t *testing.T) {
	r, err := Compile(Document{
		Tier4: ExclusionDocument{Files: []string{"config/secrets.json"}},
	})
	require.NoError(t, err)
	assert.Equal(t, TierExcluded, Classify("config/secrets.json", r))
	assert.Equal(t, Tier3, Classify("other/secrets.json", r))
}

func TestClassify_ConfigDriven(t *testing.T) {
	r := Default()
	require.Equal(t, Tier3, Classify("src/handler.ts", r))

	doc := r.Document()
	doc.Tier1 = append(doc.Tier1, "src/handler.ts")
	modified, err := Compile(doc)
	require.NoError(t, err)
	assert.Equal(t, Tier1, Classify("src/handler.ts", modified))

	// the original ruleset is untouched
	assert.Equal(t, Tier3, Classify("src/handler.ts", r))

	doc = r.Document()
	var dirs []string
	for _, d := range doc.Tier4.Directories {
		if d != "node_modules" {
			dirs = append(dirs, d)
		}
	}
	doc.Tier4.Directories = dirs
	modified, err = Compile(doc)
	require.NoError(t, err)
	assert.NotEqual(t, TierExcluded, Classify("node_modules/pkg/index.js", modified))
}

func TestExtAndStem(t *testing.T) {
	tests := []struct {
		name, ext, stem string
	}{
		{"handler.ts", ".ts", "handler"},
		{"index.d.ts", ".ts", "index.d"},
		{".env", "", ".env"},
		{".env.example", ".example", ".env"},
		{"Makefile", "", "Makefile"},
		{"my_helper_func.ts", ".ts", "my_helper_func"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ext, Ext(tt.name), tt.name)
		assert.Equal(t, tt.stem, Stem(tt.name), tt.name)
	}
}

func TestDeriveType(t *testing.T) {
	tests := []struct {
		path string
		tier Tier
		want NodeType
	}{
		{"docs/stories/story-1-1.md", Tier1, TypeStory},
		{"docs/epics/epic-1.md", Tier1, TypeEpic},
		{".claude/hooks/bash-guard.sh", Tier1, TypeHook},
		{".claude/skills/review/SKILL.md", Tier1, TypeSkill},
		{".claude/skills/SKILL.md", Tier1, TypeSkill},
		{".claude/agents/reviewer.md", Tier1, TypeAgent},
		{"docs/adr/adr-001.md", Tier1, TypeADR},
		{"package.json", Tier2, TypeConfig},
		{"docs/_docgen/tier-rules.yaml", Tier2, TypeConfig},
		{".github/workflows/ci.yml", Tier2, TypeConfig},
		{"fixtures/data.json", Tier3, TypeImplementation},
		{"shared/types/index.d.ts", Tier2, TypeDef},
		{"src/index.ts", Tier2, TypeModule},
		{"lib/index.js", Tier2, TypeModule},
		{"src/handler.ts", Tier3, TypeImplementation},
		{"src/handler.test.ts", Tier3, TypeImplementation},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveType(tt.path, tt.tier), tt.path)
	}
}
