package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"docgen/internal/db"
	"docgen/internal/glossary"
	"docgen/internal/staleness"
	"docgen/internal/tier"
)

// Default locations, relative to the repository root.
const (
	defaultDBPath       = "docs/_docgen/index.db"
	defaultRulesPath    = "docs/_docgen/tier-rules.yaml"
	defaultGlossaryPath = "docs/_docgen/glossary.yaml"
	defaultOutputDir    = "docs/_docgen/output"
)

var (
	dbPath       string
	rootDir      string
	rulesPath    string
	glossaryPath string
	verbose      bool

	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:          "docgen",
	Short:        "Repository documentation index: build, check staleness, validate prose",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = newLogger(cmd.ErrOrStderr(), verbose)
		slog.SetDefault(logger)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the index database (default <root>/"+defaultDBPath+")")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Repository root (default: git top-level, else current directory)")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "Tier rules YAML (default <root>/"+defaultRulesPath+" if present, else built-in)")
	rootCmd.PersistentFlags().StringVar(&glossaryPath, "glossary", "", "Glossary YAML (default <root>/"+defaultGlossaryPath+" if present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

// newLogger logs text to a terminal and JSON everywhere else.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// DiscoverRoot finds the repository root using priority: flag > git top-level > cwd
func DiscoverRoot() (string, error) {
	if rootDir != "" {
		abs, err := filepath.Abs(rootDir)
		if err != nil {
			return "", err
		}
		if info, err := os.Stat(abs); err != nil || !info.IsDir() {
			return "", fmt.Errorf("repository root not found at --root path: %s", rootDir)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if top, err := staleness.RepoRoot(cwd); err == nil {
		return top, nil
	}
	return cwd, nil
}

// DiscoverDB finds the database path using priority: env > flag > default under root
func DiscoverDB(root string) string {
	if envPath := os.Getenv("DOCGEN_DB"); envPath != "" {
		return envPath
	}
	if dbPath != "" {
		return dbPath
	}
	return filepath.Join(root, filepath.FromSlash(defaultDBPath))
}

// OpenDatabase opens (creating if needed) the index for root
func OpenDatabase(root string) (*db.DB, error) {
	path := DiscoverDB(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	logger.Debug("opening index", "path", path)
	return db.OpenDB(path)
}

// LoadRules reads --rules, then the repository's rules file, then the built-in defaults.
func LoadRules(root string) (*tier.Rules, error) {
	if rulesPath != "" {
		return tier.Load(rulesPath)
	}
	path := filepath.Join(root, filepath.FromSlash(defaultRulesPath))
	r, err := tier.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("using built-in tier rules")
		return tier.Default(), nil
	}
	return r, err
}

// LoadGlossary reads --glossary, or the repository's glossary file. A missing
// default file means no glossary and returns nil.
func LoadGlossary(root string) (*glossary.Glossary, error) {
	if glossaryPath != "" {
		return glossary.Load(glossaryPath)
	}
	g, err := glossary.Load(filepath.Join(root, filepath.FromSlash(defaultGlossaryPath)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return g, err
}
