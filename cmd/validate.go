package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"docgen/internal/glossary"
)

var validateCmd = &cobra.Command{
	Use:   "validate-doc <document.md>",
	Short: "Check a generated document against the glossary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc := args[0]
		text, err := os.ReadFile(doc)
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}

		root, err := DiscoverRoot()
		if err != nil {
			return err
		}
		g, err := loadCheckGlossary(root)
		if err != nil {
			return err
		}
		if g == nil || len(g.Terms) == 0 {
			logger.Warn("no glossary terms available, nothing to check")
			return nil
		}

		violations := glossary.Check(string(text), g)
		out := cmd.OutOrStdout()
		for _, v := range violations {
			fmt.Fprintf(out, "%s:%s\n", doc, v)
		}
		if len(violations) > 0 {
			return fmt.Errorf("%d glossary %s in %s",
				len(violations), plural(len(violations), "violation", "violations"), doc)
		}
		fmt.Fprintf(out, "%s: ok (%d terms checked)\n", doc, len(g.Terms))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// loadCheckGlossary prefers the indexed glossary and falls back to the
// glossary file when the index has none.
func loadCheckGlossary(root string) (*glossary.Glossary, error) {
	if _, err := os.Stat(DiscoverDB(root)); err == nil {
		store, err := OpenDatabase(root)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		g, err := glossary.FromStore(store)
		if err != nil {
			return nil, err
		}
		if len(g.Terms) > 0 {
			return g, nil
		}
	}
	return LoadGlossary(root)
}
