package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"docgen/internal/staleness"
)

var stampCmd = &cobra.Command{
	Use:   "stamp-doc <document.md> <source>...",
	Short: "Record the source files a generated document was written from",
	Long: `Writes the git blob hash of each source (relative to the repository root)
into the document's source_files frontmatter, so check-staleness can tell
when the document needs regenerating.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := DiscoverRoot()
		if err != nil {
			return err
		}
		doc, sources := args[0], args[1:]
		hashes, err := staleness.Stamp(root, doc, sources)
		if err != nil {
			return err
		}

		paths := make([]string, 0, len(hashes))
		for p := range hashes {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		for _, p := range paths {
			logger.Debug("stamped", "doc", doc, "source", p, "hash", hashes[p])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d %s recorded\n",
			doc, len(hashes), plural(len(hashes), "source", "sources"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stampCmd)
}
