package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"docgen/internal/staleness"
)

var (
	stalenessDir     string
	stalenessNoIndex bool
	stalenessJSON    bool
)

var stalenessCmd = &cobra.Command{
	Use:   "check-staleness",
	Short: "Report generated documents whose source files changed since generation",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := DiscoverRoot()
		if err != nil {
			return err
		}

		var idx staleness.NodeLister
		if !stalenessNoIndex {
			if _, err := os.Stat(DiscoverDB(root)); err == nil {
				store, err := OpenDatabase(root)
				if err != nil {
					return err
				}
				defer store.Close()
				idx = store
			} else {
				logger.Debug("no index found, skipping drift check")
			}
		}

		report, err := staleness.Check(root, stalenessDir, idx)
		if err != nil {
			return err
		}

		if stalenessJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			printStaleness(cmd.OutOrStdout(), report)
		}

		if report.Stale() {
			return fmt.Errorf("%d stale %s, %d drifted index %s",
				len(report.Docs), plural(len(report.Docs), "document", "documents"),
				len(report.Drift), plural(len(report.Drift), "entry", "entries"))
		}
		return nil
	},
}

func init() {
	stalenessCmd.Flags().StringVar(&stalenessDir, "dir", defaultOutputDir, "Directory of generated documents, relative to the root")
	stalenessCmd.Flags().BoolVar(&stalenessNoIndex, "no-index", false, "Skip comparing the index against the working tree")
	stalenessCmd.Flags().BoolVar(&stalenessJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(stalenessCmd)
}

func printStaleness(w io.Writer, r *staleness.Report) {
	fmt.Fprintf(w, "\n  Checked %d generated %s\n", r.Checked, plural(r.Checked, "document", "documents"))
	for _, doc := range r.Docs {
		fmt.Fprintf(w, "\n  STALE %s\n", doc.Doc)
		for _, s := range doc.Sources {
			fmt.Fprintf(w, "    %-8s %s\n", s.Reason, s.Path)
		}
	}
	if len(r.Drift) > 0 {
		fmt.Fprintf(w, "\n  Index drift (run rebuild-doc-index --incremental):\n")
		for _, d := range r.Drift {
			if d.Current == "" {
				fmt.Fprintf(w, "    removed  %s\n", d.ID)
			} else {
				fmt.Fprintf(w, "    modified %s\n", d.ID)
			}
		}
	}
	if len(r.Untracked) > 0 {
		fmt.Fprintf(w, "\n  %d %s without %s (not checked)\n",
			len(r.Untracked), plural(len(r.Untracked), "document", "documents"), staleness.SourcesKey)
	}
	if !r.Stale() {
		fmt.Fprintf(w, "\n  Everything is up to date.\n")
	}
	fmt.Fprintln(w)
}
