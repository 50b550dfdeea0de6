package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"docgen/internal/indexer"
	"docgen/internal/tier"
)

var (
	rebuildIncremental bool
	rebuildWatch       bool
	rebuildDebounce    time.Duration
	rebuildMetricsFile string
	rebuildJSON        bool
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild-doc-index",
	Short: "Walk the repository and rebuild the documentation index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := DiscoverRoot()
		if err != nil {
			return err
		}
		rules, err := LoadRules(root)
		if err != nil {
			return err
		}
		gloss, err := LoadGlossary(root)
		if err != nil {
			return err
		}

		store, err := OpenDatabase(root)
		if err != nil {
			return err
		}
		defer store.Close()

		var reg *prometheus.Registry
		var metrics *indexer.Metrics
		if rebuildMetricsFile != "" {
			reg = prometheus.NewRegistry()
			metrics = indexer.NewMetrics(reg)
		}

		ix := indexer.New(store, indexer.Options{
			Root:     root,
			Rules:    rules,
			Glossary: gloss,
			Logger:   logger,
			Metrics:  metrics,
		})

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report := func(stats *indexer.Stats) error {
			if reg != nil {
				if err := prometheus.WriteToTextfile(rebuildMetricsFile, reg); err != nil {
					return fmt.Errorf("writing metrics: %w", err)
				}
			}
			return printStats(cmd.OutOrStdout(), stats, DiscoverDB(root))
		}

		run := ix.Rebuild
		if rebuildIncremental {
			run = ix.Update
		}
		stats, err := run(ctx)
		if err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
		if err := report(stats); err != nil {
			return err
		}

		if !rebuildWatch {
			return nil
		}
		return ix.Watch(ctx, rebuildDebounce, func(stats *indexer.Stats, err error) {
			if err != nil {
				return
			}
			if err := report(stats); err != nil {
				logger.Error("reporting run", "error", err)
			}
		})
	},
}

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildIncremental, "incremental", false, "Only re-index files whose modification time changed")
	rebuildCmd.Flags().BoolVar(&rebuildWatch, "watch", false, "Keep running and re-index incrementally on file changes")
	rebuildCmd.Flags().DurationVar(&rebuildDebounce, "debounce", indexer.DefaultDebounce, "Quiet period before a watch-triggered update")
	rebuildCmd.Flags().StringVar(&rebuildMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after each run")
	rebuildCmd.Flags().BoolVar(&rebuildJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(rebuildCmd)
}

type statsJSON struct {
	Incremental bool           `json:"incremental"`
	Indexed     int            `json:"indexed"`
	Unchanged   int            `json:"unchanged"`
	Removed     int            `json:"removed"`
	ByTier      map[string]int `json:"by_tier"`
	ByType      map[string]int `json:"by_type"`
	Tokens      int            `json:"tokens"`
	Edges       int            `json:"edges"`
	Glossary    int            `json:"glossary_terms"`
	Diagnostics []string       `json:"diagnostics"`
	DurationMs  int64          `json:"duration_ms"`
}

func printStats(w io.Writer, s *indexer.Stats, dbFile string) error {
	if rebuildJSON {
		out := statsJSON{
			Incremental: s.Incremental,
			Indexed:     s.Indexed,
			Unchanged:   s.Unchanged,
			Removed:     s.Removed,
			ByTier:      make(map[string]int),
			ByType:      make(map[string]int),
			Tokens:      s.Tokens,
			Edges:       s.Edges,
			Glossary:    s.Glossary,
			Diagnostics: []string{},
			DurationMs:  s.Duration.Milliseconds(),
		}
		for t, n := range s.ByTier {
			out.ByTier[fmt.Sprint(int(t))] = n
		}
		for nt, n := range s.ByType {
			out.ByType[string(nt)] = n
		}
		for _, d := range s.Diagnostics {
			out.Diagnostics = append(out.Diagnostics, d.Error())
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	mode := "Full rebuild"
	if s.Incremental {
		mode = "Incremental update"
	}
	fmt.Fprintf(w, "\n  %s: %s files indexed", mode, humanize.Comma(int64(s.Indexed)))
	if s.Incremental {
		fmt.Fprintf(w, ", %s unchanged, %s removed", humanize.Comma(int64(s.Unchanged)), humanize.Comma(int64(s.Removed)))
	}
	fmt.Fprintf(w, " in %s\n", s.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "  tiers: 1=%d 2=%d 3=%d\n", s.ByTier[tier.Tier1], s.ByTier[tier.Tier2], s.ByTier[tier.Tier3])
	if len(s.ByType) > 0 {
		types := make([]string, 0, len(s.ByType))
		for nt := range s.ByType {
			types = append(types, string(nt))
		}
		slices.Sort(types)
		fmt.Fprint(w, "  types:")
		for _, nt := range types {
			fmt.Fprintf(w, " %s=%d", nt, s.ByType[tier.NodeType(nt)])
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  ~%s tokens, %s edges, %s glossary terms\n",
		humanize.Comma(int64(s.Tokens)), humanize.Comma(int64(s.Edges)), humanize.Comma(int64(s.Glossary)))
	if info, err := os.Stat(dbFile); err == nil {
		fmt.Fprintf(w, "  index: %s (%s)\n", dbFile, humanize.Bytes(uint64(info.Size())))
	}
	if n := len(s.Diagnostics); n > 0 {
		fmt.Fprintf(w, "  %d extraction %s logged\n", n, plural(n, "warning", "warnings"))
	}
	fmt.Fprintln(w)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

