package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/searchagent/config"
	"github.com/mohammad-safakhou/searchagent/internal/history"
)

func historyCMD(cfgPath *string) *cobra.Command {
	var match string
	var limit int

	hist := &cobra.Command{
		Use:   "history",
		Short: "Show recent queries, or search remembered ones with --match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			a, err := openBase(ctx, cfg, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if match == "" {
				items, err := a.recent.Items(ctx)
				if err != nil {
					return err
				}
				if len(items) > 0 {
					printRecent(out, items)
					return nil
				}
			}

			// An empty match lists the newest remembered queries.
			hits, err := a.history.Search(match, limit)
			if err != nil {
				return err
			}
			printHits(out, hits)
			return nil
		},
	}
	hist.Flags().StringVar(&match, "match", "", "keyword search over remembered queries and summaries")
	hist.Flags().IntVar(&limit, "limit", 10, "maximum number of results")

	return hist
}

func printRecent(w io.Writer, items []string) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint("Recent queries"))
	for i, q := range items {
		fmt.Fprintf(w, "%2d. %s\n", i+1, q)
	}
}

func printHits(w io.Writer, hits []history.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "no remembered queries")
		return
	}
	for _, h := range hits {
		fmt.Fprintf(w, "#%d %s\n", h.ID, color.CyanString("%s", h.Query))
		fmt.Fprintf(w, "   %s\n", preview(h.Summary, debugPreviewChars))
	}
}
