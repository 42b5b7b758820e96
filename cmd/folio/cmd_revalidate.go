package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/folio/internal/app"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
)

// revalidateCmd invalidates pages without going through the server
var revalidateCmd = &cobra.Command{
	Use:   "revalidate <path>...",
	Short: "Invalidate cached pages and notify the public frontend",
	Long: `Invalidate the given paths in the page cache and, when
FOLIO_PUBLIC_REVALIDATE_URL is set, on the public frontend.

Example:
  folio revalidate /dashboard/blog/all-blogs /`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := app.Revalidate(cmd.Context(), args)
		if err != nil {
			return err
		}
		printReport(cmd, report)
		if !report.OK() {
			return fmt.Errorf("%d target(s) failed", len(report.Errors))
		}
		return nil
	},
}

func printReport(cmd *cobra.Command, report revalidate.Report) {
	out := cmd.OutOrStdout()
	for _, p := range report.Paths {
		fmt.Fprintf(out, "revalidated %s\n", p)
	}
	names := make([]string, 0, len(report.Errors))
	for name := range report.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "⚠️  %s: %v\n", name, report.Errors[name])
	}
	fmt.Fprintf(out, "done in %s\n", report.Duration.Round(time.Millisecond))
}
