package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyLimit int

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [tool]",
		Short: "Show recent benchmarks and mirror switches",
		Long: `Show recent benchmark runs and source changes recorded in the local
history database, newest first.`,
		Example: `  cmirror history
  cmirror history pip --limit 3`,
		Args: cobra.MaximumNArgs(1),
		RunE: historyRun,
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum entries per section")

	return cmd
}

func historyRun(cmd *cobra.Command, args []string) error {
	if globalStore == nil {
		return fmt.Errorf("history is not available (disabled in config or the database could not be opened)")
	}

	tool := ""
	if len(args) == 1 {
		a, err := lookupAdapter(args[0])
		if err != nil {
			return err
		}
		tool = a.Name()
	}

	runs, err := globalStore.ListBenchmarkRuns(tool, historyLimit)
	if err != nil {
		return fmt.Errorf("loading benchmark history: %w", err)
	}
	changes, err := globalStore.ListSourceChanges(tool, historyLimit)
	if err != nil {
		return fmt.Errorf("loading source changes: %w", err)
	}

	fmt.Println("Benchmarks")
	fmt.Println("==========")
	if len(runs) == 0 {
		fmt.Println("No benchmark runs recorded.")
	} else {
		fmt.Printf("%-16s %-9s %-8s %-10s %s\n", "When", "Session", "Tool", "Reachable", "Fastest")
		fmt.Println(strings.Repeat("-", 70))
		for _, r := range runs {
			fastest := "-"
			if r.FastestName != "" {
				fastest = r.FastestName
				if results, err := globalStore.ListBenchmarkResults(r.ID); err == nil && len(results) > 0 && results[0].Reachable {
					fastest = fmt.Sprintf("%s (%dms)", r.FastestName, results[0].LatencyMs)
				}
			}
			fmt.Printf("%-16s %-9s %-8s %-10s %s\n",
				humanize.Time(r.StartTime),
				r.Session,
				r.Tool,
				fmt.Sprintf("%d/%d", r.Reachable, r.Candidates),
				fastest,
			)
		}
	}

	fmt.Println("")
	fmt.Println("Source changes")
	fmt.Println("==============")
	if len(changes) == 0 {
		fmt.Println("No source changes recorded.")
		return nil
	}

	fmt.Printf("%-16s %-9s %-8s %-8s %-8s %s\n", "When", "Session", "Tool", "Action", "Status", "Mirror")
	fmt.Println(strings.Repeat("-", 70))
	for _, c := range changes {
		detail := c.MirrorName
		if c.URL != "" {
			detail = fmt.Sprintf("%s (%s)", c.MirrorName, c.URL)
		}
		if c.ErrorMessage != "" {
			detail = c.ErrorMessage
		}
		fmt.Printf("%-16s %-9s %-8s %-8s %-8s %s\n",
			humanize.Time(c.ChangedAt),
			c.Session,
			c.Tool,
			c.Action,
			c.Status,
			detail,
		)
	}

	return nil
}
