package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dishar7753/cmirror/internal/mirror"
	"github.com/dishar7753/cmirror/internal/store"
	"github.com/spf13/cobra"
)

// currentMirrorName labels a configured URL that is not in the catalog
const currentMirrorName = "Current"

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <tool>",
		Short: "Benchmark the known mirrors of a tool",
		Long: `Probe every known mirror of a tool concurrently with a HEAD request and
rank them by latency. The currently configured source is included in the run,
and the fastest mirror is compared against it.`,
		Example: `  cmirror test pip
  cmirror test docker --timeout 5s`,
		Args: cobra.ExactArgs(1),
		RunE: testRun,
	}

	return cmd
}

func testRun(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := lookupAdapter(args[0])
	if err != nil {
		return err
	}

	current, err := a.CurrentSource(ctx)
	if err != nil {
		slog.Default().Warn("failed to read current source", "tool", a.Name(), "error", err)
		current = ""
	}

	candidates, currentURL := withCurrent(a.Candidates(), current)
	if len(candidates) == 0 {
		return fmt.Errorf("no mirrors known for %s", a.Name())
	}

	fmt.Printf("Testing %d mirrors for %s...\n", len(candidates), a.Name())
	results := runBenchmark(ctx, a.Name(), candidates)

	fmt.Println()
	printResults(results, currentURL)
	fmt.Println()

	rec, err := mirror.Recommend(results, currentURL)
	if err != nil {
		return err
	}
	fmt.Println(rec.Message())
	if rec.Kind != mirror.KindAlreadyFastest {
		fmt.Printf("Run 'cmirror use %s %s' to switch.\n", a.Name(), quoteName(rec.Best.Mirror.Name))
	}

	return nil
}

// withCurrent returns candidates plus the configured source when it is not a
// known mirror, and the URL the recommendation should compare against. With
// nothing configured the tool is on its Official default.
func withCurrent(candidates []mirror.Mirror, current string) ([]mirror.Mirror, string) {
	out := make([]mirror.Mirror, len(candidates), len(candidates)+1)
	copy(out, candidates)

	if current == "" {
		if official, ok := mirror.FindByName(candidates, "Official"); ok {
			return out, official.URL
		}
		return out, ""
	}

	if _, ok := mirror.FindByURL(candidates, current); !ok {
		out = append(out, mirror.Mirror{Name: currentMirrorName, URL: current})
	}
	return out, current
}

// runBenchmark probes candidates with a progress line on stderr and records
// the run in history
func runBenchmark(ctx context.Context, tool string, candidates []mirror.Mirror) []mirror.Result {
	if globalBenchmarker == nil {
		globalBenchmarker = mirror.NewBenchmarker(mirror.NewProber(0, ""), slog.Default())
	}

	start := time.Now()
	results := globalBenchmarker.Run(ctx, candidates, func(completed, total int, r mirror.Result) {
		fmt.Fprintf(os.Stderr, "\r  [%d/%d] %-24s", completed, total, r.Mirror.Name)
		if completed == total {
			fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", 40))
		}
	})
	recordBenchmark(tool, start, results)
	return results
}

func printResults(results []mirror.Result, currentURL string) {
	fmt.Printf("%-4s %-10s %-16s %s\n", "Rank", "Latency", "Mirror", "URL")
	fmt.Println(strings.Repeat("-", 70))
	for i, r := range results {
		latency := "Timeout"
		if r.Reachable() {
			latency = fmt.Sprintf("%dms", r.LatencyMs)
		}
		marker := ""
		if currentURL != "" && mirror.SameURL(r.Mirror.URL, currentURL) {
			marker = " *"
		}
		fmt.Printf("%-4d %-10s %-16s %s%s\n", i+1, latency, r.Mirror.Name, r.Mirror.URL, marker)
	}
}

func recordBenchmark(tool string, start time.Time, results []mirror.Result) {
	if globalStore == nil {
		return
	}

	run := &store.BenchmarkRun{
		Session:    sessionID,
		Tool:       tool,
		StartTime:  start,
		EndTime:    time.Now(),
		Candidates: len(results),
	}
	for i, r := range results {
		res := store.BenchmarkResult{Rank: i + 1, Name: r.Mirror.Name, URL: r.Mirror.URL}
		if r.Reachable() {
			res.LatencyMs = int64(r.LatencyMs)
			res.Reachable = true
			run.Reachable++
		}
		run.Results = append(run.Results, res)
	}
	if best, err := mirror.Fastest(results); err == nil {
		run.FastestName = best.Mirror.Name
		run.FastestURL = best.Mirror.URL
	}

	if err := globalStore.RecordBenchmark(run); err != nil {
		slog.Default().Warn("failed to record benchmark history", "tool", tool, "error", err)
	}
}

func quoteName(name string) string {
	if strings.ContainsAny(name, " \t") {
		return fmt.Sprintf("%q", name)
	}
	return name
}
