package mirror

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// LatencyProber probes a single mirror. Implementations must enforce their own
// timeout and must never block past it.
type LatencyProber interface {
	Probe(ctx context.Context, m Mirror) Result
}

// ProgressFunc is called once per finished probe. completed counts finished
// probes so far, total is the candidate count.
type ProgressFunc func(completed, total int, r Result)

// Benchmarker fans probes out across all candidates of a tool and ranks the results.
type Benchmarker struct {
	prober LatencyProber
	logger *slog.Logger
}

// NewBenchmarker creates a Benchmarker that shares prober across all probes.
func NewBenchmarker(prober LatencyProber, logger *slog.Logger) *Benchmarker {
	return &Benchmarker{
		prober: prober,
		logger: logger,
	}
}

// indexedResult pairs a Result with its candidate index so the merge is deterministic.
type indexedResult struct {
	result Result
	index  int
}

// Run probes every candidate concurrently, waits for all of them, and returns
// the results sorted by latency ascending with unreachable mirrors last.
// The returned slice always has the same length as candidates.
func (b *Benchmarker) Run(ctx context.Context, candidates []Mirror, progress ProgressFunc) []Result {
	if len(candidates) == 0 {
		return []Result{}
	}

	resultsChan := make(chan indexedResult, len(candidates))
	var wg sync.WaitGroup

	for i, m := range candidates {
		wg.Add(1)
		go func(idx int, m Mirror) {
			defer wg.Done()
			resultsChan <- indexedResult{result: b.prober.Probe(ctx, m), index: idx}
		}(i, m)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	collected := make([]indexedResult, 0, len(candidates))
	for ir := range resultsChan {
		collected = append(collected, ir)
		if progress != nil {
			progress(len(collected), len(candidates), ir.result)
		}
		b.logger.Debug("probe finished",
			"mirror", ir.result.Mirror.Name,
			"url", ir.result.Mirror.URL,
			"latency_ms", latencyAttr(ir.result),
		)
	}

	// Restore candidate order first so the latency sort is stable with respect to input.
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].index < collected[j].index
	})

	results := make([]Result, len(collected))
	for i, ir := range collected {
		results[i] = ir.result
	}
	Rank(results)

	return results
}

// Rank sorts results in place by latency ascending. Unreachable sorts last
// because it is the maximum value; ties keep their relative order.
func Rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].LatencyMs < results[j].LatencyMs
	})
}

// Fastest returns the best reachable result from ranked results.
func Fastest(results []Result) (Result, error) {
	if len(results) == 0 {
		return Result{}, ErrNoCandidates
	}
	for _, r := range results {
		if r.Reachable() {
			return r, nil
		}
	}
	return Result{}, ErrAllUnreachable
}

func latencyAttr(r Result) any {
	if !r.Reachable() {
		return "timeout"
	}
	return r.LatencyMs
}
