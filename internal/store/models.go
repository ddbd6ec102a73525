package store

import "time"

// BenchmarkRun records one latency benchmark of a tool's candidates
type BenchmarkRun struct {
	ID          int64
	Session     string // groups records written by one invocation
	Tool        string
	StartTime   time.Time
	EndTime     time.Time
	Candidates  int
	Reachable   int
	FastestName string // empty when nothing was reachable
	FastestURL  string
	Results     []BenchmarkResult
}

// BenchmarkResult is one ranked mirror within a run
type BenchmarkResult struct {
	ID        int64
	RunID     int64
	Rank      int // 1-based position in the ranked output
	Name      string
	URL       string
	LatencyMs int64 // only meaningful when Reachable
	Reachable bool
}

// SourceChange records a use or restore against a tool's config
type SourceChange struct {
	ID           int64
	Session      string
	Tool         string
	Action       string // "use" or "restore"
	MirrorName   string
	URL          string
	PreviousURL  string
	ConfigPath   string
	Status       string // "success" or "failed"
	ErrorMessage string
	ChangedAt    time.Time
}
