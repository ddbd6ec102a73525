package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence of benchmark and source history
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a new Store, opening the SQLite database and running migrations
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One process, one command: a single connection also keeps :memory: coherent
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Debug("Store initialized", "path", dbPath)
	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// ============================================================================
// Benchmark Operations
// ============================================================================

// RecordBenchmark inserts a run and its ranked results in one transaction,
// setting the IDs on run and its results
func (s *Store) RecordBenchmark(run *BenchmarkRun) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const runQuery = `
		INSERT INTO benchmark_runs (
			session, tool, start_time, end_time, candidates, reachable, fastest_name, fastest_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(
		runQuery,
		run.Session, run.Tool, run.StartTime, run.EndTime, run.Candidates, run.Reachable,
		run.FastestName, run.FastestURL,
	)
	if err != nil {
		return fmt.Errorf("failed to insert benchmark run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	const resultQuery = `
		INSERT INTO benchmark_results (run_id, position, name, url, latency_ms, reachable)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i := range run.Results {
		r := &run.Results[i]
		var latency sql.NullInt64
		if r.Reachable {
			latency = sql.NullInt64{Int64: r.LatencyMs, Valid: true}
		}
		res, err := tx.Exec(resultQuery, runID, r.Rank, r.Name, r.URL, latency, r.Reachable)
		if err != nil {
			return fmt.Errorf("failed to insert benchmark result %q: %w", r.Name, err)
		}
		if r.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		r.RunID = runID
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit benchmark run: %w", err)
	}

	run.ID = runID
	return nil
}

// ListBenchmarkRuns retrieves runs newest first, optionally filtered by tool.
// Results are not loaded; use ListBenchmarkResults.
func (s *Store) ListBenchmarkRuns(tool string, limit int) ([]BenchmarkRun, error) {
	query := `
		SELECT id, session, tool, start_time, end_time, candidates, reachable, fastest_name, fastest_url
		FROM benchmark_runs
	`
	var args []interface{}

	if tool != "" {
		query += " WHERE tool = ?"
		args = append(args, tool)
	}

	query += " ORDER BY start_time DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark runs: %w", err)
	}
	defer rows.Close()

	var runs []BenchmarkRun
	for rows.Next() {
		run := BenchmarkRun{}
		err := rows.Scan(
			&run.ID, &run.Session, &run.Tool, &run.StartTime, &run.EndTime,
			&run.Candidates, &run.Reachable, &run.FastestName, &run.FastestURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan benchmark run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benchmark runs: %w", err)
	}

	return runs, nil
}

// ListBenchmarkResults retrieves a run's results in rank order
func (s *Store) ListBenchmarkResults(runID int64) ([]BenchmarkResult, error) {
	const query = `
		SELECT id, run_id, position, name, url, latency_ms, reachable
		FROM benchmark_results
		WHERE run_id = ?
		ORDER BY position
	`

	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark results: %w", err)
	}
	defer rows.Close()

	var results []BenchmarkResult
	for rows.Next() {
		r := BenchmarkResult{}
		var latency sql.NullInt64
		if err := rows.Scan(&r.ID, &r.RunID, &r.Rank, &r.Name, &r.URL, &latency, &r.Reachable); err != nil {
			return nil, fmt.Errorf("failed to scan benchmark result: %w", err)
		}
		if latency.Valid {
			r.LatencyMs = latency.Int64
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating benchmark results: %w", err)
	}

	return results, nil
}

// ============================================================================
// SourceChange Operations
// ============================================================================

// RecordSourceChange inserts a SourceChange and sets its ID
func (s *Store) RecordSourceChange(c *SourceChange) error {
	const query = `
		INSERT INTO source_changes (
			session, tool, action, mirror_name, url, previous_url, config_path,
			status, error_message, changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := c.Status
	if status == "" {
		status = "success"
	}

	result, err := s.db.Exec(
		query,
		c.Session, c.Tool, c.Action, c.MirrorName, c.URL, c.PreviousURL, c.ConfigPath,
		status, c.ErrorMessage, c.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert source change: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	c.ID = id
	c.Status = status
	return nil
}

// ListSourceChanges retrieves changes newest first, optionally filtered by tool
func (s *Store) ListSourceChanges(tool string, limit int) ([]SourceChange, error) {
	query := `
		SELECT id, session, tool, action, mirror_name, url, previous_url, config_path,
		       status, error_message, changed_at
		FROM source_changes
	`
	var args []interface{}

	if tool != "" {
		query += " WHERE tool = ?"
		args = append(args, tool)
	}

	query += " ORDER BY changed_at DESC, id DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query source changes: %w", err)
	}
	defer rows.Close()

	var changes []SourceChange
	for rows.Next() {
		c := SourceChange{}
		err := rows.Scan(
			&c.ID, &c.Session, &c.Tool, &c.Action, &c.MirrorName, &c.URL, &c.PreviousURL,
			&c.ConfigPath, &c.Status, &c.ErrorMessage, &c.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source change: %w", err)
		}
		changes = append(changes, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating source changes: %w", err)
	}

	return changes, nil
}
