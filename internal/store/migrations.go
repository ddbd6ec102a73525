package store

import (
	"fmt"
)

// migrate runs all pending migrations
func (s *Store) migrate() error {
	// Create migrations table if it doesn't exist
	createMigrationsTableSQL := `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY,
			version INTEGER NOT NULL UNIQUE,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := s.db.Exec(createMigrationsTableSQL); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	s.logger.Debug("Current schema version", "version", currentVersion)

	migrations := []struct {
		version int
		sql     string
	}{
		{
			version: 1,
			sql: `
				CREATE TABLE benchmark_runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					session TEXT NOT NULL DEFAULT '',
					tool TEXT NOT NULL,
					start_time DATETIME NOT NULL,
					end_time DATETIME NOT NULL,
					candidates INTEGER DEFAULT 0,
					reachable INTEGER DEFAULT 0,
					fastest_name TEXT NOT NULL DEFAULT '',
					fastest_url TEXT NOT NULL DEFAULT ''
				);

				CREATE TABLE benchmark_results (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id INTEGER NOT NULL,
					position INTEGER NOT NULL,
					name TEXT NOT NULL,
					url TEXT NOT NULL,
					latency_ms INTEGER,
					reachable BOOLEAN DEFAULT 0,
					UNIQUE(run_id, position),
					FOREIGN KEY(run_id) REFERENCES benchmark_runs(id)
				);

				CREATE INDEX idx_benchmark_runs_tool ON benchmark_runs(tool, start_time);
			`,
		},
		{
			version: 2,
			sql: `
				CREATE TABLE source_changes (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					session TEXT NOT NULL DEFAULT '',
					tool TEXT NOT NULL,
					action TEXT NOT NULL,
					mirror_name TEXT NOT NULL DEFAULT '',
					url TEXT NOT NULL DEFAULT '',
					previous_url TEXT NOT NULL DEFAULT '',
					config_path TEXT NOT NULL DEFAULT '',
					status TEXT NOT NULL DEFAULT 'success',
					error_message TEXT NOT NULL DEFAULT '',
					changed_at DATETIME NOT NULL
				);

				CREATE INDEX idx_source_changes_tool ON source_changes(tool, changed_at);
			`,
		},
	}

	for _, mig := range migrations {
		if mig.version > currentVersion {
			s.logger.Debug("Running migration", "version", mig.version)

			if err := s.runMigration(mig.version, mig.sql); err != nil {
				return fmt.Errorf("failed to run migration %d: %w", mig.version, err)
			}

			s.logger.Debug("Migration completed", "version", mig.version)
		}
	}

	return nil
}

// runMigration executes a migration and records it
func (s *Store) runMigration(version int, sql string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(sql); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	insertSQL := "INSERT INTO migrations (version) VALUES (?)"
	if _, err := tx.Exec(insertSQL, version); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	return nil
}
