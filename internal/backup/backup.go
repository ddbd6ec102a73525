// Package backup keeps timestamped copies of configuration files next to the
// original so a single mutating write can be undone.
//
// A snapshot of /etc/docker/daemon.json taken at Unix time 1700000000 is stored
// as /etc/docker/daemon.json.bak.1700000000. Two snapshots taken within the same
// second share a name and the later one wins.
package backup

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dishar7753/cmirror/internal/safety"
)

// ErrNoBackup is returned when a restore finds no snapshot for the path.
var ErrNoBackup = errors.New("no backup found")

const suffix = ".bak."

// Snapshot is one backup file for a config path.
type Snapshot struct {
	Path      string
	Timestamp int64
}

// CreatedAt returns the snapshot time.
func (s Snapshot) CreatedAt() time.Time {
	return time.Unix(s.Timestamp, 0)
}

// Store saves and restores snapshots. It is format-agnostic and copies bytes verbatim.
type Store struct {
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store using the wall clock.
func New(logger *slog.Logger) *Store {
	return &Store{
		logger: logger,
		now:    time.Now,
	}
}

// WithClock returns a copy of s that stamps snapshots using now.
func (s *Store) WithClock(now func() time.Time) *Store {
	c := *s
	c.now = now
	return &c
}

// Save copies path to a sibling snapshot and returns the snapshot path. When
// path does not exist nothing is written and the returned path is empty.
func (s *Store) Save(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("checking %s: %w", path, err)
	}

	name := filepath.Base(path) + suffix + strconv.FormatInt(s.now().Unix(), 10)
	dest, err := safety.SiblingPath(path, name)
	if err != nil {
		return "", fmt.Errorf("building backup path: %w", err)
	}

	if err := copyFile(path, dest, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("creating backup of %s: %w", path, err)
	}

	s.logger.Info("backup created", "path", path, "backup", dest)
	return dest, nil
}

// List returns the snapshots for path ordered oldest to newest by name.
// The order is lexicographic, so timestamps of different digit counts sort
// by string value rather than numerically.
func (s *Store) List(path string) ([]Snapshot, error) {
	dir := filepath.Dir(path)
	prefix := filepath.Base(path) + suffix

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing backups in %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	snapshots := make([]Snapshot, 0, len(names))
	for _, name := range names {
		p, err := safety.SiblingPath(path, name)
		if err != nil {
			continue
		}
		ts, _ := strconv.ParseInt(strings.TrimPrefix(name, prefix), 10, 64)
		snapshots = append(snapshots, Snapshot{Path: p, Timestamp: ts})
	}
	return snapshots, nil
}

// RestoreLatest copies the newest snapshot over path and returns the snapshot
// used. ErrNoBackup is returned, and path left untouched, when none exist.
func (s *Store) RestoreLatest(path string) (string, error) {
	snapshots, err := s.List(path)
	if err != nil {
		return "", err
	}
	if len(snapshots) == 0 {
		return "", fmt.Errorf("%w for %s", ErrNoBackup, path)
	}

	latest := snapshots[len(snapshots)-1]

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := copyFile(latest.Path, path, perm); err != nil {
		return "", fmt.Errorf("restoring %s from %s: %w", path, latest.Path, err)
	}

	s.logger.Info("configuration restored", "path", path, "backup", latest.Path)
	return latest.Path, nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, perm)
}
