// Package source reads and switches the download mirror configured for each
// supported package manager.
//
// Every tool is an Adapter over its own storage medium: an ini-like text file
// (pip, npm), TOML (cargo), JSON (docker), an APT sources list, the go env
// command, or an environment variable (brew). File-backed adapters snapshot the
// previous file through backup.Store before every write.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/dishar7753/cmirror/internal/backup"
	"github.com/dishar7753/cmirror/internal/mirror"
)

var (
	// ErrConfigNotFound is returned when a medium that must pre-exist is missing.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrMalformedConfig is returned when a structured config cannot be parsed for writing.
	ErrMalformedConfig = errors.New("malformed config")

	// ErrEmptyURL is returned when asked to apply a mirror without a URL.
	ErrEmptyURL = errors.New("mirror URL is empty")
)

// SupportedTools lists the tool names in display order.
var SupportedTools = []string{"pip", "npm", "docker", "go", "cargo", "brew", "apt"}

// UnknownToolError reports a tool name that has no adapter.
type UnknownToolError struct {
	Name      string
	Supported []string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unsupported tool '%s'. Available: %s", e.Name, strings.Join(e.Supported, ", "))
}

// Adapter is the uniform contract every tool implements.
type Adapter interface {
	// Name returns the stable lowercase tool name (e.g. "pip").
	Name() string

	// RequiresSudo reports whether the config is system-wide and usually needs root.
	RequiresSudo() bool

	// Candidates returns the known mirrors for this tool.
	Candidates() []mirror.Mirror

	// ConfigPath returns the file written by Apply, or a symbolic reference
	// such as "env:HOMEBREW_API_DOMAIN" for adapters without a file.
	ConfigPath() string

	// CurrentSource returns the configured mirror URL, or "" when none is configured.
	CurrentSource(ctx context.Context) (string, error)

	// Apply switches the tool to m, snapshotting the previous config first.
	Apply(ctx context.Context, m mirror.Mirror) error

	// Restore reverts to the latest snapshot or to the tool default.
	Restore(ctx context.Context) error
}

// Catalog supplies mirror candidates by key.
type Catalog interface {
	Lookup(key string) []mirror.Mirror
}

// Options carries the collaborators shared by all adapters. Zero values are
// replaced with production defaults by NewRegistry.
type Options struct {
	Catalog Catalog
	Backups *backup.Store
	Logger  *slog.Logger

	// Out receives instructions for adapters that cannot persist changes themselves.
	Out io.Writer

	// Paths overrides the config file location per tool name.
	Paths map[string]string

	// Runner executes external commands (go env).
	Runner CommandRunner

	// Getenv reads process environment variables (brew).
	Getenv func(string) string

	// OSReleasePath and AptDistro control apt distro detection. AptDistro, when
	// set, skips detection entirely.
	OSReleasePath string
	AptDistro     string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Backups == nil {
		o.Backups = backup.New(o.Logger)
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Runner == nil {
		o.Runner = ExecRunner{}
	}
	if o.Getenv == nil {
		o.Getenv = os.Getenv
	}
	if o.OSReleasePath == "" {
		o.OSReleasePath = "/etc/os-release"
	}
	if o.Catalog == nil {
		o.Catalog = emptyCatalog{}
	}
	return o
}

func (o Options) path(tool, fallback string) string {
	if p := o.Paths[tool]; p != "" {
		return p
	}
	return fallback
}

type emptyCatalog struct{}

func (emptyCatalog) Lookup(string) []mirror.Mirror { return []mirror.Mirror{} }

// Registry holds one adapter per tool.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates a registry with every supported adapter.
func NewRegistry(opts Options) *Registry {
	opts = opts.withDefaults()

	r := &Registry{adapters: make(map[string]Adapter)}
	r.Register(NewPip(opts))
	r.Register(NewNpm(opts))
	r.Register(NewDocker(opts))
	r.Register(NewGo(opts))
	r.Register(NewCargo(opts))
	r.Register(NewBrew(opts))
	r.Register(NewApt(opts))
	return r
}

// NewEmptyRegistry creates a registry with no adapters.
func NewEmptyRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its Name(), replacing any previous one.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// Get returns the adapter for name, matched case-insensitively.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, &UnknownToolError{Name: name, Supported: r.Names()}
	}
	return a, nil
}

// Names returns registered tool names, SupportedTools order first.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	seen := make(map[string]bool, len(r.adapters))
	for _, n := range SupportedTools {
		if _, ok := r.adapters[n]; ok {
			names = append(names, n)
			seen[n] = true
		}
	}
	var extra []string
	for n := range r.adapters {
		if !seen[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// FileBacked reports whether a writes a real file, so that snapshots apply to
// its ConfigPath.
func FileBacked(a Adapter) bool {
	switch a.(type) {
	case *Go, *Brew:
		return false
	}
	return true
}

func validateMirror(m mirror.Mirror) error {
	if strings.TrimSpace(m.URL) == "" {
		return fmt.Errorf("%w: %q", ErrEmptyURL, m.Name)
	}
	return nil
}
