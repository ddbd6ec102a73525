package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/dishar7753/cmirror/internal/mirror"
)

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run returns stdout. Errors include the command line and any stderr output.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return out, fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return out, nil
}

// Go manages GOPROXY through the go env command.
type Go struct {
	runner  CommandRunner
	catalog Catalog
	logger  *slog.Logger
}

// NewGo creates the go adapter.
func NewGo(opts Options) *Go {
	opts = opts.withDefaults()
	return &Go{
		runner:  opts.Runner,
		catalog: opts.Catalog,
		logger:  opts.Logger,
	}
}

// Name returns "go".
func (g *Go) Name() string { return "go" }

// RequiresSudo is false: go env -w writes the user's go env file.
func (g *Go) RequiresSudo() bool { return false }

// Candidates returns the module proxies from the catalog.
func (g *Go) Candidates() []mirror.Mirror { return g.catalog.Lookup("go") }

// ConfigPath names the command that reads the setting.
func (g *Go) ConfigPath() string { return "go env GOPROXY" }

// CurrentSource returns the first proxy in GOPROXY. A missing go toolchain
// counts as none configured; any other failure of go env is returned.
func (g *Go) CurrentSource(ctx context.Context) (string, error) {
	out, err := g.runner.Run(ctx, "go", "env", "GOPROXY")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			g.logger.Debug("go toolchain not found", "error", err)
			return "", nil
		}
		return "", fmt.Errorf("reading GOPROXY: %w", err)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	first := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == '|' })
	if len(first) == 0 {
		return "", nil
	}
	return strings.TrimSpace(first[0]), nil
}

// Apply writes GOPROXY=<url>,direct so private modules still resolve.
func (g *Go) Apply(ctx context.Context, m mirror.Mirror) error {
	if err := validateMirror(m); err != nil {
		return err
	}
	if _, err := g.runner.Run(ctx, "go", "env", "-w", "GOPROXY="+m.URL+",direct"); err != nil {
		return fmt.Errorf("setting GOPROXY: %w", err)
	}
	g.logger.Info("GOPROXY updated", "mirror", m.Name)
	return nil
}

// Restore unsets GOPROXY, returning go to its built-in default.
func (g *Go) Restore(ctx context.Context) error {
	if _, err := g.runner.Run(ctx, "go", "env", "-u", "GOPROXY"); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("resetting GOPROXY (exit %d): %w", exitErr.ExitCode(), err)
		}
		return fmt.Errorf("resetting GOPROXY: %w", err)
	}
	g.logger.Info("GOPROXY reset to default")
	return nil
}
