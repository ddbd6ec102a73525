package source

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dishar7753/cmirror/internal/backup"
	"github.com/dishar7753/cmirror/internal/mirror"
)

var (
	npmRegistry     = regexp.MustCompile(`(?m)^registry[ \t]*=[ \t]*(.*)$`)
	npmRegistryLine = regexp.MustCompile(`(?m)^registry[ \t]*=.*$`)
)

// Npm manages the registry key in ~/.npmrc.
type Npm struct {
	path    string
	catalog Catalog
	backups *backup.Store
	logger  *slog.Logger
}

// NewNpm creates the npm adapter.
func NewNpm(opts Options) *Npm {
	opts = opts.withDefaults()
	return &Npm{
		path:    opts.path("npm", filepath.Join(homeDir(), ".npmrc")),
		catalog: opts.Catalog,
		backups: opts.Backups,
		logger:  opts.Logger,
	}
}

// Name returns "npm".
func (n *Npm) Name() string { return "npm" }

// RequiresSudo is false: .npmrc lives in the home directory.
func (n *Npm) RequiresSudo() bool { return false }

// Candidates returns the npm registries from the catalog.
func (n *Npm) Candidates() []mirror.Mirror { return n.catalog.Lookup("npm") }

// ConfigPath returns the .npmrc path.
func (n *Npm) ConfigPath() string { return n.path }

// CurrentSource returns the value of the first registry line. Commented or
// empty assignments count as none configured.
func (n *Npm) CurrentSource(ctx context.Context) (string, error) {
	content, _, err := readConfig(n.path)
	if err != nil {
		return "", err
	}
	if m := npmRegistry.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return "", nil
}

// Apply rewrites the registry line in place, or appends one.
func (n *Npm) Apply(ctx context.Context, m mirror.Mirror) error {
	if err := validateMirror(m); err != nil {
		return err
	}

	content, _, err := readConfig(n.path)
	if err != nil {
		return err
	}
	if err := snapshot(n.backups, n.path, content); err != nil {
		return err
	}

	line := "registry=" + m.URL
	if loc := npmRegistryLine.FindStringIndex(content); loc != nil {
		content = content[:loc[0]] + line + content[loc[1]:]
	} else {
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += line + "\n"
	}

	if err := writeConfig(n.path, content); err != nil {
		return err
	}
	n.logger.Info("npm registry updated", "path", n.path, "mirror", m.Name)
	return nil
}

// Restore copies the newest .npmrc snapshot back.
func (n *Npm) Restore(ctx context.Context) error {
	_, err := n.backups.RestoreLatest(n.path)
	return err
}
