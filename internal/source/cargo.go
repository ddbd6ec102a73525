package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/dishar7753/cmirror/internal/backup"
	"github.com/dishar7753/cmirror/internal/mirror"
)

// cargoAlias is the source table name written by Apply.
const cargoAlias = "mirror"

// Cargo manages source replacement in ~/.cargo/config.toml.
type Cargo struct {
	path    string
	catalog Catalog
	backups *backup.Store
	logger  *slog.Logger
}

// NewCargo creates the cargo adapter.
func NewCargo(opts Options) *Cargo {
	opts = opts.withDefaults()
	return &Cargo{
		path:    opts.path("cargo", filepath.Join(homeDir(), ".cargo", "config.toml")),
		catalog: opts.Catalog,
		backups: opts.Backups,
		logger:  opts.Logger,
	}
}

// Name returns "cargo".
func (c *Cargo) Name() string { return "cargo" }

// RequiresSudo is false: the config lives under ~/.cargo.
func (c *Cargo) RequiresSudo() bool { return false }

// Candidates returns the crates.io mirrors from the catalog.
func (c *Cargo) Candidates() []mirror.Mirror { return c.catalog.Lookup("cargo") }

// ConfigPath returns the config.toml path.
func (c *Cargo) ConfigPath() string { return c.path }

// CurrentSource follows source.crates-io.replace-with to the named table's
// registry. A file that fails to parse counts as none configured.
func (c *Cargo) CurrentSource(ctx context.Context) (string, error) {
	content, _, err := readConfig(c.path)
	if err != nil || content == "" {
		return "", err
	}

	doc := map[string]any{}
	if _, err := toml.Decode(content, &doc); err != nil {
		c.logger.Debug("ignoring unparsable cargo config", "path", c.path, "error", err)
		return "", nil
	}

	sources, _ := doc["source"].(map[string]any)
	cratesIO, _ := sources["crates-io"].(map[string]any)
	alias, _ := cratesIO["replace-with"].(string)
	if alias == "" {
		return "", nil
	}
	target, _ := sources[alias].(map[string]any)
	registry, _ := target["registry"].(string)
	return registry, nil
}

// Apply upserts source.crates-io.replace-with and source.mirror.registry,
// keeping every other key in the document. The file is re-encoded, so
// comments and the original key order and formatting are not preserved.
func (c *Cargo) Apply(ctx context.Context, m mirror.Mirror) error {
	if err := validateMirror(m); err != nil {
		return err
	}

	content, _, err := readConfig(c.path)
	if err != nil {
		return err
	}

	out, err := setCargoRegistry(content, m.URL)
	if err != nil {
		return fmt.Errorf("%s: %w", c.path, err)
	}

	if err := snapshot(c.backups, c.path, content); err != nil {
		return err
	}
	if err := writeConfig(c.path, out); err != nil {
		return err
	}
	c.logger.Info("cargo source replaced", "path", c.path, "mirror", m.Name)
	return nil
}

func setCargoRegistry(content, url string) (string, error) {
	doc := map[string]any{}
	if _, err := toml.Decode(content, &doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}

	sources, err := subTable(doc, "source")
	if err != nil {
		return "", err
	}
	cratesIO, err := subTable(sources, "crates-io")
	if err != nil {
		return "", err
	}
	target, err := subTable(sources, cargoAlias)
	if err != nil {
		return "", err
	}
	cratesIO["replace-with"] = cargoAlias
	target["registry"] = url

	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}
	return buf.String(), nil
}

// subTable returns parent[key] as a table, creating it when absent.
func subTable(parent map[string]any, key string) (map[string]any, error) {
	v, ok := parent[key]
	if !ok {
		t := map[string]any{}
		parent[key] = t
		return t, nil
	}
	t, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q is %T, not a table", ErrMalformedConfig, key, v)
	}
	return t, nil
}

// Restore copies the newest config.toml snapshot back.
func (c *Cargo) Restore(ctx context.Context) error {
	_, err := c.backups.RestoreLatest(c.path)
	return err
}
