package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/dishar7753/cmirror/internal/backup"
	"github.com/dishar7753/cmirror/internal/mirror"
)

const dockerMirrorsKey = "registry-mirrors"

// Docker manages registry-mirrors in the daemon.json of the Docker engine.
type Docker struct {
	path    string
	catalog Catalog
	backups *backup.Store
	logger  *slog.Logger
}

// NewDocker creates the docker adapter.
func NewDocker(opts Options) *Docker {
	opts = opts.withDefaults()
	return &Docker{
		path:    opts.path("docker", defaultDockerPath()),
		catalog: opts.Catalog,
		backups: opts.Backups,
		logger:  opts.Logger,
	}
}

func defaultDockerPath() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), ".docker", "daemon.json")
	case "windows":
		return `C:\ProgramData\docker\config\daemon.json`
	default:
		return "/etc/docker/daemon.json"
	}
}

// Name returns "docker".
func (d *Docker) Name() string { return "docker" }

// RequiresSudo is true: daemon.json is owned by root.
func (d *Docker) RequiresSudo() bool { return true }

// Candidates returns the registry mirrors from the catalog.
func (d *Docker) Candidates() []mirror.Mirror { return d.catalog.Lookup("docker") }

// ConfigPath returns the daemon.json path.
func (d *Docker) ConfigPath() string { return d.path }

// CurrentSource returns the first registry mirror. Unparsable content counts as
// none configured.
func (d *Docker) CurrentSource(ctx context.Context) (string, error) {
	content, _, err := readConfig(d.path)
	if err != nil || content == "" {
		return "", err
	}

	var cfg struct {
		Mirrors []string `json:"registry-mirrors"`
	}
	if err := json.Unmarshal([]byte(content), &cfg); err != nil {
		d.logger.Debug("ignoring unparsable daemon.json", "path", d.path, "error", err)
		return "", nil
	}
	if len(cfg.Mirrors) == 0 {
		return "", nil
	}
	return cfg.Mirrors[0], nil
}

// Apply sets registry-mirrors to the single given URL. Other fields are kept
// as raw JSON.
func (d *Docker) Apply(ctx context.Context, m mirror.Mirror) error {
	if err := validateMirror(m); err != nil {
		return err
	}

	content, _, err := readConfig(d.path)
	if err != nil {
		return err
	}

	out, err := setDockerMirror(content, m.URL)
	if err != nil {
		return fmt.Errorf("%s: %w", d.path, err)
	}

	if err := snapshot(d.backups, d.path, content); err != nil {
		return err
	}
	if err := writeConfig(d.path, out); err != nil {
		return err
	}
	d.logger.Info("docker registry mirror updated", "path", d.path, "mirror", m.Name)
	return nil
}

func setDockerMirror(content, url string) (string, error) {
	fields := map[string]json.RawMessage{}
	if len(bytes.TrimSpace([]byte(content))) > 0 {
		if err := json.Unmarshal([]byte(content), &fields); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedConfig, err)
		}
		// "null" decodes into a nil map.
		if fields == nil {
			fields = map[string]json.RawMessage{}
		}
	}

	mirrors, err := json.Marshal([]string{url})
	if err != nil {
		return "", err
	}
	fields[dockerMirrorsKey] = mirrors

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fields); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedConfig, err)
	}
	return buf.String(), nil
}

// Restore copies the newest daemon.json snapshot back.
func (d *Docker) Restore(ctx context.Context) error {
	_, err := d.backups.RestoreLatest(d.path)
	return err
}
