package source

import (
	"context"
	"log/slog"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/dishar7753/cmirror/internal/backup"
	"github.com/dishar7753/cmirror/internal/mirror"
)

var (
	pipIndexURL   = regexp.MustCompile(`(?m)^index-url[ \t]*=[ \t]*(.*)$`)
	pipIndexLine  = regexp.MustCompile(`(?m)^index-url[ \t]*=.*$`)
	pipGlobalHead = regexp.MustCompile(`(?m)^\[global\]`)
)

// Pip manages index-url in the user pip.conf (pip.ini on Windows).
type Pip struct {
	path    string
	catalog Catalog
	backups *backup.Store
	logger  *slog.Logger
}

// NewPip creates the pip adapter.
func NewPip(opts Options) *Pip {
	opts = opts.withDefaults()
	return &Pip{
		path:    opts.path("pip", defaultPipPath()),
		catalog: opts.Catalog,
		backups: opts.Backups,
		logger:  opts.Logger,
	}
}

func defaultPipPath() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(userConfigDir(), "pip", "pip.ini")
	}
	return filepath.Join(userConfigDir(), "pip", "pip.conf")
}

// Name returns "pip".
func (p *Pip) Name() string { return "pip" }

// RequiresSudo is false: pip.conf lives in the user config dir.
func (p *Pip) RequiresSudo() bool { return false }

// Candidates returns the pip mirrors from the catalog.
func (p *Pip) Candidates() []mirror.Mirror { return p.catalog.Lookup("pip") }

// ConfigPath returns the pip.conf path.
func (p *Pip) ConfigPath() string { return p.path }

// CurrentSource returns the value of the first index-url line. An empty value
// counts as none configured.
func (p *Pip) CurrentSource(ctx context.Context) (string, error) {
	content, _, err := readConfig(p.path)
	if err != nil {
		return "", err
	}
	if m := pipIndexURL.FindStringSubmatch(content); m != nil {
		return strings.TrimSpace(m[1]), nil
	}
	return "", nil
}

// Apply replaces the existing index-url line, or adds one under [global].
func (p *Pip) Apply(ctx context.Context, m mirror.Mirror) error {
	if err := validateMirror(m); err != nil {
		return err
	}

	content, _, err := readConfig(p.path)
	if err != nil {
		return err
	}
	if err := snapshot(p.backups, p.path, content); err != nil {
		return err
	}

	if err := writeConfig(p.path, setPipIndexURL(content, m.URL)); err != nil {
		return err
	}
	p.logger.Info("pip index-url updated", "path", p.path, "mirror", m.Name)
	return nil
}

func setPipIndexURL(content, url string) string {
	line := "index-url = " + url

	if loc := pipIndexLine.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + line + content[loc[1]:]
	}

	if loc := pipGlobalHead.FindStringIndex(content); loc != nil {
		end := loc[1]
		nl := strings.IndexByte(content[end:], '\n')
		if nl < 0 {
			return content + "\n" + line + "\n"
		}
		end += nl + 1
		return content[:end] + line + "\n" + content[end:]
	}

	if content == "" {
		return "[global]\n" + line + "\n"
	}
	return content + "\n[global]\n" + line + "\n"
}

// Restore copies the newest pip.conf snapshot back.
func (p *Pip) Restore(ctx context.Context) error {
	_, err := p.backups.RestoreLatest(p.path)
	return err
}
