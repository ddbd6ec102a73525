package source

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/dishar7753/cmirror/internal/backup"
	"github.com/dishar7753/cmirror/internal/mirror"
)

const defaultAptDistro = "ubuntu"

var aptSourceLine = regexp.MustCompile(`(?m)^deb[ \t]+(?:\[[^\]\n]*\][ \t]+)?(https?://\S+)[ \t]+`)

// aptDefaultHosts are the stock archive locations replaced when no active
// source line is detected.
var aptDefaultHosts = map[string][]string{
	"ubuntu": {"archive.ubuntu.com/ubuntu/", "security.ubuntu.com/ubuntu/"},
	"debian": {"deb.debian.org/debian/", "security.debian.org/debian/"},
}

// Apt manages /etc/apt/sources.list.
type Apt struct {
	path    string
	distro  string
	catalog Catalog
	backups *backup.Store
	logger  *slog.Logger
}

// NewApt creates the apt adapter. The distro family is detected once here.
func NewApt(opts Options) *Apt {
	opts = opts.withDefaults()
	a := &Apt{
		path:    opts.path("apt", "/etc/apt/sources.list"),
		distro:  strings.ToLower(opts.AptDistro),
		catalog: opts.Catalog,
		backups: opts.Backups,
		logger:  opts.Logger,
	}
	if a.distro == "" {
		a.distro = detectDistro(opts.OSReleasePath, a.path)
	}
	return a
}

// detectDistro inspects os-release ID and ID_LIKE, then the sources list
// itself, and falls back to ubuntu.
func detectDistro(osRelease, sourcesList string) string {
	if f, err := os.Open(osRelease); err == nil {
		defer f.Close()
		var like string
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			key, value, ok := strings.Cut(sc.Text(), "=")
			if !ok {
				continue
			}
			value = strings.ToLower(strings.Trim(value, `"'`))
			switch key {
			case "ID":
				if _, known := aptDefaultHosts[value]; known {
					return value
				}
			case "ID_LIKE":
				like = value
			}
		}
		for _, d := range strings.Fields(like) {
			if _, known := aptDefaultHosts[d]; known {
				return d
			}
		}
	}

	if data, err := os.ReadFile(sourcesList); err == nil {
		content := string(data)
		switch {
		case strings.Contains(content, "ubuntu"):
			return "ubuntu"
		case strings.Contains(content, "debian"):
			return "debian"
		}
	}
	return defaultAptDistro
}

// Name returns "apt".
func (a *Apt) Name() string { return "apt" }

// RequiresSudo is true: sources.list is owned by root.
func (a *Apt) RequiresSudo() bool { return true }

// ConfigPath returns the sources.list path.
func (a *Apt) ConfigPath() string { return a.path }

// Distro returns the detected distro family.
func (a *Apt) Distro() string { return a.distro }

// Candidates returns the mirrors for the detected distro family.
func (a *Apt) Candidates() []mirror.Mirror {
	return a.catalog.Lookup("apt-" + a.distro)
}

// CurrentSource returns the URL of the first active deb line.
func (a *Apt) CurrentSource(ctx context.Context) (string, error) {
	content, _, err := readConfig(a.path)
	if err != nil {
		return "", err
	}
	if m := aptSourceLine.FindStringSubmatch(content); m != nil {
		return m[1], nil
	}
	return "", nil
}

// Apply rewrites every occurrence of the current URL, matched as a whole
// token with or without its trailing slash. Without a detected URL it
// rewrites the stock archive hosts instead.
func (a *Apt) Apply(ctx context.Context, m mirror.Mirror) error {
	if err := validateMirror(m); err != nil {
		return err
	}

	content, exists, err := readConfig(a.path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrConfigNotFound, a.path)
	}

	target := m.URL
	if !strings.HasSuffix(target, "/") {
		target += "/"
	}

	var updated string
	if cur := aptSourceLine.FindStringSubmatch(content); cur != nil {
		updated = replaceAptURL(content, cur[1], target)
	} else {
		updated = content
		for _, host := range aptDefaultHosts[a.distro] {
			updated = strings.ReplaceAll(updated, "http://"+host, target)
			updated = strings.ReplaceAll(updated, "https://"+host, target)
		}
	}

	if updated == content {
		a.logger.Warn("no apt source lines were changed", "path", a.path, "distro", a.distro)
	}

	if err := snapshot(a.backups, a.path, content); err != nil {
		return err
	}
	if err := writeConfig(a.path, updated); err != nil {
		return err
	}
	a.logger.Info("apt sources updated", "path", a.path, "mirror", m.Name)
	return nil
}

// replaceAptURL swaps every whitespace-delimited occurrence of current for
// target. Trailing slashes are ignored when matching, so a prefix such as
// .../ubuntu never matches .../ubuntu-ports.
func replaceAptURL(content, current, target string) string {
	base := regexp.QuoteMeta(strings.TrimSuffix(current, "/"))
	re := regexp.MustCompile(`(?m)(^|[ \t])` + base + `/?([ \t]|$)`)
	return re.ReplaceAllString(content, "${1}"+strings.ReplaceAll(target, "$", "$$")+"${2}")
}

// Restore copies the newest sources.list snapshot back.
func (a *Apt) Restore(ctx context.Context) error {
	_, err := a.backups.RestoreLatest(a.path)
	return err
}
