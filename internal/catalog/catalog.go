// Package catalog holds the known mirror candidates for each supported tool.
package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dishar7753/cmirror/internal/mirror"
	"gopkg.in/yaml.v3"
)

//go:embed mirrors.yaml
var bundledMirrors []byte

// Catalog maps a tool key (e.g. "pip", "apt-ubuntu") to its ordered candidates.
// A Catalog is never modified after construction.
type Catalog struct {
	mirrors map[string][]mirror.Mirror
	source  string
}

// Parse decodes a catalog from YAML. JSON input is accepted as well since it
// is a subset of YAML.
func Parse(data []byte, source string) (*Catalog, error) {
	var raw map[string][]mirror.Mirror
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing mirror catalog %s: %w", source, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("mirror catalog %s is empty", source)
	}

	for key, list := range raw {
		for i, m := range list {
			if m.Name == "" || m.URL == "" {
				return nil, fmt.Errorf("mirror catalog %s: %s entry %d needs both name and url", source, key, i)
			}
		}
	}

	return &Catalog{mirrors: raw, source: source}, nil
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mirror catalog: %w", err)
	}
	return Parse(data, path)
}

// Bundled returns the catalog compiled into the binary.
func Bundled() *Catalog {
	c, err := Parse(bundledMirrors, "bundled")
	if err != nil {
		panic(fmt.Sprintf("bundled mirror catalog is invalid: %v", err))
	}
	return c
}

// Lookup returns a copy of the candidates for key. Unknown keys yield an empty slice.
func (c *Catalog) Lookup(key string) []mirror.Mirror {
	list := c.mirrors[key]
	out := make([]mirror.Mirror, len(list))
	copy(out, list)
	return out
}

// Keys returns all tool keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.mirrors))
	for k := range c.mirrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Source describes where the catalog was loaded from.
func (c *Catalog) Source() string {
	return c.source
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the process-wide catalog. The first call resolves it from the
// first readable and valid file in paths, falling back to the bundled list;
// later calls return the same catalog and ignore their arguments.
func Default(logger *slog.Logger, paths ...string) *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog = resolve(logger, paths)
	})
	return defaultCatalog
}

func resolve(logger *slog.Logger, paths []string) *Catalog {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		c, err := Load(p)
		if err != nil {
			logger.Warn("ignoring invalid user mirror catalog", "path", p, "error", err)
			continue
		}
		logger.Info("loaded mirrors from user catalog", "path", p)
		return c
	}
	return Bundled()
}

// UserPaths returns the user override locations in lookup order. explicit,
// when set, comes first.
func UserPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		paths = append(paths, explicit)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths,
			filepath.Join(dir, "cmirror", "mirrors.yaml"),
			filepath.Join(dir, "cmirror", "mirrors.json"),
		)
	}
	return paths
}
