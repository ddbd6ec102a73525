package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dishar7753/cmirror/internal/backup"
	"github.com/dishar7753/cmirror/internal/mirror"
)

type mapCatalog map[string][]mirror.Mirror

func (c mapCatalog) Lookup(key string) []mirror.Mirror { return c[key] }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions(t *testing.T, tool, file string) (Options, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), file)
	next := int64(1700000000)
	clock := func() time.Time {
		ts := time.Unix(next, 0)
		next++
		return ts
	}
	logger := quietLogger()
	return Options{
		Logger:        logger,
		Backups:       backup.New(logger).WithClock(clock),
		Paths:         map[string]string{tool: path},
		Out:           io.Discard,
		OSReleasePath: filepath.Join(t.TempDir(), "os-release"),
	}, path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

var (
	mirrorA = mirror.Mirror{Name: "A", URL: "https://a.example/simple"}
	mirrorB = mirror.Mirror{Name: "B", URL: "https://b.example/simple"}
)

func TestPipCreatesSingleKey(t *testing.T) {
	opts, path := testOptions(t, "pip", "pip/pip.conf")
	p := NewPip(opts)
	ctx := context.Background()

	cur, err := p.CurrentSource(ctx)
	require.NoError(t, err)
	assert.Empty(t, cur)

	require.NoError(t, p.Apply(ctx, mirrorA))
	content := readFile(t, path)
	assert.Equal(t, "[global]\nindex-url = https://a.example/simple\n", content)

	cur, err = p.CurrentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, mirrorA.URL, cur)
}

func TestPipReplacesInPlace(t *testing.T) {
	opts, path := testOptions(t, "pip", "pip.conf")
	original := "[global]\ntimeout = 60\nindex-url = https://old.example/simple\ntrusted-host = old.example\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	require.NoError(t, NewPip(opts).Apply(context.Background(), mirrorB))

	content := readFile(t, path)
	assert.Equal(t, 1, strings.Count(content, "index-url"))
	assert.Equal(t, "[global]\ntimeout = 60\nindex-url = https://b.example/simple\ntrusted-host = old.example\n", content)
}

func TestPipInsertsUnderGlobal(t *testing.T) {
	tests := []struct {
		name     string
		original string
		want     string
	}{
		{
			name:     "global section present",
			original: "[global]\ntimeout = 60\n",
			want:     "[global]\nindex-url = https://a.example/simple\ntimeout = 60\n",
		},
		{
			name:     "global header without newline",
			original: "[global]",
			want:     "[global]\nindex-url = https://a.example/simple\n",
		},
		{
			name:     "other section only",
			original: "[install]\nuser = true\n",
			want:     "[install]\nuser = true\n\n[global]\nindex-url = https://a.example/simple\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, setPipIndexURL(tt.original, mirrorA.URL))
		})
	}
}

func TestApplyTwiceThenRestoreYieldsFirst(t *testing.T) {
	tests := []struct {
		tool string
		file string
		new  func(Options) Adapter
	}{
		{"pip", "pip.conf", func(o Options) Adapter { return NewPip(o) }},
		{"npm", ".npmrc", func(o Options) Adapter { return NewNpm(o) }},
		{"cargo", "config.toml", func(o Options) Adapter { return NewCargo(o) }},
		{"docker", "daemon.json", func(o Options) Adapter { return NewDocker(o) }},
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			opts, _ := testOptions(t, tt.tool, tt.file)
			a := tt.new(opts)
			ctx := context.Background()

			require.NoError(t, a.Apply(ctx, mirrorA))
			require.NoError(t, a.Apply(ctx, mirrorB))
			cur, err := a.CurrentSource(ctx)
			require.NoError(t, err)
			assert.Equal(t, mirrorB.URL, cur)

			require.NoError(t, a.Restore(ctx))
			cur, err = a.CurrentSource(ctx)
			require.NoError(t, err)
			assert.Equal(t, mirrorA.URL, cur)
		})
	}
}

func TestRestoreWithoutBackup(t *testing.T) {
	opts, path := testOptions(t, "npm", ".npmrc")
	require.NoError(t, os.WriteFile(path, []byte("registry=https://registry.npmjs.org/\n"), 0644))

	err := NewNpm(opts).Restore(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, backup.ErrNoBackup))
	assert.Equal(t, "registry=https://registry.npmjs.org/\n", readFile(t, path))
}

func TestNpmReplacesInPlace(t *testing.T) {
	opts, path := testOptions(t, "npm", ".npmrc")
	original := "//registry.npmjs.org/:_authToken=abc\nregistry = https://old.example/\nsave-exact=true"
	require.NoError(t, os.WriteFile(path, []byte(original), 0600))

	n := NewNpm(opts)
	require.NoError(t, n.Apply(context.Background(), mirrorA))

	content := readFile(t, path)
	assert.Equal(t, "//registry.npmjs.org/:_authToken=abc\nregistry=https://a.example/simple\nsave-exact=true", content)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	snapshots, err := opts.Backups.List(path)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	assert.Equal(t, original, readFile(t, snapshots[0].Path))
}

func TestNpmAppendsMissingKey(t *testing.T) {
	opts, path := testOptions(t, "npm", ".npmrc")
	require.NoError(t, os.WriteFile(path, []byte("save-exact=true"), 0644))

	require.NoError(t, NewNpm(opts).Apply(context.Background(), mirrorA))
	assert.Equal(t, "save-exact=true\nregistry=https://a.example/simple\n", readFile(t, path))
}

func TestEmptyFileIsNotSnapshotted(t *testing.T) {
	opts, path := testOptions(t, "npm", ".npmrc")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	require.NoError(t, NewNpm(opts).Apply(context.Background(), mirrorA))

	snapshots, err := opts.Backups.List(path)
	require.NoError(t, err)
	assert.Empty(t, snapshots)
}

func TestTextConfigCurrentSource(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		file    string
		content string
		want    string
	}{
		{"pip empty value", "pip", "pip.conf", "[global]\nindex-url =\ntimeout = 60\n", ""},
		{"pip empty value at end", "pip", "pip.conf", "[global]\nindex-url = ", ""},
		{"pip semicolon comment", "pip", "pip.conf", "[global]\n;index-url = https://a.example/simple\n", ""},
		{"pip hash comment", "pip", "pip.conf", "[global]\n# index-url = https://a.example/simple\n", ""},
		{"pip key after others", "pip", "pip.conf", "[global]\ntimeout = 60\nindex-url =  https://a.example/simple  \n", "https://a.example/simple"},
		{"pip no key", "pip", "pip.conf", "[global]\ntimeout = 60\n", ""},
		{"npm empty value", "npm", ".npmrc", "registry=\nstrict-ssl=false\n", ""},
		{"npm hash comment", "npm", ".npmrc", "#registry=https://r.example/\n", ""},
		{"npm semicolon comment", "npm", ".npmrc", ";registry=https://r.example/\n", ""},
		{"npm key after others", "npm", ".npmrc", "strict-ssl=false\nregistry = https://r.example/\n", "https://r.example/"},
		{"apt commented line", "apt", "sources.list", "# deb http://archive.ubuntu.com/ubuntu/ jammy main\n", ""},
		{"apt deb without suite", "apt", "sources.list", "deb http://archive.ubuntu.com/ubuntu/\njammy main\n", ""},
		{"apt line after others", "apt", "sources.list", "deb-src http://src.example/ubuntu/ jammy main\ndeb http://archive.ubuntu.com/ubuntu/ jammy main\n", "http://archive.ubuntu.com/ubuntu/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, path := testOptions(t, tt.tool, tt.file)
			opts.AptDistro = "ubuntu"
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			a, err := NewRegistry(opts).Get(tt.tool)
			require.NoError(t, err)

			got, err := a.CurrentSource(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmptyValueIsReplacedInPlace(t *testing.T) {
	t.Run("pip", func(t *testing.T) {
		opts, path := testOptions(t, "pip", "pip.conf")
		require.NoError(t, os.WriteFile(path, []byte("[global]\nindex-url =\ntimeout = 60\n"), 0644))

		require.NoError(t, NewPip(opts).Apply(context.Background(), mirrorA))
		assert.Equal(t, "[global]\nindex-url = https://a.example/simple\ntimeout = 60\n", readFile(t, path))
	})

	t.Run("npm", func(t *testing.T) {
		opts, path := testOptions(t, "npm", ".npmrc")
		require.NoError(t, os.WriteFile(path, []byte("registry=\nstrict-ssl=false\n"), 0644))

		require.NoError(t, NewNpm(opts).Apply(context.Background(), mirrorA))
		assert.Equal(t, "registry=https://a.example/simple\nstrict-ssl=false\n", readFile(t, path))
	})
}

func TestApplyRejectsEmptyURL(t *testing.T) {
	opts, path := testOptions(t, "pip", "pip.conf")
	err := NewPip(opts).Apply(context.Background(), mirror.Mirror{Name: "blank"})
	assert.ErrorIs(t, err, ErrEmptyURL)
	assert.NoFileExists(t, path)
}

func TestCargoRoundTripKeepsOtherTables(t *testing.T) {
	opts, path := testOptions(t, "cargo", "config.toml")
	original := `[build]
jobs = 4

[net]
git-fetch-with-cli = true

[source.crates-io]
replace-with = "ustc"

[source.ustc]
registry = "sparse+https://mirrors.ustc.edu.cn/crates.io-index/"

[target.x86_64-unknown-linux-gnu]
linker = "clang"
rustflags = ["-C", "link-arg=-fuse-ld=lld"]
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	c := NewCargo(opts)
	ctx := context.Background()

	cur, err := c.CurrentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sparse+https://mirrors.ustc.edu.cn/crates.io-index/", cur)

	url := "sparse+https://rsproxy.cn/index/"
	require.NoError(t, c.Apply(ctx, mirror.Mirror{Name: "RsProxy", URL: url}))

	cur, err = c.CurrentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, url, cur)

	var before, after map[string]any
	_, err = toml.Decode(original, &before)
	require.NoError(t, err)
	_, err = toml.DecodeFile(path, &after)
	require.NoError(t, err)

	for _, key := range []string{"build", "net", "target"} {
		assert.Equal(t, before[key], after[key], key)
	}
	sources := after["source"].(map[string]any)
	assert.Equal(t, before["source"].(map[string]any)["ustc"], sources["ustc"])
	assert.Equal(t, "mirror", sources["crates-io"].(map[string]any)["replace-with"])
}

func TestCargoCreatesFile(t *testing.T) {
	opts, path := testOptions(t, "cargo", ".cargo/config.toml")
	require.NoError(t, NewCargo(opts).Apply(context.Background(), mirrorA))

	var doc struct {
		Source map[string]map[string]string `toml:"source"`
	}
	_, err := toml.DecodeFile(path, &doc)
	require.NoError(t, err)
	assert.Equal(t, "mirror", doc.Source["crates-io"]["replace-with"])
	assert.Equal(t, mirrorA.URL, doc.Source["mirror"]["registry"])
}

func TestCargoMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"invalid syntax", "[source\nregistry = "},
		{"source is not a table", "source = \"nope\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, path := testOptions(t, "cargo", "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			c := NewCargo(opts)

			cur, err := c.CurrentSource(context.Background())
			require.NoError(t, err)
			assert.Empty(t, cur)

			err = c.Apply(context.Background(), mirrorA)
			assert.ErrorIs(t, err, ErrMalformedConfig)
			assert.Equal(t, tt.content, readFile(t, path))

			snapshots, err := opts.Backups.List(path)
			require.NoError(t, err)
			assert.Empty(t, snapshots)
		})
	}
}

func TestDockerPreservesFields(t *testing.T) {
	opts, path := testOptions(t, "docker", "daemon.json")
	original := `{"log-driver": "json-file", "registry-mirrors": ["https://old.example"], "features": {"buildkit": true}}`
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	d := NewDocker(opts)
	ctx := context.Background()

	cur, err := d.CurrentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://old.example", cur)

	require.NoError(t, d.Apply(ctx, mirrorA))

	content := readFile(t, path)
	assert.JSONEq(t, `{"log-driver": "json-file", "registry-mirrors": ["https://a.example/simple"], "features": {"buildkit": true}}`, content)
	assert.True(t, d.RequiresSudo())
}

func TestDockerMalformed(t *testing.T) {
	opts, path := testOptions(t, "docker", "daemon.json")
	require.NoError(t, os.WriteFile(path, []byte("[1, 2]"), 0644))
	d := NewDocker(opts)

	cur, err := d.CurrentSource(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cur)

	assert.ErrorIs(t, d.Apply(context.Background(), mirrorA), ErrMalformedConfig)
	assert.Equal(t, "[1, 2]", readFile(t, path))
}

func TestDockerNullDocument(t *testing.T) {
	out, err := setDockerMirror("null", "https://a.example")
	require.NoError(t, err)
	assert.JSONEq(t, `{"registry-mirrors": ["https://a.example"]}`, out)
}

func TestAptSameURLLinesAllRewritten(t *testing.T) {
	opts, path := testOptions(t, "apt", "sources.list")
	opts.AptDistro = "ubuntu"
	original := `# deb http://commented.example/ubuntu/ jammy main
deb http://archive.ubuntu.com/ubuntu/ jammy main restricted
deb [arch=amd64] http://archive.ubuntu.com/ubuntu/ jammy-updates main restricted
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	a := NewApt(opts)
	ctx := context.Background()

	cur, err := a.CurrentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, "http://archive.ubuntu.com/ubuntu/", cur)

	require.NoError(t, a.Apply(ctx, mirror.Mirror{Name: "Tsinghua", URL: "https://mirrors.tuna.tsinghua.edu.cn/ubuntu"}))

	assert.Equal(t, `# deb http://commented.example/ubuntu/ jammy main
deb https://mirrors.tuna.tsinghua.edu.cn/ubuntu/ jammy main restricted
deb [arch=amd64] https://mirrors.tuna.tsinghua.edu.cn/ubuntu/ jammy-updates main restricted
`, readFile(t, path))
}

func TestAptDifferentURLsOnlyCurrentRewritten(t *testing.T) {
	opts, path := testOptions(t, "apt", "sources.list")
	opts.AptDistro = "ubuntu"
	original := "deb http://archive.ubuntu.com/ubuntu/ jammy main\ndeb http://security.ubuntu.com/ubuntu/ jammy-security main\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	require.NoError(t, NewApt(opts).Apply(context.Background(), mirror.Mirror{Name: "USTC", URL: "https://mirrors.ustc.edu.cn/ubuntu/"}))

	assert.Equal(t, "deb https://mirrors.ustc.edu.cn/ubuntu/ jammy main\ndeb http://security.ubuntu.com/ubuntu/ jammy-security main\n", readFile(t, path))
}

func TestAptMatchesWholeURL(t *testing.T) {
	opts, path := testOptions(t, "apt", "sources.list")
	opts.AptDistro = "ubuntu"
	original := `deb http://archive.ubuntu.com/ubuntu jammy main
deb http://archive.ubuntu.com/ubuntu-ports jammy main
deb http://archive.ubuntu.com/ubuntu/ jammy-updates main
`
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	require.NoError(t, NewApt(opts).Apply(context.Background(), mirror.Mirror{Name: "USTC", URL: "https://mirrors.ustc.edu.cn/ubuntu"}))

	assert.Equal(t, `deb https://mirrors.ustc.edu.cn/ubuntu/ jammy main
deb http://archive.ubuntu.com/ubuntu-ports jammy main
deb https://mirrors.ustc.edu.cn/ubuntu/ jammy-updates main
`, readFile(t, path))
}

func TestAptFallsBackToDefaultHosts(t *testing.T) {
	opts, path := testOptions(t, "apt", "sources.list")
	opts.AptDistro = "debian"
	// deb-src lines are not active source lines for detection.
	original := "deb-src https://deb.debian.org/debian/ bookworm main\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	require.NoError(t, NewApt(opts).Apply(context.Background(), mirror.Mirror{Name: "USTC", URL: "https://mirrors.ustc.edu.cn/debian"}))
	assert.Equal(t, "deb-src https://mirrors.ustc.edu.cn/debian/ bookworm main\n", readFile(t, path))
}

func TestAptMissingFile(t *testing.T) {
	opts, _ := testOptions(t, "apt", "sources.list")
	opts.AptDistro = "ubuntu"
	err := NewApt(opts).Apply(context.Background(), mirrorA)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestAptDistroDetection(t *testing.T) {
	tests := []struct {
		name      string
		osRelease string
		sources   string
		want      string
	}{
		{"debian id", "ID=debian\nVERSION_ID=\"12\"\n", "", "debian"},
		{"ubuntu id quoted", "ID=\"ubuntu\"\n", "", "ubuntu"},
		{"derivative via id_like", "ID=linuxmint\nID_LIKE=\"ubuntu debian\"\n", "", "ubuntu"},
		{"sources fallback", "ID=unknown\n", "deb http://deb.debian.org/debian bookworm main\n", "debian"},
		{"default", "", "", "ubuntu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			osRelease := filepath.Join(dir, "os-release")
			sources := filepath.Join(dir, "sources.list")
			if tt.osRelease != "" {
				require.NoError(t, os.WriteFile(osRelease, []byte(tt.osRelease), 0644))
			}
			if tt.sources != "" {
				require.NoError(t, os.WriteFile(sources, []byte(tt.sources), 0644))
			}

			a := NewApt(Options{
				Logger:        quietLogger(),
				OSReleasePath: osRelease,
				Paths:         map[string]string{"apt": sources},
				Catalog: mapCatalog{
					"apt-ubuntu": {{Name: "Official", URL: "http://archive.ubuntu.com/ubuntu/"}},
					"apt-debian": {{Name: "Official", URL: "http://deb.debian.org/debian/"}},
				},
			})
			assert.Equal(t, tt.want, a.Distro())
			require.Len(t, a.Candidates(), 1)
		})
	}
}

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	return []byte(f.out), f.err
}

func TestGoProxy(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		err     error
		want    string
		wantErr bool
	}{
		{"comma list", "https://goproxy.cn,direct\n", nil, "https://goproxy.cn", false},
		{"pipe list", "https://goproxy.io|https://proxy.golang.org\n", nil, "https://goproxy.io", false},
		{"off", "off\n", nil, "off", false},
		{"empty", "\n", nil, "", false},
		{"no toolchain", "", fmt.Errorf("go env GOPROXY: %w", &exec.Error{Name: "go", Err: exec.ErrNotFound}), "", false},
		{"go env fails", "", errors.New("go env GOPROXY: exit status 1: go: invalid GOFLAGS"), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{out: tt.out, err: tt.err}
			g := NewGo(Options{Runner: runner, Logger: quietLogger()})

			got, err := g.CurrentSource(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, [][]string{{"go", "env", "GOPROXY"}}, runner.calls)
		})
	}
}

func TestGoApplyAndRestore(t *testing.T) {
	runner := &fakeRunner{}
	g := NewGo(Options{Runner: runner, Logger: quietLogger()})
	ctx := context.Background()

	require.NoError(t, g.Apply(ctx, mirror.Mirror{Name: "Goproxy.cn", URL: "https://goproxy.cn"}))
	require.NoError(t, g.Restore(ctx))

	assert.Equal(t, [][]string{
		{"go", "env", "-w", "GOPROXY=https://goproxy.cn,direct"},
		{"go", "env", "-u", "GOPROXY"},
	}, runner.calls)
	assert.Equal(t, "go env GOPROXY", g.ConfigPath())

	runner.err = errors.New("boom")
	assert.Error(t, g.Apply(ctx, mirrorA))
}

func TestBrew(t *testing.T) {
	var out bytes.Buffer
	env := map[string]string{"HOMEBREW_API_DOMAIN": " https://mirrors.ustc.edu.cn/homebrew-bottles/api "}
	b := NewBrew(Options{Out: &out, Getenv: func(k string) string { return env[k] }})
	ctx := context.Background()

	cur, err := b.CurrentSource(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://mirrors.ustc.edu.cn/homebrew-bottles/api", cur)
	assert.Equal(t, "env:HOMEBREW_API_DOMAIN", b.ConfigPath())

	require.NoError(t, b.Apply(ctx, mirror.Mirror{Name: "Tsinghua", URL: "https://mirrors.tuna.tsinghua.edu.cn/homebrew-bottles/api"}))
	assert.Contains(t, out.String(), `export HOMEBREW_API_DOMAIN="https://mirrors.tuna.tsinghua.edu.cn/homebrew-bottles/api"`)
	assert.Contains(t, out.String(), `export HOMEBREW_BOTTLE_DOMAIN="https://mirrors.tuna.tsinghua.edu.cn/homebrew-bottles"`)

	out.Reset()
	require.NoError(t, b.Apply(ctx, mirror.Mirror{Name: "Other", URL: "https://brew.example/api"}))
	assert.NotContains(t, out.String(), "HOMEBREW_BOTTLE_DOMAIN")

	out.Reset()
	require.NoError(t, b.Restore(ctx))
	assert.Contains(t, out.String(), "unset HOMEBREW_API_DOMAIN")
	assert.Contains(t, out.String(), "unset HOMEBREW_BOTTLE_DOMAIN")
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(Options{Logger: quietLogger(), Runner: &fakeRunner{}, AptDistro: "ubuntu"})
	assert.Equal(t, SupportedTools, r.Names())

	a, err := r.Get(" PIP ")
	require.NoError(t, err)
	assert.Equal(t, "pip", a.Name())

	for _, name := range []string{"apt", "docker"} {
		a, err := r.Get(name)
		require.NoError(t, err)
		assert.True(t, a.RequiresSudo(), name)
	}

	_, err = r.Get("yarn")
	var unknown *UnknownToolError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "yarn", unknown.Name)
	assert.Equal(t, SupportedTools, unknown.Supported)
	assert.Equal(t, "unsupported tool 'yarn'. Available: pip, npm, docker, go, cargo, brew, apt", err.Error())
}
