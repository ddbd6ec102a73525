package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dishar7753/cmirror/internal/mirror"
)

const (
	brewAPIDomainEnv    = "HOMEBREW_API_DOMAIN"
	brewBottleDomainEnv = "HOMEBREW_BOTTLE_DOMAIN"
)

// brewBottleDomains maps mirror hosts to their bottle mirror.
var brewBottleDomains = map[string]string{
	"mirrors.tuna.tsinghua.edu.cn": "https://mirrors.tuna.tsinghua.edu.cn/homebrew-bottles",
	"mirrors.ustc.edu.cn":          "https://mirrors.ustc.edu.cn/homebrew-bottles",
}

// Brew reads HOMEBREW_API_DOMAIN. Changes cannot be persisted from here, so
// Apply and Restore print the shell commands instead.
type Brew struct {
	getenv  func(string) string
	out     io.Writer
	catalog Catalog
}

// NewBrew creates the brew adapter.
func NewBrew(opts Options) *Brew {
	opts = opts.withDefaults()
	return &Brew{
		getenv:  opts.Getenv,
		out:     opts.Out,
		catalog: opts.Catalog,
	}
}

// Name returns "brew".
func (b *Brew) Name() string { return "brew" }

// RequiresSudo is false: nothing is written.
func (b *Brew) RequiresSudo() bool { return false }

// Candidates returns the Homebrew API mirrors from the catalog.
func (b *Brew) Candidates() []mirror.Mirror { return b.catalog.Lookup("brew") }

// ConfigPath names the environment variable rather than a file.
func (b *Brew) ConfigPath() string { return "env:" + brewAPIDomainEnv }

// CurrentSource returns HOMEBREW_API_DOMAIN from the environment, trimmed.
// Unset means none configured.
func (b *Brew) CurrentSource(ctx context.Context) (string, error) {
	return strings.TrimSpace(b.getenv(brewAPIDomainEnv)), nil
}

// Apply prints export lines for the mirror, plus HOMEBREW_BOTTLE_DOMAIN for
// hosts with a known bottle mirror. The user's environment is not changed.
func (b *Brew) Apply(ctx context.Context, m mirror.Mirror) error {
	if err := validateMirror(m); err != nil {
		return err
	}

	fmt.Fprintln(b.out, "Homebrew reads its mirror from the environment. Run:")
	fmt.Fprintln(b.out)
	fmt.Fprintf(b.out, "  export %s=%q\n", brewAPIDomainEnv, m.URL)
	for host, bottles := range brewBottleDomains {
		if strings.Contains(m.URL, host) {
			fmt.Fprintf(b.out, "  export %s=%q\n", brewBottleDomainEnv, bottles)
			break
		}
	}
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "Add these lines to your shell profile (~/.zshrc or ~/.bashrc) to make them permanent.")
	return nil
}

// Restore prints the commands that return brew to its default domains.
func (b *Brew) Restore(ctx context.Context) error {
	fmt.Fprintln(b.out, "To restore the default Homebrew source, run:")
	fmt.Fprintln(b.out)
	fmt.Fprintf(b.out, "  unset %s\n", brewAPIDomainEnv)
	fmt.Fprintf(b.out, "  unset %s\n", brewBottleDomainEnv)
	fmt.Fprintln(b.out)
	fmt.Fprintln(b.out, "and remove them from your shell profile.")
	return nil
}
