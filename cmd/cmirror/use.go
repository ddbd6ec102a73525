package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dishar7753/cmirror/internal/mirror"
	"github.com/dishar7753/cmirror/internal/source"
	"github.com/dishar7753/cmirror/internal/store"
	"github.com/spf13/cobra"
)

var useFastest bool

func newUseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <tool> [mirror]",
		Short: "Switch a tool to a mirror",
		Long: `Switch a tool to the named mirror (case-insensitive), or benchmark all
known mirrors and pick the fastest with --fastest. The previous config file is
backed up first.

apt and docker write system-wide files and usually need sudo.`,
		Example: `  cmirror use pip Tsinghua
  cmirror use npm --fastest
  sudo cmirror use apt USTC`,
		Args: cobra.RangeArgs(1, 2),
		RunE: useRun,
	}

	cmd.Flags().BoolVarP(&useFastest, "fastest", "f", false, "benchmark and switch to the fastest mirror")

	return cmd
}

func useRun(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := lookupAdapter(args[0])
	if err != nil {
		return err
	}

	target, err := selectMirror(cmd, a, args[1:])
	if err != nil {
		return err
	}

	if a.RequiresSudo() && os.Geteuid() > 0 {
		fmt.Fprintf(os.Stderr, "Note: %s config is system-wide (%s); you may need to run this with sudo.\n", a.Name(), a.ConfigPath())
	}

	previous, err := a.CurrentSource(ctx)
	if err != nil {
		slog.Default().Debug("failed to read previous source", "tool", a.Name(), "error", err)
		previous = ""
	}

	applyErr := a.Apply(ctx, target)
	recordChange(&store.SourceChange{
		Tool:        a.Name(),
		Action:      "use",
		MirrorName:  target.Name,
		URL:         target.URL,
		PreviousURL: previous,
		ConfigPath:  a.ConfigPath(),
	}, applyErr)
	if applyErr != nil {
		return fmt.Errorf("switching %s to %s: %w", a.Name(), target.Name, applyErr)
	}

	if source.FileBacked(a) {
		fmt.Printf("Switched %s to %s (%s)\n", a.Name(), target.Name, target.URL)
		fmt.Printf("Config: %s\n", a.ConfigPath())
	}
	if a.Name() == "docker" {
		fmt.Println("Restart the Docker daemon for the change to take effect.")
	}

	return nil
}

// selectMirror resolves the mirror named in args, or benchmarks for the
// fastest one when --fastest is set
func selectMirror(cmd *cobra.Command, a source.Adapter, args []string) (mirror.Mirror, error) {
	candidates := a.Candidates()

	if useFastest {
		if len(args) > 0 {
			return mirror.Mirror{}, fmt.Errorf("a mirror name cannot be combined with --fastest")
		}
		if len(candidates) == 0 {
			return mirror.Mirror{}, fmt.Errorf("no mirrors known for %s", a.Name())
		}
		fmt.Printf("Testing %d mirrors for %s...\n", len(candidates), a.Name())
		results := runBenchmark(commandContext(cmd), a.Name(), candidates)
		best, err := mirror.Fastest(results)
		if err != nil {
			return mirror.Mirror{}, err
		}
		fmt.Printf("Fastest: %s (%dms)\n", best.Mirror.Name, best.LatencyMs)
		return best.Mirror, nil
	}

	if len(args) == 0 {
		return mirror.Mirror{}, fmt.Errorf("specify a mirror name or use --fastest")
	}

	m, ok := mirror.FindByName(candidates, args[0])
	if !ok {
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}
		return mirror.Mirror{}, fmt.Errorf("unknown mirror '%s' for %s. Available: %s", args[0], a.Name(), strings.Join(names, ", "))
	}
	return m, nil
}

// recordChange stores a use or restore in history; failures are only logged
func recordChange(c *store.SourceChange, opErr error) {
	if globalStore == nil {
		return
	}
	c.Session = sessionID
	c.ChangedAt = time.Now()
	c.Status = "success"
	if opErr != nil {
		c.Status = "failed"
		c.ErrorMessage = opErr.Error()
	}
	if err := globalStore.RecordSourceChange(c); err != nil {
		slog.Default().Warn("failed to record source change", "tool", c.Tool, "error", err)
	}
}
