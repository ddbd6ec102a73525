package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dishar7753/cmirror/internal/mirror"
	"github.com/dishar7753/cmirror/internal/source"
	"github.com/spf13/cobra"
)

var statusBackups bool

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [tool]",
		Short: "Show the mirror each tool is currently using",
		Long: `Show the currently configured source of one or all tools. Known mirrors
are shown by name, other URLs as Custom, and tools without a configured source
as Default.

Use --backups to also list the snapshots available to "cmirror restore".`,
		Example: `  cmirror status
  cmirror status pip
  cmirror status --backups`,
		Args: cobra.MaximumNArgs(1),
		RunE: statusRun,
	}

	cmd.Flags().BoolVar(&statusBackups, "backups", false, "list backup snapshots for file-based tools")

	return cmd
}

func statusRun(cmd *cobra.Command, args []string) error {
	log := slog.Default()
	ctx := commandContext(cmd)

	if globalRegistry == nil {
		return fmt.Errorf("adapters not initialized")
	}

	tools := globalRegistry.Names()
	if len(args) == 1 {
		a, err := lookupAdapter(args[0])
		if err != nil {
			return err
		}
		tools = []string{a.Name()}
	}

	fmt.Printf("%-8s %-12s %s\n", "Tool", "Source", "URL")
	fmt.Println(strings.Repeat("-", 70))

	for _, name := range tools {
		a, err := globalRegistry.Get(name)
		if err != nil {
			return err
		}

		current, err := a.CurrentSource(ctx)
		if err != nil {
			log.Warn("failed to read current source", "tool", name, "error", err)
			current = ""
		}

		url := current
		if url == "" {
			url = "-"
		}
		fmt.Printf("%-8s %-12s %s\n", name, describeSource(a.Candidates(), current), url)

		if statusBackups {
			printSnapshots(a)
		}
	}

	return nil
}

// describeSource labels url with the matching candidate name
func describeSource(candidates []mirror.Mirror, url string) string {
	if url == "" {
		return "Default"
	}
	if m, ok := mirror.FindByURL(candidates, url); ok {
		return m.Name
	}
	return "Custom"
}

func printSnapshots(a source.Adapter) {
	if !source.FileBacked(a) || globalBackups == nil {
		fmt.Printf("         backups: not applicable (%s)\n", a.ConfigPath())
		return
	}

	snapshots, err := globalBackups.List(a.ConfigPath())
	if err != nil {
		slog.Default().Warn("failed to list backups", "tool", a.Name(), "error", err)
		return
	}
	if len(snapshots) == 0 {
		fmt.Println("         backups: none")
		return
	}
	for _, s := range snapshots {
		fmt.Printf("         backup:  %s (%s)\n", s.Path, s.CreatedAt().Format("2006-01-02 15:04:05"))
	}
}
