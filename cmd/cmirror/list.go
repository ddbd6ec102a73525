package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dishar7753/cmirror/internal/mirror"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <tool>",
		Short: "List the known mirrors of a tool",
		Example: `  cmirror list pip
  cmirror list apt`,
		Args: cobra.ExactArgs(1),
		RunE: listRun,
	}

	return cmd
}

func listRun(cmd *cobra.Command, args []string) error {
	a, err := lookupAdapter(args[0])
	if err != nil {
		return err
	}

	current, err := a.CurrentSource(commandContext(cmd))
	if err != nil {
		slog.Default().Warn("failed to read current source", "tool", a.Name(), "error", err)
		current = ""
	}

	candidates := a.Candidates()
	if len(candidates) == 0 {
		fmt.Printf("No mirrors known for %s\n", a.Name())
		return nil
	}

	fmt.Printf("  %-16s %s\n", "Mirror", "URL")
	fmt.Println(strings.Repeat("-", 70))
	for _, m := range candidates {
		marker := " "
		if current != "" && mirror.SameURL(m.URL, current) {
			marker = "*"
		}
		fmt.Printf("%s %-16s %s\n", marker, m.Name, m.URL)
	}

	return nil
}
