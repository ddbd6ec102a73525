package main

import (
	"fmt"

	"github.com/dishar7753/cmirror/internal/source"
	"github.com/dishar7753/cmirror/internal/store"
	"github.com/spf13/cobra"
)

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <tool>",
		Short: "Undo the last mirror switch",
		Long: `Restore a tool's config file from its most recent backup. Tools without
a config file fall back to their default: go unsets GOPROXY, and brew prints
the commands that unset its environment variables.`,
		Example: `  cmirror restore pip
  sudo cmirror restore docker`,
		Args: cobra.ExactArgs(1),
		RunE: restoreRun,
	}

	return cmd
}

func restoreRun(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	a, err := lookupAdapter(args[0])
	if err != nil {
		return err
	}

	restoreErr := a.Restore(ctx)
	recordChange(&store.SourceChange{
		Tool:       a.Name(),
		Action:     "restore",
		ConfigPath: a.ConfigPath(),
	}, restoreErr)
	if restoreErr != nil {
		return restoreErr
	}

	if source.FileBacked(a) {
		fmt.Printf("Restored %s from the latest backup (%s)\n", a.Name(), a.ConfigPath())
	} else if a.Name() == "go" {
		fmt.Println("Reset GOPROXY to the Go default.")
	}

	return nil
}
