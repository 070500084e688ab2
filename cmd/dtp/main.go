package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"dtp/internal/cli"
	"dtp/internal/cli/commands"
	"dtp/internal/tasks"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "dtp",
		Short:         "Dual-environment test processor",
		Long:          `Runs a JavaScript test suite in a headless runtime and a headless browser at the same time, prints each environment's failures and fails when either environment does.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Flags are populated by cobra before the commands are wired
	var flags cli.Flags
	cmds := commands.NewCommands(&flags)
	cmds.Register(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	cmds.Sync()

	if err != nil {
		// Failed tests were already reported through the log sink
		if !errors.Is(err, tasks.ErrTestsFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
