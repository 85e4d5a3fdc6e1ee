// Package cmd implements the bcrun command line interface
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	// Link agents and environments
	_ "github.com/samuelfneumann/bcrunner/agent/bc"
	_ "github.com/samuelfneumann/bcrunner/agent/bcmle"
	_ "github.com/samuelfneumann/bcrunner/environment/gym"
	_ "github.com/samuelfneumann/bcrunner/environment/pendulum"
)

// RootCommand returns the bcrun command
func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "bcrun",
		Short:         "Train behaviour cloning agents from offline datasets",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.AddCommand(
		RunCommand(),
		CollectCommand(),
		SummarizeCommand(),
		PlotCommand(),
		ListCommand(),
	)

	return cmd
}

// interruptible returns a context which is cancelled on an interrupt
// from the OS, and a function which must be called once the command
// is done
func interruptible() (context.Context, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)

	doneCh := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sigCh:
		case <-doneCh:
		}
		signal.Stop(sigCh)
		cancel()
	}()

	return ctx, func() { close(doneCh) }
}
