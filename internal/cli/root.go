// SPDX-License-Identifier: MIT

// Package cli holds the argsim command tree.
package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the root command for argsim.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "argsim",
		Short: "Simulate and inspect bacterial ancestral conversion graphs",
		Long: `argsim simulates ancestral conversion graphs under the ClonalOrigin model
and reads or writes them as extended Newick, one graph per line.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(NewSimulateCommand(opts))
	cmd.AddCommand(NewRegionsCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// logger returns a text logger on w; --verbose lowers the level to debug.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
