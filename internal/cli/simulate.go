// SPDX-License-Identifier: MIT

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/argraph/config"
	"github.com/katalvlaran/argraph/draw"
	"github.com/katalvlaran/argraph/newick"
	"github.com/katalvlaran/argraph/sim"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	Config     string
	Out        string
	Replicates int
	Workers    int
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate conversion graphs from a YAML configuration",
		Long: `Simulate writes one extended Newick line per replicate.

Replicate i draws from stream i of the configured seed, so the output does
not depend on --workers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context(), rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "YAML configuration file")
	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().IntVarP(&opts.Replicates, "replicates", "n", 0, "override the configured replicate count")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "j", runtime.GOMAXPROCS(0), "concurrent replicates")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runSimulate(ctx context.Context, rootOpts *RootOptions, opts *SimulateOptions, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	log := rootOpts.logger(cmd.ErrOrStderr()).With("run", uuid.NewString())

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if opts.Replicates > 0 {
		cfg.Replicates = opts.Replicates
	}
	if opts.Workers < 1 {
		return fmt.Errorf("--workers %d is below 1", opts.Workers)
	}

	loci, err := cfg.BuildLoci()
	if err != nil {
		return err
	}
	simOpts, err := cfg.SimOptions(loci)
	if err != nil {
		return err
	}
	taxa := cfg.BuildTaxa()

	base := draw.New(cfg.Seed)
	streams := make([]*draw.Source, cfg.Replicates)
	for i := range streams {
		streams[i] = base.Derive(uint64(i))
	}

	log.Info("simulating", "config", opts.Config, "replicates", cfg.Replicates,
		"workers", opts.Workers, "seed", cfg.Seed)

	lines := make([]string, cfg.Replicates)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range lines {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			arg, err := sim.Simulate(taxa, loci, streams[i], simOpts...)
			if err != nil {
				return fmt.Errorf("replicate %d: %w", i, err)
			}
			lines[i] = newick.Write(arg)
			log.Debug("replicate done", "replicate", i,
				"conversions", arg.TotalConvCount(), "useless", arg.UselessConvCount())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.Out == "" {
		if err := writeLines(cmd.OutOrStdout(), lines); err != nil {
			return err
		}
	} else if err := writeFile(opts.Out, lines); err != nil {
		return err
	}
	log.Info("done", "replicates", len(lines))

	return nil
}

// writeFile writes lines to a new file at path, close error included.
func writeFile(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeLines(f, lines); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

func writeLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}
