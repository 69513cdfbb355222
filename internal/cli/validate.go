// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/argraph/acg"
)

// ErrInvalidGraph is returned when at least one input graph is invalid.
var ErrInvalidGraph = errors.New("cli: invalid graph")

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	Loci []string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check graphs read from stdin",
		Long: `Validate parses extended Newick graphs, one per line, and checks every
conversion against its locus and the clonal frame. It prints one status
line per graph and fails if any graph is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Loci, "locus", "l", nil, "locus as id:len[:circular], repeatable")

	return cmd
}

func runValidate(rootOpts *RootOptions, opts *ValidateOptions, cmd *cobra.Command) error {
	log := rootOpts.logger(cmd.ErrOrStderr())
	loci, err := parseLocusFlags(opts.Loci)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	bad := 0
	err = eachGraph(cmd.InOrStdin(), loci, func(line int, g *acg.Graph) error {
		if g.IsInvalid() {
			bad++
			fmt.Fprintf(out, "%d\tinvalid\n", line)
			for _, c := range g.AllConversions() {
				if err := g.CheckConversion(c); err != nil {
					log.Debug("conversion", "line", line, "conversion", c.String(), "error", err)
				}
			}
			return nil
		}
		fmt.Fprintf(out, "%d\tok\tconversions=%d\tuseless=%d\n", line, g.TotalConvCount(), g.UselessConvCount())
		return nil
	})
	if err != nil {
		return err
	}
	if bad > 0 {
		return fmt.Errorf("%d graph(s): %w", bad, ErrInvalidGraph)
	}

	return nil
}
