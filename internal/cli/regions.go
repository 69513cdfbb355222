// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/argraph/acg"
)

// RegionsOptions holds flags for the regions command.
type RegionsOptions struct {
	Loci        []string
	Informative bool
}

// NewRegionsCommand creates the regions command.
func NewRegionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegionsOptions{}

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Print the region table of each graph read from stdin",
		Long: `Regions reads extended Newick graphs, one per line, and prints for every
convertible locus the maximal spans sharing one set of active conversions.
Conversions are listed by their global index.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRegions(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Loci, "locus", "l", nil, "locus as id:len[:circular], repeatable")
	cmd.Flags().BoolVar(&opts.Informative, "informative", false, "skip conversions with no affected sites")

	return cmd
}

func runRegions(rootOpts *RootOptions, opts *RegionsOptions, cmd *cobra.Command) error {
	log := rootOpts.logger(cmd.ErrOrStderr())
	loci, err := parseLocusFlags(opts.Loci)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	err = eachGraph(cmd.InOrStdin(), loci, func(line int, g *acg.Graph) error {
		log.Debug("graph", "line", line, "conversions", g.TotalConvCount())
		fmt.Fprintf(tw, "# graph %d\n", line)
		fmt.Fprintln(tw, "locus\tleft\tright\tsites\tconversions")
		for _, l := range g.ConvertibleLoci() {
			regions := g.Regions(l)
			if opts.Informative {
				regions = g.InformativeRegions(l)
			}
			for _, r := range regions {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", l.ID(), r.Left, r.Right, r.Len(), activeList(g, r))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return tw.Flush()
}

func activeList(g *acg.Graph, r acg.Region) string {
	if r.IsClonalFrame() {
		return "-"
	}
	ids := make([]string, len(r.Active))
	for i, c := range r.Active {
		ids[i] = strconv.Itoa(g.ConversionIndex(c))
	}

	return strings.Join(ids, ",")
}
