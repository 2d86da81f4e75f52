package main

import (
	"bufio"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

func (a *app) newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Statistics over the unrestricted set of valid cascade triples",
	}
	cmd.AddCommand(
		a.newStatsCmd(),
		a.newSuccessorsCmd(),
		a.newTriplesCmd(),
	)
	return cmd
}

func (a *app) newStatsCmd() *cobra.Command {
	var maxN, workers int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Gap histogram, triples per index, and per-a successor counts for 1 <= n <= max-n",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxN < 1 {
				return errors.Wrapf(gocascade.ErrInvalidArgument, "--max-n must be >= 1 (got %d)", maxN)
			}

			var res *gocascade.AnalysisResult
			if workers == 1 {
				res = a.cascade.Analyze(maxN)
			} else {
				var err error
				res, err = a.cascade.AnalyzeParallel(cmd.Context(), maxN, workers)
				if err != nil {
					return err
				}
			}
			return writeAnalysis(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().IntVar(&maxN, "max-n", 20, "largest index to include")
	cmd.Flags().IntVar(&workers, "workers", 1, "indices tallied concurrently (0 uses every CPU)")
	return cmd
}

func writeAnalysis(out io.Writer, res *gocascade.AnalysisResult) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	pct := 0.0
	if res.TotalTriples > 0 {
		pct = 100 * float64(res.WithCorrection) / float64(res.TotalTriples)
	}
	fmt.Fprintf(tw, "triples through n=%d:\t%d\n", res.MaxN, res.TotalTriples)
	fmt.Fprintf(tw, "with correction:\t%d\t(%.1f%%)\n", res.WithCorrection, pct)

	fmt.Fprintf(tw, "\ngap\tcount\n")
	for _, bin := range res.Gaps {
		fmt.Fprintf(tw, "%d\t%d\n", bin.Key, bin.Count)
	}

	fmt.Fprintf(tw, "\nn\ttriples\n")
	for _, bin := range res.PerIndex {
		fmt.Fprintf(tw, "%d\t%d\n", bin.Key, bin.Count)
	}

	fmt.Fprintf(tw, "\na\tindices\tmin\tmax\tmean\n")
	for _, sum := range res.Successors {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%.2f\n", sum.A, sum.Indices, sum.Min, sum.Max, sum.Mean())
	}
	return tw.Flush()
}

func (a *app) newSuccessorsCmd() *cobra.Command {
	var prev, n, maxVal int

	cmd := &cobra.Command{
		Use:   "successors",
		Short: "List every b such that (a, b, n) is a valid triple",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var succ gocascade.Sequence
			for b := range a.cascade.Successors(prev, n, maxVal) {
				succ = append(succ, b)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "a=%d n=%d bound=%d: %d successors\n", prev, n, a.cascade.IndexBound(n), len(succ))
			for _, b := range succ {
				fmt.Fprintf(out, "%d\tgap %d\tthreshold %d\n", b, gocascade.Triple{A: prev, B: b, N: n}.Gap(), a.cascade.Threshold(prev, b, n))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&prev, "a", 1, "previous term")
	cmd.Flags().IntVar(&n, "n", 1, "position being filled")
	cmd.Flags().IntVar(&maxVal, "max", 0, "largest candidate (default the index bound 2n+2)")
	return cmd
}

func (a *app) newTriplesCmd() *cobra.Command {
	var (
		maxN        int
		countOnly   bool
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "triples",
		Short: "Enumerate (or count) every valid triple for 1 <= n <= max-n",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if catalogPath != "" {
				return a.addTriplesToCatalog(out, catalogPath, maxN)
			}

			if countOnly {
				fmt.Fprintln(out, a.cascade.CountTriples(maxN))
				return nil
			}

			w := bufio.NewWriter(out)
			fmt.Fprintln(w, "n,a,b,gap")
			for t := range a.cascade.AllTriples(maxN) {
				t.WriteAsString(w)
				w.WriteByte('\n')
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&maxN, "max-n", 5, "largest index to enumerate")
	cmd.Flags().BoolVar(&countOnly, "count", false, "print only the number of triples")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "add the triples to the catalog in this dir")
	cmd.MarkFlagsMutuallyExclusive("count", "catalog")
	return cmd
}

func (a *app) addTriplesToCatalog(out io.Writer, catalogPath string, maxN int) (err error) {
	cat, err := openCatalog(catalogPath, false)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := cat.Close(); err == nil {
			err = closeErr
		}
	}()

	total, added := 0, 0
	for t := range a.cascade.AllTriples(maxN) {
		total++
		wasAdded, err := cat.TryAddTriple(t)
		if err != nil {
			return err
		}
		if wasAdded {
			added++
		}
	}
	klog.Infof("catalog %s: %d of %d triples were new", catalogPath, added, total)

	fmt.Fprintf(out, "n\ttriples in catalog\n")
	for n := 1; n <= maxN; n++ {
		fmt.Fprintf(out, "%d\t%d\n", n, cat.NumTriples(n))
	}
	return nil
}
