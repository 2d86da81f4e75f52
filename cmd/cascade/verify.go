package main

import (
	"fmt"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/fine-structures/coralia/libcascade"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type verifyOpts struct {
	terms          int
	inPath         string
	catalogPath    string
	name           string
	verbose        bool
	skipMinimality bool
}

func (a *app) newVerifyCmd() *cobra.Command {
	opts := verifyOpts{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check injectivity, coverage, cascade validity, and minimality of a sequence",
		Long: `verify runs every property check over a generated sequence, a sequence file, or a
sequence stored in a catalog.  All checks run even when an earlier one fails.

Exits with status 0 if every check passes and 1 otherwise.`,
		Example: `  cascade verify --terms 1000
  cascade verify --input c100.txt --verbose
  cascade verify --catalog ./catalog --name c500 --skip-minimality`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.terms, "terms", "n", 100, "generate and verify this many terms")
	cmd.Flags().StringVarP(&opts.inPath, "input", "f", "", "verify the sequence in this file")
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "verify a sequence stored in this catalog dir (see --name)")
	cmd.Flags().StringVar(&opts.name, "name", "", "sequence name in the catalog")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "print every check result")
	cmd.Flags().BoolVar(&opts.skipMinimality, "skip-minimality", false, "skip the O(len*max) minimality check")
	cmd.MarkFlagsMutuallyExclusive("terms", "input", "catalog")
	cmd.MarkFlagsRequiredTogether("catalog", "name")
	return cmd
}

func (a *app) loadVerifyTarget(opts verifyOpts) (gocascade.Sequence, string, error) {
	switch {
	case opts.inPath != "":
		seq, err := libcascade.ReadSequenceFile(opts.inPath)
		return seq, opts.inPath, err

	case opts.catalogPath != "":
		cat, err := openCatalog(opts.catalogPath, true)
		if err != nil {
			return nil, "", err
		}
		defer cat.Close()
		rec, err := cat.GetSequence(opts.name)
		return rec.Terms, fmt.Sprintf("%s (run %v)", opts.name, rec.RunID), err

	default:
		seq, err := a.cascade.Generate(opts.terms)
		return seq, fmt.Sprintf("generated %d terms", opts.terms), err
	}
}

func (a *app) runVerify(cmd *cobra.Command, opts verifyOpts) error {
	seq, desc, err := a.loadVerifyTarget(opts)
	if err != nil {
		return err
	}

	report := a.cascade.VerifyAll(seq, gocascade.VerifyOpts{
		SkipMinimality: opts.skipMinimality,
	})

	out := cmd.OutOrStdout()
	if opts.verbose {
		fmt.Fprintf(out, "verifying %s: %d terms, max %d\n", desc, len(seq), seq.Max())
		fmt.Fprint(out, libcascade.FormatReport(report))
	}

	if !report.Passed {
		for _, res := range report.Checks {
			if !res.Passed && !opts.verbose {
				fmt.Fprintf(out, "FAIL  %-12s %s\n", res.Name, res.Message)
			}
		}
		return errors.Wrap(gocascade.ErrVerifyFailed, desc)
	}
	if !opts.verbose {
		fmt.Fprintf(out, "all %d checks passed\n", len(report.Checks))
	}
	return nil
}
