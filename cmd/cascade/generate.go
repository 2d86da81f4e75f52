package main

import (
	"fmt"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/fine-structures/coralia/libcascade"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

type generateOpts struct {
	terms       int
	index       int
	outPath     string
	sep         string
	catalogPath string
	name        string
}

func (a *app) newGenerateCmd() *cobra.Command {
	opts := generateOpts{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the first N terms, or the single term at an index",
		Example: `  cascade generate --terms 100 --out c100.txt
  cascade generate --index 41
  cascade generate --terms 500 --catalog ./catalog --name c500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("index") {
				return a.runTerm(cmd, opts)
			}
			return a.runGenerate(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.terms, "terms", "n", 10, "number of terms to generate")
	cmd.Flags().IntVarP(&opts.index, "index", "i", 0, "print only the term at this zero-based index")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.sep, "sep", "newline", `term separator: "newline" or "comma"`)
	cmd.Flags().StringVar(&opts.catalogPath, "catalog", "", "also store the sequence in this catalog dir")
	cmd.Flags().StringVar(&opts.name, "name", "", "sequence name in the catalog (default c<terms>)")
	cmd.MarkFlagsMutuallyExclusive("terms", "index")
	cmd.MarkFlagsMutuallyExclusive("index", "catalog")
	return cmd
}

func parseSep(sep string) (gocascade.PrintOpts, error) {
	switch sep {
	case "newline", "\n", `\n`:
		return gocascade.PrintOpts{Sep: "\n"}, nil
	case "comma", ",":
		return gocascade.PrintOpts{Sep: ","}, nil
	}
	return gocascade.PrintOpts{}, errors.Wrapf(gocascade.ErrInvalidArgument, "unknown separator %q", sep)
}

func (a *app) runTerm(cmd *cobra.Command, opts generateOpts) error {
	term, err := a.cascade.Term(opts.index)
	if err != nil {
		return err
	}
	return a.emit(cmd, opts, gocascade.Sequence{term})
}

func (a *app) runGenerate(cmd *cobra.Command, opts generateOpts) error {
	seq, err := a.cascade.Generate(opts.terms)
	if err != nil {
		return err
	}

	if opts.catalogPath != "" {
		name := opts.name
		if name == "" {
			name = fmt.Sprintf("c%d", opts.terms)
		}
		cat, err := openCatalog(opts.catalogPath, false)
		if err != nil {
			return err
		}
		runID, err := cat.PutSequence(name, seq)
		if closeErr := cat.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		klog.Infof("stored %d terms as %q (run %v)", len(seq), name, runID)
	}

	return a.emit(cmd, opts, seq)
}

func (a *app) emit(cmd *cobra.Command, opts generateOpts, seq gocascade.Sequence) error {
	printOpts, err := parseSep(opts.sep)
	if err != nil {
		return err
	}
	if opts.outPath != "" {
		if err = libcascade.WriteSequenceFile(opts.outPath, seq, printOpts); err != nil {
			return err
		}
		klog.Infof("wrote %d terms to %s", len(seq), opts.outPath)
		return nil
	}
	return libcascade.WriteSequence(cmd.OutOrStdout(), seq, printOpts)
}
