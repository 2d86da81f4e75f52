package main

import (
	"github.com/fine-structures/coralia/gocascade"
	"github.com/fine-structures/coralia/libcascade"
	"github.com/fine-structures/coralia/libcascade/catalog"
	"github.com/spf13/cobra"
)

// app is the state shared by all subcommands, set up before any of them run.
type app struct {
	configPath string
	params     gocascade.Params
	cascade    *libcascade.Cascade
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cascade",
		Short: "Generate, verify, and analyze the cascade-triple sequence C(n)",
		Long: `cascade builds C(n) greedily: C(0) = 1 and each following term is the smallest
unused value b such that (C(n-1), b, n) is a valid cascade triple.

A triple (a, b, n) is valid when a != b, max(a, b) <= 2n+2, and
|a-b| <= ceil(sqrt(n+1)) + δ, where δ = floor(log2(min(a,b)+1)) if 3 divides a+b.

The constants can be changed with a YAML params file (--config).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadParams()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML cascade params file (bound_scale, bound_offset, correction_modulus, search_factor)")

	root.AddCommand(
		a.newGenerateCmd(),
		a.newVerifyCmd(),
		a.newAnalyzeCmd(),
		newPyCmd(),
	)
	return root
}

func (a *app) loadParams() error {
	params, err := gocascade.LoadParams(a.configPath)
	if err != nil {
		return err
	}
	a.params = params
	a.cascade, err = libcascade.NewCascade(params)
	return err
}

func openCatalog(pathname string, readOnly bool) (*catalog.Catalog, error) {
	return catalog.OpenCatalog(gocascade.CatalogOpts{
		DbPathName: pathname,
		ReadOnly:   readOnly,
	})
}
