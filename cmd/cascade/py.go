package main

import (
	"fmt"
	"time"

	"github.com/fine-structures/coralia/pycascade"
	"github.com/go-python/gpython/py"
	"github.com/go-python/gpython/repl"
	"github.com/go-python/gpython/repl/cli"
	"github.com/spf13/cobra"

	_ "github.com/go-python/gpython/stdlib"
)

func newPyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "py [script.py]",
		Short: "Run a python script (or a REPL) with the _pycascade module importable",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathname := ""
			if len(args) > 0 {
				pathname = args[0]
			}
			return runPython(cmd, pathname)
		},
	}
}

func runPython(cmd *cobra.Command, pathname string) error {
	ctx := py.NewContext(py.DefaultContextOpts())

	var err error
	if len(pathname) == 0 {
		replCtx := repl.New(ctx)
		cli.RunREPL(replCtx)
	} else {
		out := cmd.OutOrStdout()
		startTime := time.Now()
		fmt.Fprintf(out, "<<<>>>   executing '%s'   <<<>>>\n", pathname)

		_, err = pycascade.RunScript(ctx, pathname)
		if err == nil {
			fmt.Fprintf(out, "<<<>>>   execution complete: %v   <<<>>>\n", time.Since(startTime))
		}
	}

	ctx.Close()
	<-ctx.Done()

	if err != nil {
		py.TracebackDump(err)
	}
	return err
}
