package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fine-structures/coralia/gocascade"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

func main() {

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "0")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	root := newRootCmd()
	root.PersistentFlags().AddGoFlagSet(fset)

	err := root.Execute()
	klog.Flush()

	if err != nil {
		// a failed verification has already been reported
		if !errors.Is(err, gocascade.ErrVerifyFailed) {
			fmt.Fprintln(os.Stderr, "cascade:", err)
		}
		os.Exit(1)
	}
}
