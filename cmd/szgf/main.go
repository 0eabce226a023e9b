// Command szgf creates, formats, validates and exports SZGF guide files
// without running the editor server.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/meur/guideforge/internal/logger"
	"github.com/spf13/cobra"
)

// errProblems marks a run that reported problems it already printed.
var errProblems = errors.New("problems found")

type globalOptions struct {
	verbose bool
	timeout time.Duration
}

func (o *globalOptions) logger() *logger.Logger {
	if !o.verbose {
		return logger.Nop()
	}
	log, err := logger.New("development")
	if err != nil {
		return logger.Nop()
	}
	return log
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "szgf",
		Short:         "Work with SZGF character guide files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log network activity")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "timeout for schema and reference downloads")

	root.AddCommand(
		newNewCmd(opts),
		newFmtCmd(opts),
		newValidateCmd(opts),
		newExportCmd(opts),
		newRefdataCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errProblems) {
			fmt.Fprintln(os.Stderr, "szgf:", err)
		}
		os.Exit(1)
	}
}
