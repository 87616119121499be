package main

import (
	"github.com/spf13/cobra"

	"github.com/johnthesmith/cicd/internal/mode"
)

type rootFlags struct {
	verbose bool
	mode    string
}

// runMode returns the --mode override, or "" when the file decides.
func (f *rootFlags) runMode() (mode.Mode, error) {
	if f.mode == "" {
		return "", nil
	}
	return mode.Parse(f.mode)
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "cicd",
		Short:         "cicd builds and deploys projects from declarative pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVar(&flags.mode, "mode", "", "Override the pipeline mode (test, build or full)")

	cmd.AddCommand(newRunCmd(flags))
	cmd.AddCommand(newParamsCmd(flags))
	cmd.AddCommand(newValidateCmd(flags))
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newBuildVersionCmd())

	return cmd
}
