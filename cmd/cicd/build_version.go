package main

import (
	"fmt"

	"github.com/spf13/cobra"

	buildversion "github.com/johnthesmith/cicd/internal/version"
)

func newBuildVersionCmd() *cobra.Command {
	var (
		file string
		inc  bool
	)

	cmd := &cobra.Command{
		Use:   "build-version",
		Short: "Show or increment a build version file",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := buildversion.File{Path: file}
			v := f.Read()
			if inc {
				var err error
				if v, err = f.Inc(); err != nil {
					return fmt.Errorf("increment %s: %w", file, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "version.json", "Path to the version file")
	cmd.Flags().BoolVar(&inc, "inc", false, "Increment the build number before printing")

	return cmd
}
