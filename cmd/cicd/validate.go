package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnthesmith/cicd/internal/config"
	"github.com/johnthesmith/cicd/internal/validation"
)

func newValidateCmd(root *rootFlags) *cobra.Command {
	var (
		configPath string
		preflight  bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse and validate a pipeline file without running it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(configPath); err != nil {
				return err
			}
			cfg, err := config.ParseConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d steps, configuration valid\n", cfg.Name, len(cfg.Steps))
			if !preflight {
				return nil
			}

			m, err := root.runMode()
			if err != nil {
				return err
			}
			results, err := validation.Run(cmd.Context(), validation.Plan(cfg, displayMode(m, cfg.Mode)))
			for _, r := range results {
				mark := "✓"
				if !r.Passed {
					mark = "✗"
				}
				fmt.Fprintf(out, "  %s %s\n", mark, r.Message)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to pipeline file")
	cmd.Flags().BoolVar(&preflight, "preflight", false, "Also check that the tools the pipeline needs are installed")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
