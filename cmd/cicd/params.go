package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johnthesmith/cicd/internal/config"
	"github.com/johnthesmith/cicd/internal/engine"
)

type paramsOptions struct {
	ConfigPath string
	Root       string
	FobFile    string
	Sets       []string
}

func newParamsCmd(root *rootFlags) *cobra.Command {
	opts := paramsOptions{}

	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print every parameter of a pipeline with its resolved value",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}
			m, err := root.runMode()
			if err != nil {
				return err
			}

			cfg, err := config.ParseConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			overrides, err := parseSets(opts.Sets)
			if err != nil {
				return err
			}

			log, err := newLogger(cmd.ErrOrStderr(), root.verbose, false)
			if err != nil {
				return err
			}

			p, err := engine.Build(&engine.ExecutionContext{
				Config:    cfg,
				Mode:      m,
				Root:      opts.Root,
				FobFile:   opts.FobFile,
				Overrides: overrides,
				Logger:    log,
				Context:   cmd.Context(),
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, kv := range p.Resolved() {
				if kv.Items != nil {
					fmt.Fprintf(out, "%s = [%s]\n", kv.Key, strings.Join(kv.Items, ", "))
					continue
				}
				fmt.Fprintf(out, "%s = %s\n", kv.Key, kv.Value)
			}
			if !p.IsOk() {
				return p.Err()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to pipeline file")
	cmd.Flags().StringVar(&opts.Root, "root", "", "Root folder holding the files and deploy trees")
	cmd.Flags().StringVar(&opts.FobFile, "fob-file", "", "Path to the fob file")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "Override a parameter (KEY=VALUE), repeatable")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}
