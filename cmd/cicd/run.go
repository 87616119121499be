package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/johnthesmith/cicd/internal/config"
	"github.com/johnthesmith/cicd/internal/engine"
	"github.com/johnthesmith/cicd/internal/mode"
	"github.com/johnthesmith/cicd/internal/model"
	"github.com/johnthesmith/cicd/internal/shell"
	"github.com/johnthesmith/cicd/internal/tui"
	"github.com/johnthesmith/cicd/internal/validation"
)

type runOptions struct {
	ConfigPath     string
	Root           string
	FobFile        string
	Sets           []string
	Mode           mode.Mode
	Verbose        bool
	NonInteractive bool
	Out            io.Writer
	ErrOut         io.Writer
}

var runCmdRunner = runPipeline

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := root.runMode()
			if err != nil {
				return err
			}
			opts.Mode = m
			opts.Verbose = root.verbose
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))
			opts.Out = cmd.OutOrStdout()
			opts.ErrOut = cmd.ErrOrStderr()

			if err := validateConfigPath(opts.ConfigPath); err != nil {
				return err
			}

			return runCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to pipeline file")
	cmd.Flags().StringVar(&opts.Root, "root", "", "Root folder holding the files and deploy trees")
	cmd.Flags().StringVar(&opts.FobFile, "fob-file", "", "Path to the fob file")
	cmd.Flags().StringArrayVar(&opts.Sets, "set", nil, "Override a parameter (KEY=VALUE), repeatable")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runPipeline(opts runOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	overrides, err := parseSets(opts.Sets)
	if err != nil {
		return err
	}

	// Logs and tool output go to stderr so the progress view owns stdout.
	log, err := newLogger(opts.ErrOut, opts.Verbose, !opts.NonInteractive)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	runMode := displayMode(opts.Mode, cfg.Mode)
	if _, err := validation.Run(ctx, validation.Plan(cfg, runMode)); err != nil {
		return err
	}

	runner := &shell.ProcessRunner{}
	if opts.NonInteractive {
		runner.Stdout = opts.ErrOut
		runner.Stderr = opts.ErrOut
	}

	execCtx := &engine.ExecutionContext{
		Config:    cfg,
		Mode:      opts.Mode,
		Root:      opts.Root,
		FobFile:   opts.FobFile,
		Overrides: overrides,
		Runner:    runner,
		Logger:    log,
		Context:   ctx,
	}

	state := tui.NewModel(cfg, runMode, opts.NonInteractive)
	interactive := !opts.NonInteractive

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(state, tea.WithOutput(opts.Out))
		go func() {
			_, programErr = program.Run()
			// The program owns the terminal, so Ctrl+C arrives as a key press.
			cancel()
			close(done)
		}()
	}

	execCtx.OnStepStart = func(index int, _ *config.Step) {
		dispatchTuiMessage(interactive, program, &state, tui.StepStartMsg{Index: index})
	}
	execCtx.OnStepDone = func(res model.StepResult) {
		dispatchTuiMessage(interactive, program, &state, tui.StepCompleteMsg{Result: res})
	}

	_, results, execErr := engine.Execute(execCtx)
	dispatchTuiMessage(interactive, program, &state, tui.RunDoneMsg{Err: execErr})

	if interactive {
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		fmt.Fprintln(opts.Out, state.View())
	}

	summary := model.Summarize(results)
	log.Info("run finished",
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)

	return execErr
}

func dispatchTuiMessage(interactive bool, program *tea.Program, state *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := state.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*state = m
	}
}

// displayMode mirrors the engine's choice so the header shows the mode the
// run actually uses.
func displayMode(override mode.Mode, fromFile string) mode.Mode {
	if override != "" {
		return override
	}
	if m, err := mode.Parse(fromFile); err == nil {
		return m
	}
	return mode.Test
}
