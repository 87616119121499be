package engine

import (
	"context"

	"github.com/johnthesmith/cicd/internal/config"
	"github.com/johnthesmith/cicd/internal/fob"
	"github.com/johnthesmith/cicd/internal/logger"
	"github.com/johnthesmith/cicd/internal/mode"
	"github.com/johnthesmith/cicd/internal/model"
	"github.com/johnthesmith/cicd/internal/shell"
)

// ExecutionContext holds what a run needs besides the pipeline file.
type ExecutionContext struct {
	Config *config.Config
	// Mode overrides the mode of the file when set.
	Mode mode.Mode
	// Root overrides the root of the file when set.
	Root string
	// FobFile overrides the fob file of the file when set.
	FobFile string
	// Overrides are applied after the file parameters.
	Overrides map[string]string
	Runner    shell.Runner
	Fobs      fob.Store
	Logger    *logger.Logger
	Context   context.Context

	// OnStepStart and OnStepDone observe the run. Both are optional.
	OnStepStart func(index int, step *config.Step)
	OnStepDone  func(result model.StepResult)
}
