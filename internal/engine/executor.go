package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/johnthesmith/cicd/internal/logger"
	"github.com/johnthesmith/cicd/internal/mode"
	"github.com/johnthesmith/cicd/internal/model"
	"github.com/johnthesmith/cicd/internal/params"
	"github.com/johnthesmith/cicd/internal/pipeline"
	cicderrors "github.com/johnthesmith/cicd/pkg/errors"
)

// Build creates and seeds the pipeline described by execCtx without running
// any step. A fob named by the file is activated here.
func Build(execCtx *ExecutionContext) (*pipeline.Pipeline, error) {
	if execCtx == nil {
		return nil, errors.New("execution context is nil")
	}
	cfg := execCtx.Config
	if cfg == nil {
		return nil, errors.New("execution context config is nil")
	}

	m, err := resolveMode(execCtx.Mode, cfg.Mode)
	if err != nil {
		return nil, err
	}

	ctx := execCtx.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := execCtx.Logger
	if log == nil {
		log = logger.Nop()
	}

	root := cfg.Root
	if execCtx.Root != "" {
		root = execCtx.Root
	}

	p := pipeline.New(ctx, pipeline.Options{
		Mode:   m,
		Runner: execCtx.Runner,
		Logger: log.With("pipeline", cfg.Name),
		Fobs:   execCtx.Fobs,
	}).Prepare(root)

	values := make(map[string]params.Value, len(cfg.Params))
	for key, raw := range cfg.Params {
		values[key] = params.Of(raw)
	}
	p.AddParams(values)

	fobFile := cfg.FobFile
	if execCtx.FobFile != "" {
		fobFile = execCtx.FobFile
	}
	if fobFile != "" {
		p.SetParam("FOB_FILE", params.String(fobFile))
	}

	if r := cfg.Remote; r != nil {
		p.SetRemote(r.User, r.Host, r.Port, r.Key)
	}

	overrides := make(map[string]params.Value, len(execCtx.Overrides))
	for key, value := range execCtx.Overrides {
		overrides[key] = params.String(value)
	}
	p.AddParams(overrides)

	if cfg.Fob != "" {
		p.ActivateFob(cfg.Fob)
	}
	return p, nil
}

// Execute builds the pipeline and runs every step in order. Once a step
// fails the remaining ones are recorded as skipped. The returned error wraps
// the failing Status in a StepError.
func Execute(execCtx *ExecutionContext) (*pipeline.Pipeline, []model.StepResult, error) {
	p, err := Build(execCtx)
	if err != nil {
		return nil, nil, err
	}
	if !p.IsOk() {
		return p, nil, cicderrors.NewStepError(-1, "prepare", p.Err())
	}

	log := execCtx.Logger
	if log == nil {
		log = logger.Nop()
	}

	steps := execCtx.Config.Steps
	results := make([]model.StepResult, 0, len(steps))
	var failed error

	for i := range steps {
		step := &steps[i]
		res := model.StepResult{Index: i, StepID: step.ID, Op: step.Op, Timestamp: time.Now()}

		if !p.IsOk() {
			res.Status = model.StatusSkipped
			results = append(results, res)
			execCtx.notifyDone(res)
			continue
		}

		handler, ok := handlers[step.Op]
		if !ok {
			return p, results, cicderrors.NewStepError(i, step.Op, fmt.Errorf("unknown operation %q", step.Op))
		}

		stepLog := log.With("step", i, "op", step.Op)
		if step.ID != "" {
			stepLog = stepLog.With("id", step.ID)
		}
		stepLog.Debug("step started")
		if execCtx.OnStepStart != nil {
			execCtx.OnStepStart(i, step)
		}

		start := time.Now()
		handler(p, step)
		res.Duration = time.Since(start)

		if p.IsOk() {
			res.Status = model.StatusSuccess
			stepLog.Debug("step finished", "duration", res.Duration.String())
		} else {
			outcome := p.Result()
			res.Status = model.StatusFailed
			res.Code = outcome.Code
			res.Context = outcome.Context
			failed = cicderrors.NewStepError(i, step.Op, p.Err())
			stepLog.Error(failed, "step failed", "code", string(outcome.Code), "category", outcome.Code.Category())
		}
		results = append(results, res)
		execCtx.notifyDone(res)
	}

	return p, results, failed
}

func (c *ExecutionContext) notifyDone(res model.StepResult) {
	if c.OnStepDone != nil {
		c.OnStepDone(res)
	}
}

// Ops returns the operations the engine can run, sorted.
func Ops() []string {
	out := make([]string, 0, len(handlers))
	for op := range handlers {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

func resolveMode(override mode.Mode, fromFile string) (mode.Mode, error) {
	if override != "" {
		return override, nil
	}
	if fromFile == "" {
		return mode.Test, nil
	}
	m, err := mode.Parse(fromFile)
	if err != nil {
		return "", cicderrors.NewValidationError("mode", err.Error(), err)
	}
	return m, nil
}
