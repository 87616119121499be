package config

import (
	"fmt"

	cicderrors "github.com/johnthesmith/cicd/pkg/errors"
)

// gitOps read Source as a repository location.
var gitOps = map[string]struct{}{"git_clone": {}, "git_use": {}, "git_sync": {}}

// ValidateStep inspects a single step for structural correctness independent of other steps.
func ValidateStep(index int, step Step) error {
	v := validatorInstance()
	if err := v.Struct(step); err != nil {
		return convertValidationError(err)
	}

	fields, ok := opFields[step.Op]
	if !ok {
		return cicderrors.NewValidationError(fieldForStep(index, "op"), fmt.Sprintf("unknown operation %q", step.Op), nil)
	}
	for _, field := range fields {
		if !hasField(step, field) {
			return cicderrors.NewValidationError(fieldForStep(index, field), fmt.Sprintf("%s requires %s", step.Op, field), nil)
		}
	}

	if _, ok := gitOps[step.Op]; ok {
		if err := v.Var(step.Source, "git_url"); err != nil {
			return cicderrors.NewValidationError(fieldForStep(index, "source"), fmt.Sprintf("%q is not a repository location", step.Source), err)
		}
	}

	return nil
}

func hasField(step Step, field string) bool {
	switch field {
	case "text":
		return step.Text != ""
	case "mode":
		return step.Mode != ""
	case "params":
		return len(step.Params) > 0
	case "name":
		return step.Name != ""
	case "path":
		return step.Path != ""
	case "source":
		return step.Source != ""
	case "dest":
		return step.Dest != ""
	case "message":
		return step.Message != ""
	case "paths":
		return len(step.Paths) > 0
	case "rights":
		return step.Rights != ""
	case "lines":
		return len(step.Lines) > 0
	default:
		return false
	}
}
