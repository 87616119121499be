package config

import (
	"fmt"

	cicderrors "github.com/johnthesmith/cicd/pkg/errors"
)

// ValidateConfig performs structural and cross-field validation on an entire configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return cicderrors.NewValidationError("config", "configuration is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	for key := range cfg.Params {
		if key == "" {
			return cicderrors.NewValidationError("params", "parameter name is empty", nil)
		}
	}

	seen := make(map[string]int, len(cfg.Steps))
	for i, step := range cfg.Steps {
		if step.ID != "" {
			if first, exists := seen[step.ID]; exists {
				return cicderrors.NewValidationError(fieldForStep(i, "id"), fmt.Sprintf("duplicate step id %q (first used by steps[%d])", step.ID, first), nil)
			}
			seen[step.ID] = i
		}

		if err := ValidateStep(i, step); err != nil {
			return err
		}
	}

	return nil
}
