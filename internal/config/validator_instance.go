package config

import (
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/johnthesmith/cicd/internal/mode"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern      = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	stepIDPattern      = regexp.MustCompile(`^[a-z0-9_-]+$`)
	sshGitPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+:[a-zA-Z0-9._/~-]+$`)
	placeholderPattern = regexp.MustCompile(`%[^%\s]+%`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("step_id", func(fl validator.FieldLevel) bool {
			return stepIDPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
			_, err := mode.Parse(fl.Field().String())
			return err == nil
		})

		_ = v.RegisterValidation("op", func(fl validator.FieldLevel) bool {
			return IsOp(fl.Field().String())
		})

		_ = v.RegisterValidation("git_url", func(fl validator.FieldLevel) bool {
			return isGitURL(fl.Field().String())
		})

		validateInst = v
	})

	return validateInst
}

// GetValidator returns a configured validator instance for use outside the config package.
func GetValidator() *validator.Validate {
	return validatorInstance()
}

func isGitURL(urlStr string) bool {
	if urlStr == "" {
		return true
	}

	if strings.TrimSpace(urlStr) == "" {
		return false
	}

	// Placeholders are resolved when the step runs.
	if placeholderPattern.MatchString(urlStr) {
		return true
	}

	if parsedURL, err := url.Parse(urlStr); err == nil {
		scheme := strings.ToLower(parsedURL.Scheme)
		if (scheme == "http" || scheme == "https" || scheme == "ssh") && parsedURL.Host != "" {
			return true
		}
	}

	if sshGitPattern.MatchString(urlStr) {
		return true
	}

	return isValidFilePath(urlStr)
}

// isValidFilePath performs syntactic validation of file paths without filesystem access
func isValidFilePath(path string) bool {
	if path == "" {
		return false
	}

	if strings.Contains(path, "\x00") {
		return false
	}

	if strings.HasPrefix(path, "/") {
		return !strings.Contains(path, "/../") && !strings.HasSuffix(path, "/..")
	}

	return strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../")
}
