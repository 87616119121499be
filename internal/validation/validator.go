// Package validation checks that the host can run a pipeline before any
// step executes.
package validation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/johnthesmith/cicd/internal/config"
	"github.com/johnthesmith/cicd/internal/mode"
	cicderrors "github.com/johnthesmith/cicd/pkg/errors"
)

// Check kinds.
const (
	KindCommand = "command_exists"
	KindFile    = "file_exists"
)

// Check is one requirement of a pipeline on the host.
type Check struct {
	Kind   string
	Target string
	// Ops lists the operations that need it.
	Ops []string
}

// Result captures the outcome of a single check.
type Result struct {
	Check   Check
	Passed  bool
	Message string
	Error   error
}

// toolsByOp names the executables each operation spawns locally.
var toolsByOp = map[string][]string{
	"git_clone":           {"git"},
	"git_purge":           {"rm"},
	"git_pure":            {"git"},
	"git_pull":            {"git"},
	"git_add":             {"git"},
	"git_commit":          {"git"},
	"git_push":            {"git"},
	"git_use":             {"git"},
	"git_sync":            {"git", "rsync"},
	"git_upload":          {"git"},
	"sync":                {"rsync"},
	"rights":              {"chmod"},
	"delete":              {"rm"},
	"move":                {"mv"},
	"copy":                {"cp"},
	"purify_destination":  {"rm"},
	"docker_login":        {"docker"},
	"docker_image_build":  {"docker"},
	"docker_image_delete": {"docker"},
	"docker_image_export": {"docker"},
	"image_deploy":        {"rsync", "ssh"},
	"image_purge":         {"docker"},
	"image_tag":           {"docker"},
	"image_public":        {"docker"},
}

// Plan lists what the pipeline needs on the host when run in m. Test mode
// spawns nothing and needs nothing.
func Plan(cfg *config.Config, m mode.Mode) []Check {
	if cfg == nil || m.IsTest() {
		return nil
	}

	needs := map[string]map[string]struct{}{}
	need := func(tool, op string) {
		if needs[tool] == nil {
			needs[tool] = map[string]struct{}{}
		}
		needs[tool][op] = struct{}{}
	}

	for _, step := range cfg.Steps {
		for _, tool := range toolsByOp[step.Op] {
			if tool == "ssh" && !m.IsFull() {
				continue
			}
			need(tool, step.Op)
		}
		if step.Remote && m.IsFull() {
			need("ssh", step.Op)
		}
	}

	checks := make([]Check, 0, len(needs)+1)
	for tool, ops := range needs {
		checks = append(checks, Check{Kind: KindCommand, Target: tool, Ops: sortedKeys(ops)})
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].Target < checks[j].Target })

	if cfg.Fob != "" && cfg.FobFile != "" && !strings.Contains(cfg.FobFile, "%") {
		checks = append(checks, Check{Kind: KindFile, Target: cfg.FobFile, Ops: []string{"activate_fob"}})
	}
	return checks
}

// Run executes the checks and returns their results. The error lists every
// failed check.
func Run(ctx context.Context, checks []Check) ([]Result, error) {
	results := make([]Result, 0, len(checks))
	var failedMessages []string

	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result := Result{Check: check}

		var err error
		switch check.Kind {
		case KindCommand:
			err = CheckCommandExists(check.Target)
		case KindFile:
			err = CheckFileExists(check.Target)
		default:
			err = cicderrors.NewValidationError("preflight.kind", fmt.Sprintf("unknown check kind %q", check.Kind), nil)
		}

		if err != nil {
			result.Passed = false
			result.Message = fmt.Sprintf("%s (needed by %s): %v", check.Target, strings.Join(check.Ops, ", "), err)
			result.Error = err
			failedMessages = append(failedMessages, result.Message)
		} else {
			result.Passed = true
			result.Message = check.Target + " found"
		}

		results = append(results, result)
	}

	if len(failedMessages) > 0 {
		return results, fmt.Errorf("preflight failed: %s", strings.Join(failedMessages, "; "))
	}

	return results, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
