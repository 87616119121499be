package validation

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/johnthesmith/cicd/internal/config"
	"github.com/johnthesmith/cicd/internal/mode"
)

func deployConfig() *config.Config {
	return &config.Config{
		Name: "service",
		Steps: []config.Step{
			{Op: "git_use"},
			{Op: "sync"},
			{Op: "docker_image_build"},
			{Op: "image_deploy"},
			{Op: "shell", Remote: true},
			{Op: "info"},
		},
	}
}

func targets(checks []Check) []string {
	out := make([]string, 0, len(checks))
	for _, c := range checks {
		out = append(out, c.Target)
	}
	return out
}

func TestPlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mode mode.Mode
		want []string
	}{
		{"test mode needs nothing", mode.Test, []string{}},
		{"build mode skips ssh", mode.Build, []string{"docker", "git", "rsync"}},
		{"full mode adds ssh", mode.Full, []string{"docker", "git", "rsync", "ssh"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, targets(Plan(deployConfig(), tt.mode)))
		})
	}
}

func TestPlanRecordsOps(t *testing.T) {
	t.Parallel()

	checks := Plan(deployConfig(), mode.Full)
	byTarget := map[string][]string{}
	for _, c := range checks {
		byTarget[c.Target] = c.Ops
	}

	require.Equal(t, []string{"image_deploy", "sync"}, byTarget["rsync"])
	require.Equal(t, []string{"image_deploy", "shell"}, byTarget["ssh"])
}

func TestPlanChecksFobFile(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Fob: "registry", FobFile: "/etc/cicd/fob.json", Steps: []config.Step{{Op: "info"}}}
	checks := Plan(cfg, mode.Build)
	require.Len(t, checks, 1)
	require.Equal(t, KindFile, checks[0].Kind)

	cfg.FobFile = "%HOME%/fob.json"
	require.Empty(t, Plan(cfg, mode.Build))
	require.Nil(t, Plan(nil, mode.Full))
}

func TestRunChecks(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX tools on PATH")
	}

	file := filepath.Join(t.TempDir(), "fob.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

	results, err := Run(context.Background(), []Check{
		{Kind: KindCommand, Target: "sh", Ops: []string{"shell"}},
		{Kind: KindFile, Target: file},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.True(t, r.Passed)
	}
}

func TestRunChecksAggregatesFailures(t *testing.T) {
	t.Parallel()

	results, err := Run(context.Background(), []Check{
		{Kind: KindCommand, Target: "definitely_missing_command", Ops: []string{"docker_image_build"}},
		{Kind: KindFile, Target: filepath.Join(t.TempDir(), "missing")},
		{Kind: "bogus", Target: "x"},
	})

	require.Error(t, err)
	require.ErrorContains(t, err, "definitely_missing_command (needed by docker_image_build)")
	require.Len(t, results, 3)
	for _, r := range results {
		require.False(t, r.Passed)
	}
}

func TestRunChecksHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Run(ctx, []Check{{Kind: KindCommand, Target: "sh"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
}
