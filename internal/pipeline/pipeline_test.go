package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnthesmith/cicd/internal/fob"
	"github.com/johnthesmith/cicd/internal/mode"
	"github.com/johnthesmith/cicd/internal/params"
	"github.com/johnthesmith/cicd/internal/shell"
	"github.com/johnthesmith/cicd/internal/status"
	"github.com/johnthesmith/cicd/internal/version"
	pkgerrors "github.com/johnthesmith/cicd/pkg/errors"
)

// scriptedRunner records every request and answers from respond when set.
type scriptedRunner struct {
	requests []shell.Request
	respond  func(shell.Request) (shell.Output, error)
}

func (r *scriptedRunner) Run(_ context.Context, req shell.Request) (shell.Output, error) {
	r.requests = append(r.requests, req)
	if r.respond == nil {
		return shell.Output{}, nil
	}
	return r.respond(req)
}

func (r *scriptedRunner) commands() []string {
	out := make([]string, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req.Command)
	}
	return out
}

func newPipeline(t *testing.T, m mode.Mode, runner shell.Runner) (*Pipeline, string) {
	t.Helper()

	root := t.TempDir()
	p := New(context.Background(), Options{
		Mode:   m,
		Runner: runner,
		Now:    func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) },
	}).Prepare(root)
	require.True(t, p.IsOk())
	return p, root
}

func TestPrepareSeedsDefaults(t *testing.T) {
	t.Parallel()

	p, root := newPipeline(t, mode.Test, &scriptedRunner{})

	require.Equal(t, root+"/deploy/dest/image", p.Prep("%BUILD%"))
	require.Equal(t, root+"/deploy/source/files", p.Prep("%FILES%"))
	require.Equal(t, root+"/version.json", p.Prep("%VERSION_FILE%"))
	require.Equal(t, "2024-05-01 10:30:00", p.Prep("%CI_MOMENT%"))
	require.True(t, strings.HasSuffix(p.Prep("%FOB_FILE%"), "/fob.json"))
	require.Equal(t, "%UNKNOWN%", p.Prep("%UNKNOWN%"))
}

func TestPrepCycleFailsRun(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{}
	p, _ := newPipeline(t, mode.Full, runner)
	p.AddParams(map[string]params.Value{
		"A": params.String("%B%"),
		"B": params.String("%A%"),
	})

	p.Delete("%A%", "").Delete("/tmp/other", "")

	require.Equal(t, status.ParamCycle, p.Result().Code)
	require.Empty(t, runner.requests)

	var statusErr *pkgerrors.StatusError
	require.ErrorAs(t, p.Err(), &statusErr)
	require.Equal(t, string(status.ParamCycle), statusErr.Code)
}

func TestGateStopsEveryOperation(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{}
	p, root := newPipeline(t, mode.Full, runner)
	p.SetRemote("deploy", "example.org", "", "")
	p.SetParam("ImageName", params.String("app"))
	p.Status().SetResult(status.FolderNotExists, status.Context{"Folder": "/nowhere"})

	called := false
	p.
		GitClone("https://example.org/repo.git", "%DEST%/src", "main", 1, "").
		GitUse("https://example.org/repo.git", "%DEST%/src", "main", 1, "").
		GitSync("https://example.org/repo.git", "%BUILD%", nil, "main", "").
		GitUpload(root, "msg", "").
		Rights([]string{root}, "0755", true, "").
		Sync(root, "%DEST%", nil, true, "").
		CheckPath("%DEST%/created").
		Copy(root, "%DEST%", "").
		Move(root, "%DEST%", "").
		PurifyDestination().
		Replace(root, nil, nil, nil).
		DockerLogin().
		DockerImageBuild().
		DockerImageDelete("").
		DockerImageExport("", false).
		ImageDeploy().
		ImagePurge(1, true).
		ImageTag(false).
		ImagePublic(false).
		VersionInc().
		VersionWrite(version.Version{Version: "x", Build: 1}).
		ActivateFob("registry").
		Shell([]string{"echo hi"}, false, "").
		InFolder(root, func(*Pipeline) { called = true })

	require.False(t, called)
	require.Empty(t, runner.requests)
	require.Empty(t, p.History())
	require.Equal(t, status.FolderNotExists, p.Result().Code)

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestModeDecidesDryRun(t *testing.T) {
	t.Parallel()

	for _, m := range []mode.Mode{mode.Test, mode.Build, mode.Full} {
		for _, remote := range []bool{false, true} {
			runner := &scriptedRunner{}
			p, _ := newPipeline(t, m, runner)
			p.SetRemote("deploy", "example.org", "", "")

			p.Shell([]string{"uptime"}, remote, "uptime")

			history := p.History()
			require.Len(t, history, 1)
			want := mode.DryRun(m, remote)
			assert.Equal(t, want, history[0].DryRun, "mode %s remote %v", m, remote)
			assert.Equal(t, remote, history[0].Remote)
			if want {
				assert.Empty(t, runner.requests)
			} else {
				assert.Len(t, runner.requests, 1)
			}
		}
	}
}

func TestShellJoinsLinesAndWrapsRemote(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{}
	p, _ := newPipeline(t, mode.Full, runner)
	p.SetRemote("deploy", "example.org", "2222", "/keys/id")
	p.SetParam("APP", params.String("svc"))

	p.Shell([]string{"cd /srv/%APP%", "ls"}, true, "list")

	require.True(t, p.IsOk())
	require.Equal(t, []string{`ssh -o BatchMode=yes -i /keys/id -p 2222 deploy@example.org 'cd /srv/svc && ls'`}, runner.commands())
}

func TestRemoteShellWithoutHostIsConfigurationError(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{}
	p, _ := newPipeline(t, mode.Full, runner)

	p.Shell([]string{"ls"}, true, "")

	require.Equal(t, status.ConfigurationError, p.Result().Code)
	require.Empty(t, runner.requests)
}

func TestShellFailureLatches(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(shell.Request) (shell.Output, error) {
		return shell.Output{Lines: []string{"oops"}}, errors.New("exit status 1")
	}}
	p, _ := newPipeline(t, mode.Full, runner)

	p.Shell([]string{"false"}, false, "").Shell([]string{"true"}, false, "")

	require.Len(t, runner.requests, 1)
	res := p.Result()
	require.Equal(t, status.ShellError, res.Code)
	require.Equal(t, []string{"oops"}, res.Context[shell.OutputKey])
}

func TestInFolderScopesWorkDir(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{}
	p, root := newPipeline(t, mode.Full, runner)
	repo := filepath.Join(root, "repo")
	require.NoError(t, os.Mkdir(repo, 0o755))

	p.InFolder(repo, func(p *Pipeline) {
		require.Equal(t, repo, p.WorkDir())
		p.Shell([]string{"git status"}, false, "")
	})

	require.Equal(t, "", p.WorkDir())
	require.Equal(t, repo, runner.requests[0].Dir)
}

func TestChangeFolderMissing(t *testing.T) {
	t.Parallel()

	p, root := newPipeline(t, mode.Build, &scriptedRunner{})
	p.ChangeFolder(filepath.Join(root, "missing"))
	require.Equal(t, status.FolderNotExists, p.Result().Code)

	test, root := newPipeline(t, mode.Test, &scriptedRunner{})
	test.ChangeFolder(filepath.Join(root, "missing"))
	require.True(t, test.IsOk())
	require.Equal(t, filepath.Join(root, "missing"), test.WorkDir())
}

func TestRelativePathsFollowWorkDir(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{}
	p, root := newPipeline(t, mode.Build, runner)
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.MkdirAll(filepath.Join(sub, "inner"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "app"), []byte("#!/bin/sh\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "inner", "app.conf"), []byte("root=%ROOT_NAME%"), 0o644))
	p.SetParam("ROOT_NAME", params.String("sub"))

	p.ChangeFolder(sub).Rights([]string{"app"}, "0755", false, "")
	require.True(t, p.IsOk(), "%v", p.Result())
	require.Equal(t, []string{"chmod 0755 app"}, runner.commands())
	require.Equal(t, sub, runner.requests[0].Dir)

	p.CheckPath("out")
	require.DirExists(t, filepath.Join(sub, "out"))

	p.ChangeFolder("inner")
	require.True(t, p.IsOk(), "%v", p.Result())
	require.Equal(t, filepath.Join(sub, "inner"), p.WorkDir())

	p.Replace(".", []string{"*.conf"}, nil, nil)
	require.True(t, p.IsOk(), "%v", p.Result())
	got, err := os.ReadFile(filepath.Join(sub, "inner", "app.conf"))
	require.NoError(t, err)
	require.Equal(t, "root=sub", string(got))

	p.SetParam("VERSION_FILE", params.String("version.json"))
	p.VersionInc()
	require.True(t, p.IsOk(), "%v", p.Result())
	require.FileExists(t, filepath.Join(sub, "inner", "version.json"))

	p.ChangeFolder("missing")
	require.Equal(t, status.FolderNotExists, p.Result().Code)
	require.Equal(t, filepath.Join(sub, "inner", "missing"), p.Result().Context["Folder"])
}

func TestActivateFob(t *testing.T) {
	t.Parallel()

	store := fob.Groups{
		"registry": {"Host": "registry.example.org", "Login": "ci", "PasswordFile": "/run/secret"},
	}
	runner := &scriptedRunner{}
	p := New(context.Background(), Options{Mode: mode.Full, Runner: runner, Fobs: store}).Prepare(t.TempDir())

	p.ActivateFob("registry").DockerLogin()

	require.True(t, p.IsOk())
	require.Equal(t, params.String("ci"), p.ActiveFob()["Login"])
	require.Equal(t,
		[]string{"docker login registry.example.org --username ci --password-stdin < /run/secret"},
		runner.commands())

	empty := New(context.Background(), Options{Fobs: store}).ActivateFob("nope")
	require.Equal(t, status.FobIsEmpty, empty.Result().Code)
	require.Equal(t, "nope", empty.Result().Context["Name"])
}

func TestActivateFobFromFile(t *testing.T) {
	t.Parallel()

	p, root := newPipeline(t, mode.Test, &scriptedRunner{})
	file := filepath.Join(root, "fob.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"deploy": {"Host": "h", /* port */ "Port": 22}}`), 0o600))
	p.SetParam("FOB_FILE", params.String(file))

	p.ActivateFob("deploy")

	require.True(t, p.IsOk())
	require.Equal(t, "22", p.Prep("%Port%"))
}

func TestVersionHelpers(t *testing.T) {
	t.Parallel()

	p, root := newPipeline(t, mode.Build, &scriptedRunner{})
	p.SetParam("ImageName", params.String("registry/app"))

	require.Equal(t, version.Default(), p.VersionRead())
	require.Equal(t, "registry/app:alpha.1", p.ImageBuild(1))
	require.Equal(t, "registry/app:latest", p.ImageLatest())
	require.Equal(t, "registry_app:alpha.0.tar", p.ImageFile(0, false))
	require.Equal(t, "registry_app:latest.tar", p.ImageFile(0, true))
	require.Equal(t, "registry/app:beta.4", p.ImageName(version.Version{Version: "beta", Build: 4}))

	p.VersionInc().VersionInc()
	require.True(t, p.IsOk())
	require.Equal(t, version.Version{Version: "alpha", Build: 2}, version.File{Path: filepath.Join(root, "version.json")}.Read())
}

func TestVersionIncSkippedInTestMode(t *testing.T) {
	t.Parallel()

	p, root := newPipeline(t, mode.Test, &scriptedRunner{})
	p.VersionInc()

	require.True(t, p.IsOk())
	require.NoFileExists(t, filepath.Join(root, "version.json"))
}

func TestVersionWriteFailure(t *testing.T) {
	t.Parallel()

	p, root := newPipeline(t, mode.Full, &scriptedRunner{})
	p.SetParam("VERSION_FILE", params.String(filepath.Join(root, "missing", "version.json")))

	p.VersionWrite(version.Default())

	require.Equal(t, status.VersionError, p.Result().Code)
}
