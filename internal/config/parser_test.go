package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	cicderrors "github.com/johnthesmith/cicd/pkg/errors"
)

const validYAML = `version: "1.0"
name: "deploy app"
mode: build
fob: registry
remote:
  user: deploy
  host: example.org
  port: "2222"
  key: /keys/id
params:
  ImageName: app
  ContainerPorts: ["80:80", "443:443"]
steps:
  - id: sources
    op: git_use
    source: https://example.org/app.git
    dest: "%SOURCE_PROJECT%"
    branch: main
    depth: 1
  - op: replace
    path: "%BUILD%"
    includes: ["*.conf"]
    exclude_keys: [KEEP]
  - op: shell
    lines: ["docker ps"]
    remote: true
    override: ""
`

const validTOML = `version = "1.0"
name = "deploy app"
mode = "full"

[params]
ImageName = "app"
Port = 22
ContainerPorts = ["80:80"]

[[steps]]
op = "git_sync"
source = "%REPO%"
dest = "%BUILD%"
excludes = ["*.md"]

[[steps]]
op = "docker_image_build"
`

func TestParseConfig(t *testing.T) {
	t.Parallel()

	invalidYAML := `version: [1, 0]
name: "Broken"
steps:
  - op: info
`

	missingSteps := `version: "1.0"
name: "No Steps"
`

	badVersion := `version: "beta"
name: "Bad Version"
steps:
  - op: dump_params
`

	unknownOp := `version: "1.0"
name: "Unknown"
steps:
  - op: launch_rockets
`

	missingArg := `version: "1.0"
name: "Missing arg"
steps:
  - op: info
  - op: git_clone
    source: https://example.org/app.git
`

	badMode := `version: "1.0"
name: "Bad mode"
mode: yolo
steps:
  - op: dump_params
`

	badSource := `version: "1.0"
name: "Bad source"
steps:
  - op: git_clone
    source: app.git
    dest: /tmp/app
`

	duplicateID := `version: "1.0"
name: "Duplicate"
steps:
  - id: a
    op: dump_params
  - id: a
    op: dump_params
`

	cases := []struct {
		name     string
		file     string
		contents string
		assert   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:     "valid yaml is parsed",
			file:     "pipeline.yaml",
			contents: validYAML,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.NoError(t, err)
				require.Equal(t, "deploy app", cfg.Name)
				require.Equal(t, "build", cfg.Mode)
				require.Equal(t, &Remote{User: "deploy", Host: "example.org", Port: "2222", Key: "/keys/id"}, cfg.Remote)
				require.Equal(t, "app", cfg.Params["ImageName"])
				require.Len(t, cfg.Steps, 3)
				require.Equal(t, "git_use", cfg.Steps[0].Op)
				require.Equal(t, 1, cfg.Steps[0].Depth)
				require.Equal(t, []string{"KEEP"}, cfg.Steps[1].ExcludeKeys)
				require.NotNil(t, cfg.Steps[2].Override)
				require.Equal(t, "", *cfg.Steps[2].Override)
			},
		},
		{
			name:     "valid toml is parsed",
			file:     "pipeline.toml",
			contents: validTOML,
			assert: func(t *testing.T, cfg *Config, err error) {
				require.NoError(t, err)
				require.Equal(t, "full", cfg.Mode)
				require.EqualValues(t, 22, cfg.Params["Port"])
				require.Len(t, cfg.Steps, 2)
				require.Equal(t, []string{"*.md"}, cfg.Steps[0].Excludes)
				require.Nil(t, cfg.Steps[1].Override)
			},
		},
		{
			name:     "invalid yaml returns parse error",
			file:     "pipeline.yaml",
			contents: invalidYAML,
			assert: func(t *testing.T, cfg *Config, err error) {
				var parseErr *cicderrors.ParseError
				require.ErrorAs(t, err, &parseErr)
				require.Contains(t, parseErr.Message, "cannot unmarshal")
				require.Equal(t, 1, parseErr.Line)
			},
		},
		{
			name:     "invalid toml returns parse error",
			file:     "pipeline.toml",
			contents: "version = \"1.0\"\nname = \n",
			assert: func(t *testing.T, cfg *Config, err error) {
				var parseErr *cicderrors.ParseError
				require.ErrorAs(t, err, &parseErr)
				require.Equal(t, "pipeline.toml", filepath.Base(parseErr.Path))
			},
		},
		{
			name:     "missing steps",
			file:     "pipeline.yaml",
			contents: missingSteps,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *cicderrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Message, "steps")
			},
		},
		{
			name:     "schema version must follow major.minor",
			file:     "pipeline.yaml",
			contents: badVersion,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *cicderrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Message, "version")
			},
		},
		{
			name:     "unknown operation",
			file:     "pipeline.yaml",
			contents: unknownOp,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *cicderrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Message, "'op'")
			},
		},
		{
			name:     "missing operation argument names the step",
			file:     "pipeline.yaml",
			contents: missingArg,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *cicderrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Equal(t, "steps[0].text", validationErr.Field)
			},
		},
		{
			name:     "unknown mode",
			file:     "pipeline.yaml",
			contents: badMode,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *cicderrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Contains(t, validationErr.Message, "'mode'")
			},
		},
		{
			name:     "git source must look like a repository",
			file:     "pipeline.yaml",
			contents: badSource,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *cicderrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Equal(t, "steps[0].source", validationErr.Field)
			},
		},
		{
			name:     "duplicate step id",
			file:     "pipeline.yaml",
			contents: duplicateID,
			assert: func(t *testing.T, cfg *Config, err error) {
				var validationErr *cicderrors.ValidationError
				require.ErrorAs(t, err, &validationErr)
				require.Equal(t, "steps[1].id", validationErr.Field)
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := ParseConfig(writeTempConfig(t, tc.file, tc.contents))
			if err != nil {
				require.Nil(t, cfg)
			}
			tc.assert(t, cfg, err)
		})
	}
}

func TestParseConfigMissingFile(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	var parseErr *cicderrors.ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, 0, parseErr.Line)
}

func writeTempConfig(t *testing.T, name, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
