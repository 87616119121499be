package config

import "sort"

// Config is a pipeline document.
type Config struct {
	Version     string         `yaml:"version" toml:"version" validate:"required,semver"`
	Name        string         `yaml:"name" toml:"name" validate:"required,min=1,max=100"`
	Description string         `yaml:"description,omitempty" toml:"description"`
	Mode        string         `yaml:"mode,omitempty" toml:"mode" validate:"omitempty,mode"`
	Root        string         `yaml:"root,omitempty" toml:"root"`
	FobFile     string         `yaml:"fob_file,omitempty" toml:"fob_file"`
	Fob         string         `yaml:"fob,omitempty" toml:"fob"`
	Remote      *Remote        `yaml:"remote,omitempty" toml:"remote"`
	Params      map[string]any `yaml:"params,omitempty" toml:"params"`
	Steps       []Step         `yaml:"steps" toml:"steps" validate:"required,min=1,dive"`
}

// Remote describes the host deploy steps run on.
type Remote struct {
	User string `yaml:"user" toml:"user" validate:"required"`
	Host string `yaml:"host" toml:"host" validate:"required"`
	Port string `yaml:"port,omitempty" toml:"port" validate:"omitempty,numeric"`
	Key  string `yaml:"key,omitempty" toml:"key"`
}

// Step is one pipeline operation with its arguments. Which arguments an
// operation reads is listed in opFields.
type Step struct {
	ID      string `yaml:"id,omitempty" toml:"id" validate:"omitempty,step_id"`
	Op      string `yaml:"op" toml:"op" validate:"required,op"`
	Comment string `yaml:"comment,omitempty" toml:"comment"`

	Source  string `yaml:"source,omitempty" toml:"source"`
	Dest    string `yaml:"dest,omitempty" toml:"dest"`
	Path    string `yaml:"path,omitempty" toml:"path"`
	Branch  string `yaml:"branch,omitempty" toml:"branch"`
	Depth   int    `yaml:"depth,omitempty" toml:"depth" validate:"min=0"`
	Message string `yaml:"message,omitempty" toml:"message"`
	Text    string `yaml:"text,omitempty" toml:"text"`
	Name    string `yaml:"name,omitempty" toml:"name"`
	Image   string `yaml:"image,omitempty" toml:"image"`
	Folder  string `yaml:"folder,omitempty" toml:"folder"`
	Rights  string `yaml:"rights,omitempty" toml:"rights"`
	Mode    string `yaml:"mode,omitempty" toml:"mode" validate:"omitempty,mode"`

	Paths       []string `yaml:"paths,omitempty" toml:"paths"`
	Lines       []string `yaml:"lines,omitempty" toml:"lines"`
	Excludes    []string `yaml:"excludes,omitempty" toml:"excludes"`
	Includes    []string `yaml:"includes,omitempty" toml:"includes"`
	ExcludeKeys []string `yaml:"exclude_keys,omitempty" toml:"exclude_keys"`

	Recursive bool `yaml:"recursive,omitempty" toml:"recursive"`
	Delete    bool `yaml:"delete,omitempty" toml:"delete"`
	Remote    bool `yaml:"remote,omitempty" toml:"remote"`
	Latest    bool `yaml:"latest,omitempty" toml:"latest"`

	// Override replaces the exit status outcome of a shell step. An empty
	// string forces success.
	Override *string `yaml:"override,omitempty" toml:"override"`

	Params map[string]any `yaml:"params,omitempty" toml:"params"`
}

// opFields lists every operation and the step fields it requires.
var opFields = map[string][]string{
	"info":                {"text"},
	"dump_params":         nil,
	"set_mode":            {"mode"},
	"add_params":          {"params"},
	"activate_fob":        {"name"},
	"change_folder":       {"path"},
	"git_clone":           {"source", "dest"},
	"git_purge":           {"source"},
	"git_pure":            {"source"},
	"git_pull":            {"dest"},
	"git_add":             {"source"},
	"git_commit":          {"source", "message"},
	"git_push":            {"source"},
	"git_use":             {"source", "dest"},
	"git_sync":            {"source", "dest"},
	"git_upload":          {"source", "message"},
	"rights":              {"paths", "rights"},
	"sync":                {"source", "dest"},
	"delete":              {"path"},
	"move":                {"source", "dest"},
	"copy":                {"source", "dest"},
	"check_path":          {"path"},
	"purify_destination":  nil,
	"replace":             {"path"},
	"docker_login":        nil,
	"docker_image_build":  nil,
	"docker_image_delete": nil,
	"docker_image_export": nil,
	"image_run_line":      nil,
	"image_deploy":        nil,
	"image_purge":         nil,
	"image_tag":           nil,
	"image_public":        nil,
	"version_inc":         nil,
	"shell":               {"lines"},
}

// Ops returns every known operation name, sorted.
func Ops() []string {
	out := make([]string, 0, len(opFields))
	for op := range opFields {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// IsOp reports whether op names a known operation.
func IsOp(op string) bool {
	_, ok := opFields[op]
	return ok
}
