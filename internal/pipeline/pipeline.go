// Package pipeline chains build and deploy steps over one parameter store
// and one Status.
//
// Every exported operation is gated: once the Status holds a failure the
// operation returns the pipeline untouched, so a chain such as
//
//	p.GitUse(src, dest, "main", 1, "").DockerImageBuild().ImageDeploy()
//
// stops doing work at the first failing step. Dry-run decisions are always
// taken through mode.DryRun.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/johnthesmith/cicd/internal/fob"
	"github.com/johnthesmith/cicd/internal/logger"
	"github.com/johnthesmith/cicd/internal/mode"
	"github.com/johnthesmith/cicd/internal/params"
	"github.com/johnthesmith/cicd/internal/shell"
	"github.com/johnthesmith/cicd/internal/status"
	pkgerrors "github.com/johnthesmith/cicd/pkg/errors"
)

// Options configures a Pipeline.
type Options struct {
	Mode   mode.Mode
	Runner shell.Runner
	Logger *logger.Logger
	// Fobs overrides the fob file named by %FOB_FILE%.
	Fobs fob.Store
	// Now is the clock used for CI_MOMENT.
	Now func() time.Time
}

// Pipeline is one build or deploy run. It is not safe for concurrent use.
type Pipeline struct {
	ctx       context.Context
	params    *params.Store
	status    *status.Status
	mode      mode.Mode
	exec      *shell.Executor
	log       *logger.Logger
	fobs      fob.Store
	activeFob map[string]params.Value
	workDir   string
	now       func() time.Time

	imageID     string
	lastReplace ReplaceStats
}

// New returns an empty pipeline. Call Prepare to seed the default parameters.
func New(ctx context.Context, opts Options) *Pipeline {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Mode
	if m == "" {
		m = mode.Test
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		ctx:       ctx,
		params:    params.NewStore(),
		status:    status.New(),
		mode:      m,
		exec:      shell.NewExecutor(opts.Runner, log),
		log:       log,
		fobs:      opts.Fobs,
		activeFob: map[string]params.Value{},
		now:       now,
	}
}

// Prepare seeds the default parameters and the run specific ones. An empty
// root means the current directory.
func (p *Pipeline) Prepare(root string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			p.status.SetResult(status.ConfigurationError, status.Context{"Param": "TASK_PATH", "Error": err.Error()})
			return p
		}
		root = wd
	}
	home, _ := os.UserHomeDir()

	p.params.AddParams(DefaultParams())
	p.params.AddParams(map[string]params.Value{
		"TASK_PATH": params.String(root),
		"FOB_FILE":  params.String(home + "/fob.json"),
		"CI_MOMENT": params.String(p.now().Format(time.DateTime)),
	})
	p.log.Debug("pipeline prepared", "root", root, "mode", p.mode)
	return p
}

// AddParams merges values into the store, overwriting same-named keys.
func (p *Pipeline) AddParams(values map[string]params.Value) *Pipeline {
	if !p.IsOk() {
		return p
	}
	p.params.AddParams(values)
	return p
}

// SetParam stores one value.
func (p *Pipeline) SetParam(key string, value params.Value) *Pipeline {
	if !p.IsOk() {
		return p
	}
	p.params.Set(key, value)
	return p
}

// SetMode switches the execution mode for the following operations.
func (p *Pipeline) SetMode(m mode.Mode) *Pipeline {
	if !p.IsOk() {
		return p
	}
	p.mode = m
	p.log.Info("mode", "mode", m)
	return p
}

// SetRemote stores the remote connection parameters. An empty key leaves a
// previously configured key in place.
func (p *Pipeline) SetRemote(user, host, port, key string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	values := map[string]params.Value{
		"REMOTE_USER": params.String(user),
		"REMOTE_HOST": params.String(host),
	}
	if port != "" {
		values["REMOTE_PORT"] = params.String(port)
	}
	if key != "" {
		values["REMOTE_SSL_KEY"] = params.String(key)
	}
	p.params.AddParams(values)
	return p
}

// Params exposes the parameter store.
func (p *Pipeline) Params() *params.Store {
	return p.params
}

// Mode returns the current execution mode.
func (p *Pipeline) Mode() mode.Mode {
	return p.mode
}

// Status returns the run status.
func (p *Pipeline) Status() *status.Status {
	return p.status
}

// IsOk reports whether no step has failed yet.
func (p *Pipeline) IsOk() bool {
	return p.status.IsOk()
}

// Result returns a snapshot of the run outcome.
func (p *Pipeline) Result() status.Result {
	return p.status.GetResult()
}

// Err returns the failing Status as an error, or nil.
func (p *Pipeline) Err() error {
	res := p.status.GetResult()
	if res.IsOk() {
		return nil
	}
	return pkgerrors.NewStatusError(string(res.Code), res.Context)
}

// History lists every command handed to the executor, dry runs included.
func (p *Pipeline) History() []shell.Entry {
	return p.exec.History()
}

// Prep resolves every placeholder in text, following chained values. A
// reference cycle fails the run with ParamCycle and returns text unchanged.
func (p *Pipeline) Prep(text string, exclude ...string) string {
	out, err := p.params.Resolve(text, exclude)
	if err != nil {
		var cycle *params.CycleError
		ctx := status.Context{"Text": text, "Error": err.Error()}
		if errors.As(err, &cycle) {
			ctx["Path"] = cycle.Path
		}
		p.status.SetResult(status.ParamCycle, ctx)
		return text
	}
	return out
}

// PrepList resolves each element of items.
func (p *Pipeline) PrepList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, p.Prep(item))
	}
	return out
}

// Info logs text after resolving it.
func (p *Pipeline) Info(text string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	p.log.Info(p.Prep(text))
	return p
}

// KeyValue is one resolved parameter.
type KeyValue struct {
	Key   string
	Value string
	Items []string
}

// Resolved returns every parameter with placeholders resolved. Values that
// take part in a cycle are returned raw.
func (p *Pipeline) Resolved() []KeyValue {
	keys := p.params.Keys()
	out := make([]KeyValue, 0, len(keys))
	for _, key := range keys {
		v, _ := p.params.Lookup(key)
		if v.IsList() {
			items, err := p.params.ResolveList(v.Items(), nil)
			if err != nil {
				items = v.Items()
			}
			out = append(out, KeyValue{Key: key, Items: items})
			continue
		}
		text, err := p.params.Resolve(v.Text(), nil)
		if err != nil {
			text = v.Text()
		}
		out = append(out, KeyValue{Key: key, Value: text})
	}
	return out
}

// DumpParams logs every parameter at debug level.
func (p *Pipeline) DumpParams() *Pipeline {
	if !p.IsOk() {
		return p
	}
	for _, kv := range p.Resolved() {
		if kv.Items != nil {
			p.log.Debug("param", "key", kv.Key, "items", kv.Items)
			continue
		}
		p.log.Debug("param", "key", kv.Key, "value", kv.Value)
	}
	return p
}

// ChangeFolder makes path the working directory of later commands. In test
// mode a missing folder is accepted since earlier steps only pretended to
// create it.
func (p *Pipeline) ChangeFolder(path string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	dir := p.Prep(path)
	if !p.IsOk() {
		return p
	}
	dir = p.abs(dir)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		if !mode.DryRun(p.mode, false) {
			p.status.SetResult(status.FolderNotExists, status.Context{"Folder": dir})
			return p
		}
		p.log.Warn("folder does not exist", "folder", dir)
	}
	p.workDir = dir
	return p
}

// InFolder runs fn with path as working directory and restores the previous
// one afterwards.
func (p *Pipeline) InFolder(path string, fn func(*Pipeline)) *Pipeline {
	if !p.IsOk() {
		return p
	}
	prev := p.workDir
	defer func() { p.workDir = prev }()

	p.ChangeFolder(path)
	if p.IsOk() {
		fn(p)
	}
	return p
}

// WorkDir returns the current working directory of commands, "" meaning the
// directory of the process.
func (p *Pipeline) WorkDir() string {
	return p.workDir
}

// ActivateFob loads the named group, merges it into the parameters and
// remembers it as the active fob.
func (p *Pipeline) ActivateFob(name string) *Pipeline {
	if !p.IsOk() {
		return p
	}
	store := p.fobs
	if store == nil {
		store = fob.FileStore{Path: p.Prep("%FOB_FILE%")}
	}
	group, err := store.Load(name)
	if len(group) == 0 {
		ctx := status.Context{"Name": name}
		if err != nil {
			ctx["Error"] = err.Error()
		}
		p.status.SetResult(status.FobIsEmpty, ctx)
		return p
	}
	p.activeFob = group
	p.params.AddParams(group)
	p.log.Info("fob activated", "name", name, "keys", len(group))
	return p
}

// ActiveFob returns the parameters of the active fob.
func (p *Pipeline) ActiveFob() map[string]params.Value {
	out := make(map[string]params.Value, len(p.activeFob))
	for k, v := range p.activeFob {
		out[k] = v
	}
	return out
}

// Shell runs lines joined with " && ", locally or on the remote host. A
// supplied override code replaces the exit status outcome.
func (p *Pipeline) Shell(lines []string, remote bool, comment string, override ...status.Code) *Pipeline {
	if !p.IsOk() {
		return p
	}
	sh := p.command(comment)
	if remote {
		conn := p.connection()
		if conn == nil {
			return p
		}
		sh.SetConnection(conn)
	}
	if len(override) > 0 {
		sh.SetResultCode(override[0])
	}
	resolved := p.PrepList(lines)
	if !p.IsOk() {
		return p
	}
	sh.CmdBegin().CmdAdd(resolved...).CmdEnd(p.ctx, " && ", p.dryRun(remote)).ResultTo(p.status)
	return p
}

func (p *Pipeline) command(comment string) *shell.Shell {
	return p.exec.Shell().SetComment(comment).SetDir(p.workDir)
}

// abs anchors a relative local path at the working directory so Go-side
// file access sees what the commands see.
func (p *Pipeline) abs(path string) string {
	if path == "" || filepath.IsAbs(path) || p.workDir == "" {
		return path
	}
	return filepath.Join(p.workDir, path)
}

func (p *Pipeline) dryRun(remote bool) bool {
	return mode.DryRun(p.mode, remote)
}

// connection builds the remote descriptor from REMOTE_USER, REMOTE_HOST,
// REMOTE_PORT and REMOTE_SSL_KEY. A missing host fails the run.
func (p *Pipeline) connection() *shell.Connection {
	host := p.Prep(p.params.GetParam("REMOTE_HOST", ""))
	if host == "" {
		p.status.SetResult(status.ConfigurationError, status.Context{"Param": "REMOTE_HOST"})
		return nil
	}
	conn := &shell.Connection{
		Login:          p.Prep(p.params.GetParam("REMOTE_USER", "")),
		Host:           host,
		Port:           p.Prep(p.params.GetParam("REMOTE_PORT", "")),
		PrivateKeyPath: p.Prep(p.params.GetParam("REMOTE_SSL_KEY", "")),
	}
	if !p.IsOk() {
		return nil
	}
	return conn
}

// targetConnection builds the descriptor for a parsed login@host:/path.
func (p *Pipeline) targetConnection(t shell.Target) *shell.Connection {
	conn := &shell.Connection{
		Login:          t.Login,
		Host:           t.Host,
		Port:           p.Prep(p.params.GetParam("REMOTE_PORT", "")),
		PrivateKeyPath: p.Prep(p.params.GetParam("REMOTE_SSL_KEY", "")),
	}
	if conn.Host == "" {
		conn.Host = t.Connection
	}
	return conn
}
