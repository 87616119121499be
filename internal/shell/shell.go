// Package shell builds command lines and runs them locally or over ssh.
//
// A Shell is a transient builder bound to an Executor: tokens are appended,
// CmdEnd joins them and runs the line, and ResultTo folds the outcome into a
// pipeline Status. Nothing in this package returns a failure as a panic; every
// outcome is either a nil error or a Status mutation.
package shell

import (
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/johnthesmith/cicd/internal/logger"
	"github.com/johnthesmith/cicd/internal/status"
)

// Diagnostic keys attached to a Status when a command fails.
const (
	OutputKey   = "Output"
	StderrKey   = "Stderr"
	CommandKey  = "Command"
	ErrorKey    = "Error"
	ExitCodeKey = "ExitCode"
)

// Invocation is one finalized command handed to the Executor.
type Invocation struct {
	Command    string
	Connection *Connection
	Dir        string
	DryRun     bool
	Comment    string
}

// Entry records an invocation the Executor has seen, spawned or not.
type Entry struct {
	Command string
	Remote  bool
	DryRun  bool
}

// Executor runs invocations through a Runner, suppressing the spawn for
// dry runs. It is used by one pipeline at a time.
type Executor struct {
	runner  Runner
	log     *logger.Logger
	history []Entry
}

// NewExecutor returns an Executor. A nil runner falls back to a
// ProcessRunner with no output mirroring.
func NewExecutor(runner Runner, log *logger.Logger) *Executor {
	if runner == nil {
		runner = &ProcessRunner{}
	}
	return &Executor{runner: runner, log: log}
}

// Execute wraps the command for the remote host when a connection is set
// and runs it unless DryRun is set. A dry run reports success with empty
// output.
func (e *Executor) Execute(ctx context.Context, inv Invocation) (Output, error) {
	line := Wrap(inv.Command, inv.Connection)
	remote := inv.Connection != nil
	e.history = append(e.history, Entry{Command: line, Remote: remote, DryRun: inv.DryRun})

	log := e.log.With("remote", remote, "dry_run", inv.DryRun)
	if inv.Comment != "" {
		log = log.With("comment", inv.Comment)
	}

	if inv.DryRun {
		log.Info("shell", "cmd", line)
		return Output{}, nil
	}

	log.Info("shell", "cmd", line, "dir", inv.Dir)
	out, err := e.runner.Run(ctx, Request{Command: line, Dir: inv.Dir})
	if err != nil {
		log.Error(err, "shell failed", "cmd", line, "stderr", out.Stderr)
	}
	return out, err
}

// History returns every invocation seen so far, in order.
func (e *Executor) History() []Entry {
	return append([]Entry(nil), e.history...)
}

// Shell returns a fresh builder bound to e.
func (e *Executor) Shell() *Shell {
	return &Shell{exec: e}
}

// Shell accumulates tokens for one command line.
type Shell struct {
	exec        *Executor
	conn        *Connection
	dir         string
	comment     string
	override    status.Code
	hasOverride bool

	tokens  []string
	command string
	dryRun  bool
	ran     bool
	out     Output
	err     error
}

// SetConnection targets a remote host. nil means local.
func (s *Shell) SetConnection(conn *Connection) *Shell {
	s.conn = conn
	return s
}

// SetDir sets the working directory of the spawned process.
func (s *Shell) SetDir(dir string) *Shell {
	s.dir = dir
	return s
}

// SetComment attaches a human readable note to the log entry.
func (s *Shell) SetComment(comment string) *Shell {
	s.comment = comment
	return s
}

// SetResultCode makes ResultTo force code instead of deriving one from the
// exit status.
func (s *Shell) SetResultCode(code status.Code) *Shell {
	s.override = code
	s.hasOverride = true
	return s
}

// CmdBegin clears the token list.
func (s *Shell) CmdBegin() *Shell {
	s.tokens = s.tokens[:0]
	return s
}

// CmdAdd appends raw tokens. Empty tokens are skipped.
func (s *Shell) CmdAdd(tokens ...string) *Shell {
	for _, t := range tokens {
		if t != "" {
			s.tokens = append(s.tokens, t)
		}
	}
	return s
}

// FileAdd appends a path quoted for the shell.
func (s *Shell) FileAdd(path string) *Shell {
	s.tokens = append(s.tokens, shellescape.Quote(path))
	return s
}

// FlagAdd appends "flag value" once per value, e.g. repeated --exclude.
func (s *Shell) FlagAdd(flag string, values []string) *Shell {
	for _, v := range values {
		s.tokens = append(s.tokens, flag, shellescape.Quote(v))
	}
	return s
}

// Tokens returns the current token list.
func (s *Shell) Tokens() []string {
	return append([]string(nil), s.tokens...)
}

// CmdEnd joins the tokens with sep and runs the resulting line.
func (s *Shell) CmdEnd(ctx context.Context, sep string, dryRun bool) *Shell {
	return s.Cmd(ctx, strings.Join(s.tokens, sep), dryRun)
}

// Cmd runs a ready command line.
func (s *Shell) Cmd(ctx context.Context, command string, dryRun bool) *Shell {
	s.command = command
	s.dryRun = dryRun
	s.out, s.err = s.exec.Execute(ctx, Invocation{
		Command:    command,
		Connection: s.conn,
		Dir:        s.dir,
		DryRun:     dryRun,
		Comment:    s.comment,
	})
	s.ran = true
	return s
}

// Command returns the last command line handed to the Executor, before
// remote wrapping.
func (s *Shell) Command() string {
	return s.command
}

// DryRun reports whether the last command was suppressed.
func (s *Shell) DryRun() bool {
	return s.dryRun
}

// IsOk reports whether the last command succeeded. A builder that never ran
// is OK.
func (s *Shell) IsOk() bool {
	return s.err == nil
}

// Err returns the failure of the last command.
func (s *Shell) Err() error {
	return s.err
}

// Lines returns the captured standard output lines.
func (s *Shell) Lines() []string {
	return append([]string(nil), s.out.Lines...)
}

// LineAfter returns the trimmed remainder of the first output line that
// contains marker, or "" when no line does.
func (s *Shell) LineAfter(marker string) string {
	for _, line := range s.out.Lines {
		if _, after, found := strings.Cut(line, marker); found {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

// ResultTo merges the outcome into st. With a result code set through
// SetResultCode that code is forced; otherwise a failure is recorded as
// status.ShellError with the captured output attached.
func (s *Shell) ResultTo(st *status.Status) *Shell {
	if !s.ran {
		return s
	}
	if s.hasOverride {
		st.SetCode(s.override)
		return s
	}
	if s.err == nil {
		return s
	}

	ctx := status.Context{
		OutputKey:  s.Lines(),
		CommandKey: s.command,
		ErrorKey:   s.err.Error(),
	}
	if s.out.Stderr != "" {
		ctx[StderrKey] = s.out.Stderr
	}
	var exitErr *exec.ExitError
	if errors.As(s.err, &exitErr) {
		ctx[ExitCodeKey] = exitErr.ExitCode()
	}
	st.SetResult(status.ShellError, ctx)
	return s
}
