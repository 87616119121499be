package shell

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// Request is a finalized command line handed to a Runner.
type Request struct {
	Command string
	// Dir is the working directory of the spawned process. Empty means the
	// current process directory.
	Dir string
}

// Output is what a Runner captured from a finished process.
type Output struct {
	Lines  []string
	Stderr string
}

// Runner spawns a command line and waits for it. A non-nil error means the
// command could not be started or exited with a non-zero status.
type Runner interface {
	Run(ctx context.Context, req Request) (Output, error)
}

// ProcessRunner runs command lines through the system shell. Standard output
// is captured line by line; both streams are also copied to the optional
// writers so long-running tools stay visible.
type ProcessRunner struct {
	// Shell overrides the interpreter. It is invoked as "<Shell> -c <cmd>".
	Shell  string
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = (*ProcessRunner)(nil)

// Run implements Runner.
func (r *ProcessRunner) Run(ctx context.Context, req Request) (Output, error) {
	name, args, err := determineShell(r.Shell)
	if err != nil {
		return Output{}, err
	}

	cmd := exec.CommandContext(ctx, name, append(args, req.Command)...)
	cmd.Dir = req.Dir

	var stderrBuf bytes.Buffer
	if r.Stderr != nil {
		cmd.Stderr = io.MultiWriter(r.Stderr, &stderrBuf)
	} else {
		cmd.Stderr = &stderrBuf
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, fmt.Errorf("open stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return Output{}, err
	}

	var lines []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		if r.Stdout != nil {
			fmt.Fprintln(r.Stdout, line)
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// keep the child from blocking on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
	}

	waitErr := cmd.Wait()
	out := Output{Lines: lines, Stderr: strings.TrimSpace(stderrBuf.String())}
	if waitErr != nil {
		return out, waitErr
	}
	return out, scanErr
}

func determineShell(explicit string) (string, []string, error) {
	if explicit != "" {
		return explicit, []string{"-c"}, nil
	}

	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, nil
	}

	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}, nil
	}

	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}

	return "", nil, fmt.Errorf("no suitable shell found")
}
