// Package execx runs the external tools the pipeline delegates to (docker,
// cosign, syft, make). Commands are blocking child processes with no retry;
// dry-run mode short-circuits execution entirely.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/grokify/releaseconductor/pkg/model"
)

// Result holds the output from a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands.
type Runner struct {
	// DryRun skips execution and logs what would run.
	DryRun bool
	// Verbose echoes each command line before running it.
	Verbose bool
	// Dir is the working directory for every command.
	Dir string
	// Env entries are appended to the current environment. Values are never
	// echoed.
	Env map[string]string
	// Log receives progress lines. Defaults to os.Stderr.
	Log io.Writer
}

// New creates a Runner rooted at dir.
func New(dir string, dryRun, verbose bool) *Runner {
	return &Runner{
		DryRun:  dryRun,
		Verbose: verbose,
		Dir:     dir,
		Env:     make(map[string]string),
		Log:     os.Stderr,
	}
}

// Run executes program with args.
func (r *Runner) Run(ctx context.Context, program string, args ...string) (*Result, error) {
	return r.RunWithInput(ctx, "", program, args...)
}

// RunWithInput executes program with args, feeding input on stdin. Secrets
// should be passed via stdin or Env, never as arguments.
func (r *Runner) RunWithInput(ctx context.Context, input, program string, args ...string) (*Result, error) {
	line := program + " " + strings.Join(args, " ")

	if r.DryRun {
		r.logf("dry-run: would run: %s\n", line)
		return &Result{}, nil
	}
	if r.Verbose {
		r.logf("running: %s\n", line)
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = r.Dir
	cmd.Env = os.Environ()
	for k, v := range r.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("%w: %s: %s", model.ErrExternalTool, line, tail(result.Stderr))
	}
	return result, nil
}

func (r *Runner) logf(format string, args ...any) {
	w := r.Log
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, format, args...)
}

// tail returns the last few lines of s for error messages.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "\n")
}
