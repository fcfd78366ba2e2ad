// Package audit runs ecosystem-specific command-line audit tools and parses
// their JSON output into normalized findings.
//
// Providers in this package never fail: a missing binary, a timed-out
// subprocess, a non-zero exit whose output is unusable, or malformed JSON all
// degrade to an empty finding list. The scan keeps whatever the other
// providers gathered.
package audit

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single audit tool invocation.
const DefaultTimeout = 30 * time.Second

// Exit codes reported for execution failures, following shell conventions.
const (
	ExitTimeout  = 124
	ExitNotFound = 127
)

// Result holds the outcome of one tool invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes an audit tool in a working directory and captures its
// output. The interface exists so tests can substitute canned output for
// real subprocesses.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (Result, error)
}

// execRunner invokes tools via os/exec with a per-invocation timeout.
type execRunner struct {
	timeout time.Duration
}

// NewRunner creates a Runner that bounds each invocation by timeout.
// A non-positive timeout falls back to DefaultTimeout.
func NewRunner(timeout time.Duration) Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &execRunner{timeout: timeout}
}

// Run executes the tool and captures stdout/stderr. Audit tools exit non-zero
// when they find vulnerabilities, so a non-zero exit still returns the
// captured output; callers decide usability by parsing it. Timeout and
// missing-binary failures are surfaced through ExitCode 124/127.
func (r *execRunner) Run(ctx context.Context, dir, name string, args ...string) (Result, error) {
	rctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(rctx, name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case rctx.Err() == context.DeadlineExceeded:
			res.ExitCode = ExitTimeout
		case errors.Is(err, exec.ErrNotFound):
			res.ExitCode = ExitNotFound
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
		default:
			res.ExitCode = 1
		}
	}

	return res, err
}
