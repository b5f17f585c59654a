package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Command is one subprocess invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string // Appended to the current environment
}

// Output is what a finished subprocess left behind.
type Output struct {
	Code   int
	Stdout string
	Stderr string
}

// Runner runs subprocesses to completion.
// A non-zero exit code is reported in Output, not as an error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Output, error)
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct{}

// Run starts cmd and waits for it, capturing both output streams.
func (ExecRunner) Run(ctx context.Context, cmd Command) (Output, error) {
	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Output{}, fmt.Errorf("%s interrupted: %w", cmd.Path, ctxErr)
	}

	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return Output{}, fmt.Errorf("failed to start %s: %w", cmd.Path, err)
	}

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if exitErr != nil {
		out.Code = exitErr.ExitCode()
	}
	return out, nil
}
