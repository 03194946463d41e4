package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Exec runs commands with os/exec.
type Exec struct {
	// Out receives streamed output of inherited commands. Child stdout is sent
	// here as well, since our own stdout carries link directives.
	Out     io.Writer
	verbose bool
}

// NewExec creates a runner that streams every command's output when verbose
// is set, and only commands marked Inherit otherwise.
func NewExec(verbose bool) *Exec {
	return &Exec{Out: os.Stderr, verbose: verbose}
}

// Run executes cmd and waits for it to finish.
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	if cmd.Inherit || e.verbose {
		c.Stdin = os.Stdin
		c.Stdout = io.MultiWriter(&stdout, e.Out)
		c.Stderr = io.MultiWriter(&stderr, e.Out)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	err := c.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("failed to start %s: %w", cmd.Name, err)
}
