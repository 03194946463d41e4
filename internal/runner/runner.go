// Package runner abstracts external process execution so that every build step
// can be driven against a real toolchain or a recorded fake.
package runner

import (
	"context"
	"strings"
)

// Command describes a single external process invocation.
type Command struct {
	// Name is the executable, resolved through PATH.
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env is appended to the parent environment.
	Env []string

	// Inherit streams the child's output to the terminal while it runs.
	// Output is captured either way.
	Inherit bool
}

// String renders the command line for diagnostics.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"") {
			a = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Result is the outcome of a process that started and exited.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Success reports whether the process exited with status zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// CommandRunner runs external processes.
//
// Run returns an error only when the process could not be started or the
// context was cancelled. A non-zero exit is reported through Result and left
// to the caller to classify.
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Must runs cmd and converts spawn failures and non-zero exits into a
// *ToolError. step names the build step for the diagnostic.
func Must(ctx context.Context, r CommandRunner, step string, cmd Command) (Result, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		return res, &ToolError{Step: step, Command: cmd, Kind: ErrToolMissing, Cause: err}
	}
	if !res.Success() {
		return res, &ToolError{Step: step, Command: cmd, Kind: ErrToolFailed, Result: res}
	}
	return res, nil
}
