package runner

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"sync"
)

// Fake is a CommandRunner that records invocations and answers them from
// registered stubs instead of spawning processes. Commands with no matching
// stub succeed with empty output.
type Fake struct {
	mu    sync.Mutex
	calls []Command
	stubs []stub
}

type stub struct {
	name   string
	prefix []string
	fn     func(Command) (Result, error)
}

// NewFake creates an empty fake runner.
func NewFake() *Fake {
	return &Fake{}
}

// Respond answers commands named name whose arguments start with prefix.
func (f *Fake) Respond(name string, prefix []string, res Result) *Fake {
	return f.On(name, prefix, func(Command) (Result, error) { return res, nil })
}

// Fail makes matching commands exit with code and stderr.
func (f *Fake) Fail(name string, prefix []string, code int, stderr string) *Fake {
	return f.Respond(name, prefix, Result{ExitCode: code, Stderr: []byte(stderr)})
}

// Missing makes every command named name fail to start.
func (f *Fake) Missing(name string) *Fake {
	return f.On(name, nil, func(Command) (Result, error) {
		return Result{}, fmt.Errorf("failed to start %s: %w", name, exec.ErrNotFound)
	})
}

// On registers a handler for matching commands. The stub with the longest
// matching argument prefix wins; later registrations win ties.
func (f *Fake) On(name string, prefix []string, fn func(Command) (Result, error)) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stubs = append(f.stubs, stub{name: name, prefix: prefix, fn: fn})
	return f
}

// Run implements CommandRunner.
func (f *Fake) Run(ctx context.Context, cmd Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	var best *stub
	for i := range f.stubs {
		s := &f.stubs[i]
		if s.name != cmd.Name || len(s.prefix) > len(cmd.Args) {
			continue
		}
		if !slices.Equal(s.prefix, cmd.Args[:len(s.prefix)]) {
			continue
		}
		if best == nil || len(s.prefix) >= len(best.prefix) {
			best = s
		}
	}
	f.mu.Unlock()

	if best == nil {
		return Result{}, nil
	}
	return best.fn(cmd)
}

// Calls returns every recorded command in invocation order.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Lines returns the recorded commands rendered with Command.String.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Called reports whether a command named name with the given argument prefix
// was run.
func (f *Fake) Called(name string, prefix ...string) bool {
	for _, c := range f.Calls() {
		if c.Name == name && len(c.Args) >= len(prefix) && slices.Equal(prefix, c.Args[:len(prefix)]) {
			return true
		}
	}
	return false
}

// CalledWith reports whether any recorded command line contains substr.
func (f *Fake) CalledWith(substr string) bool {
	for _, line := range f.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
