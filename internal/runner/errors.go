package runner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolMissing means a required executable could not be started.
	ErrToolMissing = errors.New("required tool not found")

	// ErrToolFailed means an executable ran and exited with a non-zero status.
	ErrToolFailed = errors.New("tool exited with non-zero status")
)

// maxDiagnosticLines bounds how much tool output is quoted in an error.
const maxDiagnosticLines = 20

// ToolError describes a failed external invocation.
type ToolError struct {
	Step    string
	Command Command
	// Kind is ErrToolMissing or ErrToolFailed.
	Kind   error
	Result Result
	Cause  error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	if e.Step != "" {
		fmt.Fprintf(&b, "%s: ", e.Step)
	}
	switch {
	case errors.Is(e.Kind, ErrToolMissing):
		fmt.Fprintf(&b, "%s %q", e.Kind, e.Command.Name)
		if e.Cause != nil {
			fmt.Fprintf(&b, ": %v", e.Cause)
		}
	default:
		fmt.Fprintf(&b, "`%s` exited with status %d", e.Command, e.Result.ExitCode)
		if detail := Tail(e.Result.Stderr, maxDiagnosticLines); detail != "" {
			fmt.Fprintf(&b, "\n%s", detail)
		} else if detail := Tail(e.Result.Stdout, maxDiagnosticLines); detail != "" {
			fmt.Fprintf(&b, "\n%s", detail)
		}
	}
	return b.String()
}

func (e *ToolError) Unwrap() error {
	return e.Kind
}

// Tail returns at most n trailing non-empty lines of out.
func Tail(out []byte, n int) string {
	lines := strings.Split(strings.TrimRight(string(out), "\r\n\t "), "\n")
	var kept []string
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimRight(line, "\r"))
		}
	}
	if len(kept) > n {
		kept = append([]string{"..."}, kept[len(kept)-n:]...)
	}
	return strings.Join(kept, "\n")
}
