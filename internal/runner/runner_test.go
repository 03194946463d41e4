package runner

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

func TestCommandString(t *testing.T) {
	cmd := Command{Name: "cmake", Args: []string{"--build", "out dir", ""}}
	want := `cmake --build "out dir" ""`
	if got := cmd.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestMustClassifiesFailures(t *testing.T) {
	ctx := context.Background()
	fake := NewFake().
		Missing("git").
		Fail("cmake", nil, 2, "CMake Error: boom\n")

	_, err := Must(ctx, fake, "fetch source", Command{Name: "git", Args: []string{"version"}})
	if !errors.Is(err, ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
	if !strings.Contains(err.Error(), "fetch source") {
		t.Errorf("diagnostic should name the step: %v", err)
	}

	_, err = Must(ctx, fake, "native build", Command{Name: "cmake", Args: []string{"--build", "."}})
	if !errors.Is(err, ErrToolFailed) {
		t.Fatalf("expected ErrToolFailed, got %v", err)
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if toolErr.Result.ExitCode != 2 {
		t.Errorf("exit code = %d, want 2", toolErr.Result.ExitCode)
	}
	if !strings.Contains(err.Error(), "CMake Error: boom") {
		t.Errorf("diagnostic should carry tool stderr: %v", err)
	}

	res, err := Must(ctx, fake, "query", Command{Name: "pkg-config", Args: []string{"--version"}})
	if err != nil || !res.Success() {
		t.Fatalf("unstubbed command should succeed, got %v", err)
	}
}

func TestFakeLongestPrefixWins(t *testing.T) {
	fake := NewFake().
		Respond("git", nil, Result{Stdout: []byte("generic")}).
		Respond("git", []string{"submodule", "update"}, Result{Stdout: []byte("update")}).
		Respond("git", []string{"submodule"}, Result{Stdout: []byte("submodule")})

	res, _ := fake.Run(context.Background(), Command{Name: "git", Args: []string{"submodule", "update", "--init"}})
	if string(res.Stdout) != "update" {
		t.Errorf("got %q, want the longest matching stub", res.Stdout)
	}
	res, _ = fake.Run(context.Background(), Command{Name: "git", Args: []string{"version"}})
	if string(res.Stdout) != "generic" {
		t.Errorf("got %q, want the catch-all stub", res.Stdout)
	}
	if !fake.Called("git", "submodule", "update") {
		t.Error("Called should find the recorded submodule command")
	}
	if len(fake.Calls()) != 2 {
		t.Errorf("recorded %d calls, want 2", len(fake.Calls()))
	}
}

func TestTail(t *testing.T) {
	out := []byte("a\n\nb\nc\nd\n")
	if got := Tail(out, 2); got != "...\nc\nd" {
		t.Errorf("Tail = %q", got)
	}
	if got := Tail(nil, 3); got != "" {
		t.Errorf("Tail(nil) = %q", got)
	}
}

func TestExecReportsExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	r := NewExec(false)
	res, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2; exit 3"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", res.ExitCode)
	}
	if strings.TrimSpace(string(res.Stdout)) != "out" || strings.TrimSpace(string(res.Stderr)) != "err" {
		t.Errorf("captured stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
}

func TestExecMissingTool(t *testing.T) {
	r := NewExec(false)
	_, err := r.Run(context.Background(), Command{Name: "uisys-definitely-not-a-tool"})
	if err == nil {
		t.Fatal("expected a start error")
	}
	_, err = Must(context.Background(), r, "query", Command{Name: "uisys-definitely-not-a-tool"})
	if !errors.Is(err, ErrToolMissing) {
		t.Fatalf("expected ErrToolMissing, got %v", err)
	}
}
