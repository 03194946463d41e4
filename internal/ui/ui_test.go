package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestConsoleWritesEveryLevel(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Title("uisys build")
	c.Step("Building libui...")
	c.Success("done")
	c.Warn("careful")
	c.Error("broken")
	c.Detail("artifacts: /out")

	out := buf.String()
	for _, want := range []string{"uisys build", "Building libui...", "done", "careful", "broken", "artifacts: /out", IconSuccess, IconError} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\n"); got != 6 {
		t.Errorf("expected 6 lines, got %d:\n%s", got, out)
	}
}

func TestDisabledSpinnerIsSilent(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, false)
	s.Start("configure libui")
	s.Stop()
	if buf.Len() != 0 {
		t.Errorf("disabled spinner wrote %q", buf.String())
	}
}

func TestSpinnerStartStop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, true)
	s.Stop()
	s.Start("configure libui")
	s.Start("build libui")
	s.Stop()
	s.Stop()
}
