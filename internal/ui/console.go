package ui

import (
	"fmt"
	"io"
	"os"
)

// Console prints styled status lines. It writes to stderr by default so
// stdout stays free for link directives.
type Console struct {
	w io.Writer
}

// NewConsole creates a console writing to w, or to stderr when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{w: w}
}

// Writer returns the underlying writer.
func (c *Console) Writer() io.Writer {
	return c.w
}

func (c *Console) Title(msg string) {
	fmt.Fprintf(c.w, "%s %s\n", IconPackage, TitleStyle.Render(msg))
}

func (c *Console) Step(msg string) {
	fmt.Fprintf(c.w, "%s %s\n", IconTool, StepStyle.Render(msg))
}

func (c *Console) Success(msg string) {
	fmt.Fprintf(c.w, "%s %s\n", IconSuccess, SuccessStyle.Render(msg))
}

func (c *Console) Warn(msg string) {
	fmt.Fprintf(c.w, "%s%s\n", IconWarning, WarningStyle.Render(msg))
}

func (c *Console) Error(msg string) {
	fmt.Fprintf(c.w, "%s %s\n", IconError, ErrorStyle.Render(msg))
}

// Detail prints an indented secondary line.
func (c *Console) Detail(msg string) {
	fmt.Fprintln(c.w, DetailStyle.Render(msg))
}
