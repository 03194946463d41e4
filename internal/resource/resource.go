// Package resource compiles the Windows resource script that static MinGW
// cross builds link alongside libui.
package resource

import (
	"context"
	"path/filepath"

	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/linkplan"
	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/internal/runner"
)

// LibraryName is the default link name of the compiled resources.
const LibraryName = "resource"

// Compiler runs windres for MinGW cross builds.
type Compiler struct {
	runner runner.CommandRunner
	// Script is the resource script, relative to the working directory.
	Script string
	// Prefix names the output archive lib<Prefix>.a and the registered
	// library.
	Prefix string
}

// NewCompiler creates a resource compiler.
func NewCompiler(r runner.CommandRunner, script, prefix string) *Compiler {
	if script == "" {
		script = "resource.rc"
	}
	if prefix == "" {
		prefix = LibraryName
	}
	return &Compiler{runner: r, Script: script, Prefix: prefix}
}

// Windres returns the windres executable for target, if resources apply to
// this combination of features, target and host.
func Windres(features config.Features, target platform.Triple, host platform.Host) (string, bool) {
	if !features.Static || host.IsWindows() {
		return "", false
	}
	prefix, ok := platform.MinGWPrefix(target)
	if !ok {
		return "", false
	}
	return prefix + "-windres", true
}

// Archive returns the path of the compiled resource archive.
func (c *Compiler) Archive(artifactDir string) string {
	return filepath.Join(artifactDir, "lib"+c.Prefix+".a")
}

// Compile compiles the resource script into artifactDir and registers the
// resource library with plan. It reports whether anything was compiled.
func (c *Compiler) Compile(ctx context.Context, features config.Features, target platform.Triple, host platform.Host, artifactDir string, plan *linkplan.Plan) (bool, error) {
	windres, ok := Windres(features, target, host)
	if !ok {
		return false, nil
	}

	cmd := runner.Command{
		Name: windres,
		Args: []string{
			"--input", c.Script,
			"--output-format=coff",
			"--output=" + c.Archive(artifactDir),
		},
	}
	if _, err := runner.Must(ctx, c.runner, "compile "+c.Script, cmd); err != nil {
		return false, err
	}

	plan.AddLibrary(c.Prefix, linkplan.KindStatic)
	return true, nil
}
