// Package source keeps the libui git submodule checked out.
package source

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/runner"
)

// Acquirer initializes or updates the native source submodule.
type Acquirer struct {
	runner runner.CommandRunner
	// Dir is the submodule checkout, relative to WorkDir unless absolute.
	Dir string
	// Marker is the path under Dir whose existence means "already initialized".
	Marker string
	// WorkDir is the superproject root that git runs in.
	WorkDir string
	Git     string
}

// NewAcquirer creates an acquirer for the checkout at dir.
func NewAcquirer(r runner.CommandRunner, workDir, dir, marker, git string) *Acquirer {
	return &Acquirer{
		runner:  r,
		Dir:     dir,
		Marker:  marker,
		WorkDir: workDir,
		Git:     git,
	}
}

// Action reports what Acquire did.
type Action string

const (
	ActionSkipped     Action = "skipped"
	ActionInitialized Action = "initialized"
	ActionUpdated     Action = "updated"
)

// Acquire makes sure the source tree is present and current. It does nothing
// when fetching is disabled. Failures are fatal and not retried.
func (a *Acquirer) Acquire(ctx context.Context, features config.Features) (Action, error) {
	if !features.Fetch {
		return ActionSkipped, nil
	}

	if !a.initialized() {
		if _, err := runner.Must(ctx, a.runner, "check git installation", a.git("version")); err != nil {
			return "", err
		}
		if _, err := runner.Must(ctx, a.runner, "init libui submodule", a.git("submodule", "update", "--init")); err != nil {
			return "", err
		}
		return ActionInitialized, nil
	}

	if _, err := runner.Must(ctx, a.runner, "update libui submodule", a.git("submodule", "update", "--recursive")); err != nil {
		return "", err
	}
	return ActionUpdated, nil
}

// MarkerPath returns the absolute-or-relative path checked by Acquire.
func (a *Acquirer) MarkerPath() string {
	dir := a.Dir
	if !filepath.IsAbs(dir) && a.WorkDir != "" {
		dir = filepath.Join(a.WorkDir, dir)
	}
	return filepath.Join(dir, a.Marker)
}

func (a *Acquirer) initialized() bool {
	_, err := os.Stat(a.MarkerPath())
	return err == nil
}

func (a *Acquirer) git(args ...string) runner.Command {
	return runner.Command{
		Name:    a.Git,
		Args:    args,
		Dir:     a.WorkDir,
		Inherit: true,
	}
}
