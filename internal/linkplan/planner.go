package linkplan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/native"
	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/internal/runner"
)

// ErrMalformedOutput means an external tool printed something that breaks
// its output contract.
var ErrMalformedOutput = errors.New("malformed tool output")

// Options configures a Planner.
type Options struct {
	PkgConfig      string
	ToolkitPackage string
	// WindowsLibs are appended for static Windows targets.
	WindowsLibs []string
}

// Planner builds the link plan for a native build result.
type Planner struct {
	runner runner.CommandRunner
	opts   Options
}

// NewPlanner creates a planner.
func NewPlanner(r runner.CommandRunner, opts Options) *Planner {
	if opts.PkgConfig == "" {
		opts.PkgConfig = "pkg-config"
	}
	if opts.ToolkitPackage == "" {
		opts.ToolkitPackage = "gtk+-3.0"
	}
	if opts.WindowsLibs == nil {
		opts.WindowsLibs = config.DefaultWindowsLibs
	}
	return &Planner{runner: r, opts: opts}
}

// Plan computes the link plan. The artifact directory is the only search
// path and libui is always the first library; static builds append the
// toolkit's system libraries.
func (p *Planner) Plan(ctx context.Context, res native.Result, target platform.Triple, features config.Features) (*Plan, error) {
	if res.ArtifactDir == "" {
		return nil, fmt.Errorf("native build produced no artifact directory")
	}

	plan := &Plan{}
	plan.AddSearchPath(res.ArtifactDir)

	primary := platform.FamilyOf(target).PrimaryLibrary
	kind := KindDynamic
	if features.Static {
		kind = KindStatic
	}
	plan.AddLibrary(primary, kind)

	if !features.Static {
		return plan, nil
	}

	switch {
	case target.IsUnixLike():
		libs, err := p.toolkitLibs(ctx)
		if err != nil {
			return nil, err
		}
		for _, lib := range libs {
			plan.AddLibrary(lib, KindDynamic)
		}
	case target.OS == platform.OSWindows:
		for _, lib := range p.opts.WindowsLibs {
			plan.AddLibrary(lib, KindDynamic)
		}
	}

	return plan, nil
}

// toolkitLibs asks pkg-config for the GUI toolkit's link flags.
func (p *Planner) toolkitLibs(ctx context.Context) ([]string, error) {
	cmd := runner.Command{
		Name: p.opts.PkgConfig,
		Args: []string{"--libs", p.opts.ToolkitPackage},
	}
	res, err := runner.Must(ctx, p.runner, "query "+p.opts.ToolkitPackage+" link flags", cmd)
	if err != nil {
		return nil, err
	}
	return ParseLibs(string(res.Stdout))
}

// ParseLibs extracts library names from pkg-config --libs output. Tokens of
// two characters or fewer are ignored; every longer token must be a -l flag.
func ParseLibs(out string) ([]string, error) {
	var libs []string
	for _, tok := range strings.Fields(out) {
		if len(tok) <= 2 {
			continue
		}
		if !strings.HasPrefix(tok, "-l") {
			return nil, fmt.Errorf("%w: pkg-config token %q is not a -l flag", ErrMalformedOutput, tok)
		}
		libs = append(libs, tok[2:])
	}
	return libs, nil
}
