package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dosanma1/uisys/internal/linkplan"
	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/pkg/dl"
)

var (
	ErrArtifactMissing = errors.New("primary library not found")
	ErrMissingSymbols  = errors.New("library does not export bound functions")
)

// Symbols is an opened shared library.
type Symbols interface {
	dl.Exports
	Close() error
}

// Loader opens the shared library at path.
type Loader func(path string) (Symbols, error)

// CheckReport describes what Check found.
type CheckReport struct {
	ArtifactDir string
	// Library is the primary library file that was found.
	Library string
	// Loaded is true when the library was opened and its exports checked.
	Loaded    bool
	Functions int
	Missing   []string
}

// Check verifies that the artifact directory a build points at holds the
// primary library. For a dynamic library built for this machine it also
// loads the library and looks up every function the bindings declare.
// A nil load skips the export check.
func (o *Orchestrator) Check(ctx context.Context, load Loader) (*CheckReport, error) {
	features := o.opts.Features
	target := o.opts.Target
	res := o.invoker.Locate(features, target)

	lib := linkplan.Library{Name: platform.FamilyOf(target).PrimaryLibrary, Kind: linkplan.KindDynamic}
	if features.Static {
		lib.Kind = linkplan.KindStatic
	}

	report := &CheckReport{ArtifactDir: res.ArtifactDir}
	names := linkplan.ArtifactNames(target, lib)
	for _, name := range names {
		p := filepath.Join(res.ArtifactDir, name)
		if _, err := os.Stat(p); err == nil {
			report.Library = p
			break
		}
	}
	if report.Library == "" {
		return report, fail(StepCheck, fmt.Errorf("%w: none of %s in %s",
			ErrArtifactMissing, strings.Join(names, ", "), res.ArtifactDir))
	}
	o.opts.Reporter.Success(fmt.Sprintf("Found %s", report.Library))

	if load == nil || !linkplan.IsSharedObject(report.Library) || !o.native() {
		return report, nil
	}

	out, err := o.generator.Translate(ctx, o.BindingSpec())
	if err != nil {
		return report, fail(StepBindings, err)
	}
	syms, err := load(report.Library)
	if err != nil {
		return report, fail(StepCheck, err)
	}
	defer syms.Close()

	report.Loaded = true
	report.Functions = len(out.Functions)
	report.Missing = dl.Missing(syms, out.Functions)
	if len(report.Missing) > 0 {
		return report, fail(StepCheck, fmt.Errorf("%w: %s", ErrMissingSymbols, strings.Join(report.Missing, ", ")))
	}
	o.opts.Reporter.Success(fmt.Sprintf("All %d bound functions resolve", report.Functions))
	return report, nil
}

// native reports whether target binaries can be loaded on this machine.
func (o *Orchestrator) native() bool {
	here := platform.Parse(platform.DefaultTriple(), "")
	return o.opts.Host.OS == o.opts.Target.OS && o.opts.Target.Arch == here.Arch
}
