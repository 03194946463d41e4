// Package orchestrator sequences the build steps that prepare libui for
// linking and emits the resulting link plan.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dosanma1/uisys/internal/bindgen"
	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/linkplan"
	"github.com/dosanma1/uisys/internal/native"
	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/internal/resource"
	"github.com/dosanma1/uisys/internal/runner"
	"github.com/dosanma1/uisys/internal/source"
)

// Reporter receives human readable progress. Link directives never go
// through it.
type Reporter interface {
	Step(msg string)
	Success(msg string)
	Detail(msg string)
}

type nopReporter struct{}

func (nopReporter) Step(string)    {}
func (nopReporter) Success(string) {}
func (nopReporter) Detail(string)  {}

// Options configures a run. Every value is resolved by the caller before
// the run starts.
type Options struct {
	Config   *config.Config
	Features config.Features
	Target   platform.Triple
	Host     platform.Host
	// WorkDir is the project root; relative paths in Config resolve
	// against it.
	WorkDir string
	// OutDir receives the build tree and generated files.
	OutDir string

	// Directives receives the link directives. Nil discards them.
	Directives io.Writer
	// SkipBindings disables binding generation.
	SkipBindings bool
	// SkipCgoFile disables writing the cgo flags file.
	SkipCgoFile bool

	Progress native.Progress
	Reporter Reporter
}

// Report describes what a run did.
type Report struct {
	Bindings     string
	Functions    []string
	SourceAction source.Action
	Native       native.Result
	Plan         *linkplan.Plan
	// Resources is true when the Windows resource archive is linked.
	Resources bool
	CgoFile   string
}

// Orchestrator runs the build steps in order.
type Orchestrator struct {
	opts Options

	generator *bindgen.Generator
	acquirer  *source.Acquirer
	invoker   *native.Invoker
	planner   *linkplan.Planner
	resources *resource.Compiler
}

// New wires the build steps for opts.
func New(r runner.CommandRunner, opts Options) *Orchestrator {
	if opts.Config == nil {
		opts.Config = config.NewDefaultConfig()
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.Directives == nil {
		opts.Directives = io.Discard
	}
	if opts.OutDir == "" {
		opts.OutDir = opts.Config.Native.OutDir
	}
	opts.OutDir = resolve(opts.WorkDir, opts.OutDir)
	cfg := opts.Config

	return &Orchestrator{
		opts: opts,
		generator: bindgen.NewGenerator(r, bindgen.Options{
			Preprocessor: cfg.Tools.Preprocessor,
			WorkDir:      opts.WorkDir,
			Host:         opts.Host,
		}),
		acquirer: source.NewAcquirer(r, opts.WorkDir, cfg.Source.Path, cfg.Source.Marker, cfg.Tools.Git),
		invoker: native.NewInvoker(r, native.Options{
			SourceDir:   cfg.Source.Path,
			OutDir:      opts.OutDir,
			WorkDir:     opts.WorkDir,
			PrebuiltDir: cfg.Native.PrebuiltDir,
			CMake:       cfg.Tools.CMake,
			Generator:   cfg.Native.Generator,
			Progress:    opts.Progress,
		}),
		planner: linkplan.NewPlanner(r, linkplan.Options{
			PkgConfig:      cfg.Tools.PkgConfig,
			ToolkitPackage: cfg.Link.ToolkitPackage,
			WindowsLibs:    cfg.Link.WindowsLibs,
		}),
		resources: resource.NewCompiler(r, cfg.Resource.Script, cfg.Resource.Prefix),
	}
}

// OutDir returns the resolved output directory.
func (o *Orchestrator) OutDir() string {
	return o.opts.OutDir
}

// BindingSpec returns the binding generation input derived from the
// configuration.
func (o *Orchestrator) BindingSpec() bindgen.Spec {
	b := o.opts.Config.Bindings
	return bindgen.Spec{
		Header:      b.Header,
		OpaqueTypes: b.OpaqueTypes,
		IncludeDirs: b.IncludeDirs,
		Package:     b.Package,
		Target:      o.opts.Target,
	}
}

// Run performs a full build. Bindings are generated first so that a
// generation failure stops the run before any directive is printed.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	features := o.opts.Features
	rep := o.opts.Reporter

	if !o.opts.SkipBindings {
		if err := o.Bindings(ctx, report); err != nil {
			return nil, err
		}
	}

	if features.Fetch {
		rep.Step("Updating libui sources...")
	}
	action, err := o.acquirer.Acquire(ctx, features)
	if err != nil {
		return nil, fail(StepSource, err)
	}
	report.SourceAction = action
	if action != source.ActionSkipped {
		rep.Success(fmt.Sprintf("libui sources %s", action))
	}

	if features.Build {
		rep.Step(fmt.Sprintf("Building libui for %s (%s)...", o.opts.Target, features.Linkage()))
	}
	res, err := o.invoker.Invoke(ctx, features, o.opts.Target, o.opts.Host)
	if err != nil {
		return nil, fail(StepNative, err)
	}
	report.Native = res
	rep.Detail(fmt.Sprintf("artifacts: %s (%s)", res.ArtifactDir, res.Strategy))

	if err := o.plan(ctx, report, true); err != nil {
		return nil, err
	}
	return report, o.emit(report)
}

// Plan computes and emits the link plan without fetching, building or
// compiling anything. The artifact directory is where a build would put it.
func (o *Orchestrator) Plan(ctx context.Context) (*Report, error) {
	report := &Report{
		SourceAction: source.ActionSkipped,
		Native:       o.invoker.Locate(o.opts.Features, o.opts.Target),
	}
	if err := o.plan(ctx, report, false); err != nil {
		return nil, err
	}
	return report, o.emit(report)
}

// Bindings generates the bindings file into the output directory.
func (o *Orchestrator) Bindings(ctx context.Context, report *Report) error {
	spec := o.BindingSpec()
	o.opts.Reporter.Step(fmt.Sprintf("Generating bindings from %s...", spec.Header))

	out, err := o.generator.Translate(ctx, spec)
	if err != nil {
		return fail(StepBindings, err)
	}
	path, err := bindgen.Write(out, o.opts.OutDir)
	if err != nil {
		return fail(StepBindings, err)
	}
	report.Bindings = path
	report.Functions = out.Functions
	o.opts.Reporter.Success(fmt.Sprintf("Bindings written to %s (%d functions)", path, len(out.Functions)))
	return nil
}

func (o *Orchestrator) plan(ctx context.Context, report *Report, compile bool) error {
	features := o.opts.Features

	plan, err := o.planner.Plan(ctx, report.Native, o.opts.Target, features)
	if err != nil {
		return fail(StepLink, err)
	}
	report.Plan = plan

	if compile {
		ok, err := o.resources.Compile(ctx, features, o.opts.Target, o.opts.Host, report.Native.ArtifactDir, plan)
		if err != nil {
			return fail(StepResource, err)
		}
		report.Resources = ok
	} else if _, ok := resource.Windres(features, o.opts.Target, o.opts.Host); ok {
		plan.AddLibrary(o.resources.Prefix, linkplan.KindStatic)
		report.Resources = true
	}

	if err := plan.Check(platform.FamilyOf(o.opts.Target).PrimaryLibrary); err != nil {
		return fail(StepLink, err)
	}
	return nil
}

func (o *Orchestrator) emit(report *Report) error {
	if err := linkplan.WriteDirectives(o.opts.Directives, report.Plan); err != nil {
		return fail(StepEmit, err)
	}
	if o.opts.SkipCgoFile {
		return nil
	}
	path, err := linkplan.WriteCgo(report.Plan, o.opts.Config.Link.CgoPackage, o.opts.OutDir)
	if err != nil {
		return fail(StepEmit, err)
	}
	report.CgoFile = path
	return nil
}

func resolve(workDir, p string) string {
	if p == "" || filepath.IsAbs(p) || workDir == "" {
		return p
	}
	return filepath.Join(workDir, p)
}
