package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/orchestrator"
	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/internal/runner"
	"github.com/dosanma1/uisys/internal/ui"
)

// targetFlags are shared by every command that resolves a build.
type targetFlags struct {
	fetch    bool
	build    bool
	static   bool
	target   string
	targetOS string
	outDir   string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.fetch, "fetch", false, "Initialize or update the libui submodule")
	cmd.Flags().BoolVar(&f.build, "build", false, "Build libui from source instead of using the prebuilt directory")
	cmd.Flags().BoolVar(&f.static, "static", false, "Link libui and its system dependencies statically")
	cmd.Flags().StringVar(&f.target, "target", "", "Target triple (default $UISYS_TARGET or this machine)")
	cmd.Flags().StringVar(&f.targetOS, "target-os", "", "Target OS tag (default $UISYS_TARGET_OS or inferred)")
	cmd.Flags().StringVar(&f.outDir, "out-dir", "", "Output directory (default $UISYS_OUT_DIR or native.out_dir)")
}

// overrides keeps only the flags the user actually set, so unset flags
// fall through to the environment and the config file.
func (f *targetFlags) overrides(cmd *cobra.Command) config.Overrides {
	o := config.Overrides{OutDir: f.outDir}
	if cmd.Flags().Changed("fetch") {
		o.Fetch = &f.fetch
	}
	if cmd.Flags().Changed("build") {
		o.Build = &f.build
	}
	if cmd.Flags().Changed("static") {
		o.Static = &f.static
	}
	return o
}

// environment is everything a command reads from the process, resolved once.
type environment struct {
	workDir  string
	config   *config.Config
	features config.Features
	target   platform.Triple
	host     platform.Host
	outDir   string
}

func loadConfig() (*config.Config, string, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get current directory: %w", err)
	}
	path := configPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, workDir, nil
}

func resolveEnvironment(cmd *cobra.Command, flags *targetFlags) (*environment, error) {
	cfg, workDir, err := loadConfig()
	if err != nil {
		return nil, err
	}

	env := platform.OSEnv()
	resolver := config.NewResolver(cfg, env)
	o := flags.overrides(cmd)

	features, err := resolver.ResolveFeatures(o)
	if err != nil {
		return nil, err
	}
	target := resolver.ResolveTarget(flags.target, flags.targetOS)

	return &environment{
		workDir:  workDir,
		config:   cfg,
		features: features,
		target:   target,
		host:     platform.DetectHost(env),
		outDir:   resolver.ResolveOutDir(o),
	}, nil
}

func (e *environment) orchestrator(console *ui.Console, opts orchestrator.Options) *orchestrator.Orchestrator {
	opts.Config = e.config
	opts.Features = e.features
	opts.Target = e.target
	opts.Host = e.host
	opts.WorkDir = e.workDir
	opts.OutDir = e.outDir
	opts.Reporter = console
	opts.Progress = ui.NewSpinner(console.Writer(), !verbose)
	return orchestrator.New(runner.NewExec(verbose), opts)
}

func (e *environment) describe(console *ui.Console) {
	console.Detail(fmt.Sprintf("target:   %s (%s)", e.target, e.target.OS))
	console.Detail(fmt.Sprintf("host:     %s", e.host.Name))
	console.Detail(fmt.Sprintf("features: %s", e.features))
}

// signalContext is cancelled on Ctrl-C so running tools are killed.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
