// Package native builds libui with CMake, or locates a prebuilt copy.
package native

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/internal/runner"
)

// Options configures an Invoker.
type Options struct {
	// SourceDir is the libui checkout.
	SourceDir string
	// OutDir is the CMake output root; the build tree goes in OutDir/build.
	OutDir string
	// WorkDir resolves relative paths and hosts the prebuilt directory.
	WorkDir string
	// PrebuiltDir is used when building from source is disabled.
	PrebuiltDir string
	CMake       string
	// Generator is passed to cmake -G when non-empty.
	Generator string
	Progress  Progress
}

// Invoker produces the native artifact directory.
type Invoker struct {
	runner runner.CommandRunner
	opts   Options
}

// NewInvoker creates an invoker. Relative directories in opts are resolved
// against opts.WorkDir.
func NewInvoker(r runner.CommandRunner, opts Options) *Invoker {
	if opts.Progress == nil {
		opts.Progress = noProgress{}
	}
	if opts.CMake == "" {
		opts.CMake = "cmake"
	}
	if opts.PrebuiltDir == "" {
		opts.PrebuiltDir = "lib"
	}
	opts.SourceDir = resolve(opts.WorkDir, opts.SourceDir)
	opts.OutDir = resolve(opts.WorkDir, opts.OutDir)
	opts.PrebuiltDir = resolve(opts.WorkDir, opts.PrebuiltDir)
	return &Invoker{runner: r, opts: opts}
}

// Invoke builds libui from source when features.Build is set and otherwise
// returns the prebuilt directory without checking its contents. Any non-zero
// exit from CMake is fatal.
func (i *Invoker) Invoke(ctx context.Context, features config.Features, target platform.Triple, host platform.Host) (Result, error) {
	if !features.Build {
		return i.Locate(features, target), nil
	}

	buildDir := i.BuildDir()
	if err := os.MkdirAll(buildDir, 0755); err != nil {
		return Result{}, fmt.Errorf("failed to create build directory: %w", err)
	}

	steps := []struct {
		name string
		args []string
	}{
		{"configure libui", i.ConfigureArgs(features, target, host)},
		{"build libui", i.BuildArgs()},
	}
	for _, step := range steps {
		cmd := runner.Command{Name: i.opts.CMake, Args: step.args, Dir: buildDir}
		i.opts.Progress.Start(step.name)
		_, err := runner.Must(ctx, i.runner, step.name, cmd)
		i.opts.Progress.Stop()
		if err != nil {
			return Result{}, err
		}
	}

	return i.Locate(features, target), nil
}

// Locate returns the result Invoke produces for features and target without
// running anything.
func (i *Invoker) Locate(features config.Features, target platform.Triple) Result {
	if !features.Build {
		return Result{ArtifactDir: i.opts.PrebuiltDir, Strategy: StrategyPrebuilt}
	}
	return Result{ArtifactDir: ArtifactDir(i.opts.OutDir, target), Strategy: StrategySource}
}

// BuildDir is the CMake binary directory.
func (i *Invoker) BuildDir() string {
	return filepath.Join(i.opts.OutDir, "build")
}

// PrebuiltDir is the fallback artifact directory.
func (i *Invoker) PrebuiltDir() string {
	return i.opts.PrebuiltDir
}

// ConfigureArgs returns the CMake configure arguments for a release build.
func (i *Invoker) ConfigureArgs(features config.Features, target platform.Triple, host platform.Host) []string {
	args := []string{i.opts.SourceDir}
	if i.opts.Generator != "" {
		args = append(args, "-G", i.opts.Generator)
	}
	args = append(args,
		"-DCMAKE_BUILD_TYPE=Release",
		"-DCMAKE_INSTALL_PREFIX="+i.opts.OutDir,
	)
	if features.Static {
		args = append(args, "-DBUILD_SHARED_LIBS=OFF")
	}
	args = append(args, crossArgs(target, host)...)
	if flags := CXXFlags(features, target); len(flags) > 0 {
		args = append(args, "-DCMAKE_CXX_FLAGS="+strings.Join(flags, " "))
	}
	return args
}

// BuildArgs returns the CMake build arguments. The default target is built,
// so no --target is passed.
func (i *Invoker) BuildArgs() []string {
	return []string{"--build", i.BuildDir(), "--config", "Release"}
}

// CXXFlags returns the extra C++ flags for target.
func CXXFlags(features config.Features, target platform.Triple) []string {
	flags := append([]string(nil), platform.FamilyOf(target).CXXFlags...)
	if features.Static && target.OS == platform.OSWindows {
		flags = append(flags, platform.NarrowingShim)
	}
	return flags
}

// ArtifactDir is where libui's CMake project places its libraries under the
// output root. Visual Studio generators add a per-configuration directory.
func ArtifactDir(outDir string, target platform.Triple) string {
	return filepath.Join(outDir, platform.FamilyOf(target).OutputSubdir)
}

// crossArgs points CMake at the MinGW cross toolchain when building a
// Windows GNU target from another OS.
func crossArgs(target platform.Triple, host platform.Host) []string {
	prefix, ok := platform.MinGWPrefix(target)
	if !ok || host.IsWindows() {
		return nil
	}
	return []string{
		"-DCMAKE_SYSTEM_NAME=Windows",
		"-DCMAKE_C_COMPILER=" + prefix + "-gcc",
		"-DCMAKE_CXX_COMPILER=" + prefix + "-g++",
		"-DCMAKE_RC_COMPILER=" + prefix + "-windres",
	}
}

func resolve(workDir, p string) string {
	if p == "" || filepath.IsAbs(p) || workDir == "" {
		return p
	}
	return filepath.Join(workDir, p)
}
