// Package bindgen generates purego bindings for a C header.
//
// The header is parsed and type checked by modernc.org/cc/v4, configured
// from the C compiler for the target and laid out under the target's ABI.
// A Go source file is emitted that mirrors the C types and binds every
// function at runtime.
package bindgen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"modernc.org/cc/v4"

	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/internal/runner"
	"github.com/dosanma1/uisys/pkg/xos"
)

// ErrGeneration means bindings could not be produced.
var ErrGeneration = errors.New("binding generation failed")

// FileName is the generated bindings file.
const FileName = "bindings.go"

// DefaultCompiler is the compiler driver used when none is configured.
const DefaultCompiler = "cc"

// Spec describes one binding generation.
type Spec struct {
	// Header is the C header to bind.
	Header string
	// OpaqueTypes are emitted without fields, regardless of their C
	// definition.
	OpaqueTypes []string
	IncludeDirs []string
	// Package is the Go package name of the generated file.
	Package string
	// Target selects the ABI used for type sizes and layout. An empty
	// target means the machine uisys runs on.
	Target platform.Triple
}

// Output is a generated bindings file held in memory.
type Output struct {
	Source []byte
	// Functions lists the C symbols bound by Register, in declaration order.
	Functions []string
	// Skipped lists functions that could not be bound, such as variadics.
	Skipped []string
}

// Options configures a Generator.
type Options struct {
	// Preprocessor is the C compiler driver asked for predefined macros
	// and include search paths. When it is the default and the target is
	// a MinGW cross target, the MinGW gcc is used instead.
	Preprocessor string
	// WorkDir is where the compiler runs; relative paths resolve against
	// it.
	WorkDir string
	Host    platform.Host
}

// Generator turns a C header into Go bindings.
type Generator struct {
	runner runner.CommandRunner
	opts   Options
}

// NewGenerator creates a generator.
func NewGenerator(r runner.CommandRunner, opts Options) *Generator {
	if opts.Preprocessor == "" {
		opts.Preprocessor = DefaultCompiler
	}
	return &Generator{runner: r, opts: opts}
}

// Write stores generated bindings in outDir atomically.
func Write(out *Output, outDir string) (string, error) {
	path := filepath.Join(outDir, FileName)
	if err := xos.WriteFileAll(path, out.Source, 0644); err != nil {
		return "", fmt.Errorf("%w: failed to write %s: %w", ErrGeneration, path, err)
	}
	return path, nil
}

// Translate produces the bindings for spec without writing them.
func (g *Generator) Translate(ctx context.Context, spec Spec) (*Output, error) {
	if spec.Header == "" {
		return nil, fmt.Errorf("%w: no header given", ErrGeneration)
	}
	if spec.Package == "" {
		spec.Package = "ui"
	}
	if spec.Target.Raw == "" {
		raw := platform.DefaultTriple()
		spec.Target = platform.Parse(raw, platform.InferOS(raw))
	}

	abi, err := targetABI(spec.Target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	tc, err := g.toolchain(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGeneration, err)
	}

	header := g.resolve(spec.Header)
	cfg := tc.config(abi, g.userDirs(spec))
	ast, err := cc.Translate(cfg, []cc.Source{
		{Name: "<predefined>", Value: cfg.Predefined},
		{Name: "<builtin>", Value: cc.Builtin},
		{Name: header},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGeneration, spec.Header, err)
	}

	out, err := Emit(ast, spec, g.origin(spec, tc))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrGeneration, spec.Header, err)
	}
	return out, nil
}

// targetABI returns the C type sizes and alignments of t.
func targetABI(t platform.Triple) (*cc.ABI, error) {
	goos, goarch, ok := t.GoTarget()
	if !ok {
		return nil, fmt.Errorf("no C ABI is known for target %s", t)
	}
	abi, err := cc.NewABI(goos, goarch)
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", t, err)
	}
	return abi, nil
}

func (g *Generator) resolve(path string) string {
	if filepath.IsAbs(path) || g.opts.WorkDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(g.opts.WorkDir, path)
}

// userDirs are the include directories given in spec, resolved.
func (g *Generator) userDirs(spec Spec) []string {
	dirs := make([]string, 0, len(spec.IncludeDirs))
	for _, dir := range spec.IncludeDirs {
		dirs = append(dirs, g.resolve(dir))
	}
	return dirs
}

// origin reports whether a declaration in the named file belongs to the
// bound library: the header's own directory tree and the configured include
// directories. Files under the compiler's system directories never do.
func (g *Generator) origin(spec Spec, tc *toolchain) func(file string) bool {
	roots := append([]string{filepath.Dir(g.resolve(spec.Header))}, g.userDirs(spec)...)
	return func(file string) bool {
		if !filepath.IsAbs(file) {
			return false
		}
		for _, dir := range tc.system {
			if within(dir, file) {
				return false
			}
		}
		for _, root := range roots {
			if within(root, file) {
				return true
			}
		}
		return false
	}
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
