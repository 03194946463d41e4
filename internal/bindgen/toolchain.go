package bindgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/cc/v4"

	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/internal/runner"
)

// Search list markers printed by gcc and clang with -v.
const (
	quoteListStart  = `#include "..." search starts here:`
	systemListStart = "#include <...> search starts here:"
	searchListEnd   = "End of search list."
)

// toolchain is what the C compiler reports about itself.
type toolchain struct {
	predefined string
	// quote and system are the search lists for #include "..." and
	// #include <...>.
	quote  []string
	system []string
}

// Compiler returns the C compiler driver used for target. A default
// driver is swapped for the MinGW gcc when cross compiling to a MinGW
// target, the same toolchain the native build uses.
func (g *Generator) Compiler(target platform.Triple) string {
	if g.opts.Preprocessor != DefaultCompiler || g.opts.Host.IsWindows() {
		return g.opts.Preprocessor
	}
	if prefix, ok := platform.MinGWPrefix(target); ok {
		return prefix + "-gcc"
	}
	return g.opts.Preprocessor
}

// CompilerCommand returns the invocation that prints the compiler's
// predefined macros on stdout and its include search lists on stderr.
func (g *Generator) CompilerCommand(spec Spec) runner.Command {
	return runner.Command{
		Name: g.Compiler(spec.Target),
		Args: []string{"-x", "c", "-dM", "-E", "-v", os.DevNull},
		Dir:  g.opts.WorkDir,
		Env:  []string{"LC_ALL=C"},
	}
}

func (g *Generator) toolchain(ctx context.Context, spec Spec) (*toolchain, error) {
	cmd := g.CompilerCommand(spec)
	res, err := runner.Must(ctx, g.runner, "query "+cmd.Name, cmd)
	if err != nil {
		return nil, err
	}
	tc := parseToolchain(res)
	if tc.predefined == "" {
		return nil, fmt.Errorf("%s reported no predefined macros", cmd.Name)
	}
	return tc, nil
}

func parseToolchain(res runner.Result) *toolchain {
	tc := &toolchain{}

	var macros []string
	for _, line := range lines(res.Stdout) {
		if strings.HasPrefix(line, "#") {
			macros = append(macros, line)
		}
	}
	if len(macros) > 0 {
		tc.predefined = strings.Join(macros, "\n") + "\n"
	}

	var list *[]string
	for _, line := range lines(res.Stderr) {
		switch {
		case line == quoteListStart:
			list = &tc.quote
		case line == systemListStart:
			list = &tc.system
		case line == searchListEnd:
			list = nil
		case list != nil && strings.HasPrefix(line, " "):
			dir := strings.TrimSpace(line)
			if strings.HasSuffix(dir, "(framework directory)") {
				continue
			}
			*list = append(*list, filepath.Clean(dir))
		}
	}
	return tc
}

func lines(b []byte) []string {
	out := strings.Split(string(b), "\n")
	for i, line := range out {
		out[i] = strings.TrimSuffix(line, "\r")
	}
	return out
}

// config builds the parser configuration. User include directories are
// searched first for both include forms, as with -I.
func (tc *toolchain) config(abi *cc.ABI, userDirs []string) *cc.Config {
	quote := []string{""}
	quote = append(quote, userDirs...)
	quote = append(quote, tc.quote...)
	quote = append(quote, tc.system...)

	system := append([]string{}, userDirs...)
	system = append(system, tc.system...)

	return &cc.Config{
		ABI:             abi,
		Predefined:      tc.predefined,
		IncludePaths:    quote,
		SysIncludePaths: system,
		Header:          true,
	}
}
