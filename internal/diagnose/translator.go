// Package diagnose turns tool failures into suggestions a user can act on.
package diagnose

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/dosanma1/uisys/internal/bindgen"
	"github.com/dosanma1/uisys/internal/linkplan"
	"github.com/dosanma1/uisys/internal/runner"
)

var (
	pkgNotFound   = regexp.MustCompile(`Package '?([\w.+-]+)'?,? .*not found`)
	missingHeader = regexp.MustCompile(`fatal error: ([^:\s]+): No such file or directory`)
	cmakeCompiler = regexp.MustCompile(`No CMAKE_(C|CXX|RC)_COMPILER could be found`)
	includeLookup = regexp.MustCompile(`include file not found: [<"]([^>"]+)[>"]`)
)

// Translator converts build errors to hints.
type Translator struct{}

// NewTranslator creates a new error translator.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate returns a one-line suggestion for err, or "" when there is
// nothing useful to add.
func (t *Translator) Translate(err error) string {
	var toolErr *runner.ToolError
	if errors.As(err, &toolErr) {
		if errors.Is(toolErr.Kind, runner.ErrToolMissing) {
			return t.translateMissingTool(toolErr.Command.Name)
		}
		return t.translateToolOutput(toolErr)
	}

	switch {
	case errors.Is(err, linkplan.ErrMalformedOutput):
		return "pkg-config printed something other than -l flags. Check PKG_CONFIG_PATH and the toolkit .pc file."
	case errors.Is(err, bindgen.ErrGeneration):
		if m := includeLookup.FindStringSubmatch(err.Error()); len(m) > 1 {
			return fmt.Sprintf("Header %s was not found. Add its directory to bindings.include_dirs.", m[1])
		}
		return "The header could not be translated. Run 'uisys bindgen --verbose' to see the compiler configuration."
	}
	return ""
}

// translateMissingTool names the package that usually provides a tool.
func (t *Translator) translateMissingTool(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), ".exe")
	switch {
	case base == "git":
		return "Install git, or disable the fetch feature and provide libui sources yourself."
	case base == "cmake":
		return "Install CMake 3.x, or disable the build feature to use a prebuilt libui."
	case base == "pkg-config" || base == "pkgconf":
		return "Install pkg-config; it is needed for static builds on Linux and BSD."
	case strings.HasSuffix(base, "-windres"), strings.HasSuffix(base, "-mingw32-gcc"):
		return fmt.Sprintf("Install the MinGW-w64 cross toolchain that provides %s.", base)
	case base == "cc" || base == "gcc" || base == "clang":
		return "Install a C compiler, or point tools.preprocessor in uisys.yaml at one."
	}
	return fmt.Sprintf("Make sure %s is installed and on PATH.", base)
}

// translateToolOutput looks for well-known failures in the tool's output.
func (t *Translator) translateToolOutput(e *runner.ToolError) string {
	out := string(e.Result.Stderr) + "\n" + string(e.Result.Stdout)

	if m := pkgNotFound.FindStringSubmatch(out); len(m) > 1 {
		return fmt.Sprintf("Install the development package for %s (for example libgtk-3-dev), or set link.toolkit_package.", m[1])
	}
	if m := missingHeader.FindStringSubmatch(out); len(m) > 1 {
		return fmt.Sprintf("Header %s was not found. Add its directory to bindings.include_dirs.", m[1])
	}
	if m := cmakeCompiler.FindStringSubmatch(out); len(m) > 1 {
		return fmt.Sprintf("CMake found no %s compiler. Install one or pass the cross toolchain through --target.", compilerName(m[1]))
	}
	if strings.Contains(out, "not a git repository") {
		return "The project is not a git checkout, so the libui submodule cannot be fetched. Disable the fetch feature."
	}
	return ""
}

func compilerName(lang string) string {
	switch lang {
	case "CXX":
		return "C++"
	case "RC":
		return "resource"
	}
	return lang
}
