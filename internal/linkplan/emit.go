package linkplan

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dosanma1/uisys/pkg/xos"
)

// DirectivePrefix starts every link directive printed on stdout.
const DirectivePrefix = "uisys:"

// CgoFileName is the generated cgo flags file.
const CgoFileName = "zlink_uisys.go"

// directiveKind maps a library kind onto the directive vocabulary.
func directiveKind(k Kind) string {
	if k == KindStatic {
		return "static"
	}
	return "dylib"
}

// WriteDirectives prints the plan as link directives: search paths first,
// then libraries in plan order.
func WriteDirectives(w io.Writer, plan *Plan) error {
	for _, dir := range plan.SearchPaths {
		if _, err := fmt.Fprintf(w, "%slink-search=native=%s\n", DirectivePrefix, dir); err != nil {
			return err
		}
	}
	for _, lib := range plan.Libraries {
		if _, err := fmt.Fprintf(w, "%slink-lib=%s=%s\n", DirectivePrefix, directiveKind(lib.Kind), lib.Name); err != nil {
			return err
		}
	}
	return nil
}

// LDFlags returns the plan as linker flags in plan order.
func LDFlags(plan *Plan) []string {
	flags := make([]string, 0, len(plan.SearchPaths)+len(plan.Libraries))
	for _, dir := range plan.SearchPaths {
		flags = append(flags, "-L"+filepath.ToSlash(dir))
	}
	for _, lib := range plan.Libraries {
		flags = append(flags, "-l"+lib.Name)
	}
	return flags
}

// RenderCgo renders a Go source file for package pkg whose cgo preamble
// carries the plan's linker flags.
func RenderCgo(plan *Plan, pkg string) []byte {
	var b bytes.Buffer
	b.WriteString("// Code generated by uisys. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)

	flags := LDFlags(plan)
	for i, f := range flags {
		if strings.ContainsAny(f, " \t") {
			flags[i] = `"` + f + `"`
		}
	}
	fmt.Fprintf(&b, "// #cgo LDFLAGS: %s\n", strings.Join(flags, " "))
	b.WriteString("import \"C\"\n")
	return b.Bytes()
}

// WriteCgo writes the rendered cgo file into dir atomically and returns its
// path.
func WriteCgo(plan *Plan, pkg, dir string) (string, error) {
	path := filepath.Join(dir, CgoFileName)
	if err := xos.WriteFileAll(path, RenderCgo(plan, pkg), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", CgoFileName, err)
	}
	return path, nil
}
