package bindgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/dosanma1/uisys/internal/platform"
	"github.com/dosanma1/uisys/internal/runner"
)

const linuxMacros = `#define __STDC__ 1
#define __STDC_VERSION__ 201710L
#define __STDC_HOSTED__ 1
#define __CHAR_BIT__ 8
#define __SIZE_TYPE__ long unsigned int
#define __PTRDIFF_TYPE__ long int
#define __WCHAR_TYPE__ int
#define __UINT16_TYPE__ short unsigned int
#define __UINT32_TYPE__ unsigned int
#define __UINT64_TYPE__ long unsigned int
#define __x86_64__ 1
#define __linux__ 1
`

const windowsMacros = `#define __STDC__ 1
#define __STDC_VERSION__ 201710L
#define __CHAR_BIT__ 8
#define __SIZE_TYPE__ long long unsigned int
#define __PTRDIFF_TYPE__ long long int
#define __WCHAR_TYPE__ short unsigned int
#define __UINT16_TYPE__ short unsigned int
#define __UINT32_TYPE__ unsigned int
#define __UINT64_TYPE__ long long unsigned int
#define _WIN32 1
#define _WIN64 1
`

const stddef = `typedef __SIZE_TYPE__ size_t;
typedef struct {
  long long __max_align_ll;
  long double __max_align_ld;
} max_align_t;
typedef struct { int quot; int rem; } div_t;
struct packed { unsigned flag : 1; };
`

const stdint = `typedef unsigned int uint32_t;
typedef long long int64_t;
`

const uiHeader = `#ifndef __LIBUI_UI_H__
#define __LIBUI_UI_H__

#include <stddef.h>
#include <stdint.h>

#define _UI_EXTERN extern

typedef struct uiInitOptions uiInitOptions;
struct uiInitOptions {
	size_t Size;
};
_UI_EXTERN const char *uiInit(uiInitOptions *options);
_UI_EXTERN void uiUninit(void);
_UI_EXTERN void uiFreeInitError(const char *err);
_UI_EXTERN void uiQueueMain(void (*f)(void *data), void *data);

typedef struct uiControl uiControl;
struct uiControl {
	uint32_t Signature;
	void (*Destroy)(uiControl *);
};

typedef struct uiWindow uiWindow;
_UI_EXTERN uiWindow *uiNewWindow(const char *title, int width, int height, int hasMenubar);
_UI_EXTERN char *uiWindowTitle(uiWindow *w);

typedef unsigned int uiForEach;
enum {
	uiForEachContinue,
	uiForEachStop,
};

typedef enum uiAlign {
	uiAlignFill = 1 << 0,
	uiAlignStart = (1 << 1) | uiAlignFill,
	uiAlignEnd = 'a',
} uiAlign;

_UI_EXTERN int uiPrintf(const char *fmt, ...);
static inline int uiHelper(int x) { return x * 2; }

#endif
`

var linuxTarget = platform.Parse("x86_64-unknown-linux-gnu", "linux")

// project lays out a header tree and a system include directory under a
// temporary root.
type project struct {
	root string
	sys  string
}

func newProject(t *testing.T, files map[string]string) *project {
	t.Helper()
	root := t.TempDir()
	p := &project{root: filepath.Join(root, "work"), sys: filepath.Join(root, "sys")}
	p.write(t, filepath.Join(p.sys, "stddef.h"), stddef)
	p.write(t, filepath.Join(p.sys, "stdint.h"), stdint)
	p.write(t, filepath.Join(p.root, "wrapper.h"), "#include \"libui/ui.h\"\n")
	for name, content := range files {
		p.write(t, filepath.Join(p.root, name), content)
	}
	return p
}

func (p *project) write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// compilerOutput is what gcc prints for -dM -E -v.
func (p *project) compilerOutput(macros string) runner.Result {
	stderr := strings.Join([]string{
		"Using built-in specs.",
		"ignoring nonexistent directory \"/usr/local/include/x86_64-linux-gnu\"",
		quoteListStart,
		systemListStart,
		" " + p.sys,
		searchListEnd,
		"COMPILER_PATH=/usr/lib/gcc/",
	}, "\n")
	return runner.Result{Stdout: []byte(macros), Stderr: []byte(stderr)}
}

func (p *project) generator(name, macros string) (*Generator, *runner.Fake) {
	fake := runner.NewFake().Respond(name, []string{"-x", "c", "-dM"}, p.compilerOutput(macros))
	return NewGenerator(fake, Options{WorkDir: p.root}), fake
}

func testSpec() Spec {
	return Spec{
		Header:      "wrapper.h",
		OpaqueTypes: []string{"max_align_t"},
		Package:     "ui",
		Target:      linuxTarget,
	}
}

// normalize collapses whitespace so assertions do not depend on gofmt
// alignment.
func normalize(src []byte) string {
	return strings.Join(strings.Fields(string(src)), " ")
}

func TestTranslate(t *testing.T) {
	p := newProject(t, map[string]string{"libui/ui.h": uiHeader})
	g, fake := p.generator("cc", linuxMacros)

	out, err := g.Translate(context.Background(), testSpec())
	if err != nil {
		t.Fatal(err)
	}
	if !fake.Called("cc", "-x", "c", "-dM", "-E", "-v") {
		t.Errorf("compiler not asked for its configuration: %v", fake.Lines())
	}

	src := normalize(out.Source)
	for _, want := range []string{
		"// Code generated by uisys from wrapper.h. DO NOT EDIT.",
		"package ui",
		`import ( "unsafe" "github.com/ebitengine/purego" )`,
		"type UiInitOptions struct { Size uintptr }",
		"type UiControl struct { Signature uint32 Destroy uintptr }",
		"type UiWindow struct{}",
		"type UiForEach uint32",
		"UiForEachContinue = 0 UiForEachStop = 1",
		"type UiAlign int32",
		"UiAlignFill UiAlign = 1 UiAlignStart UiAlign = 3 UiAlignEnd UiAlign = 97",
		"UiInit func(options *UiInitOptions) *byte",
		"UiUninit func()",
		"UiQueueMain func(f uintptr, data unsafe.Pointer)",
		"UiNewWindow func(title *byte, width int32, height int32, hasMenubar int32) *UiWindow",
		"UiWindowTitle func(w *UiWindow) *byte",
		"// uiPrintf is variadic and has no binding.",
		"func Register(lib uintptr) {",
		`purego.RegisterLibFunc(&UiInit, lib, "uiInit")`,
		`purego.RegisterLibFunc(&UiWindowTitle, lib, "uiWindowTitle")`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("output missing %q:\n%s", want, out.Source)
		}
	}

	for _, unwanted := range []string{"Max_align_t", "Div_t", "Size_t", "Packed", "UiHelper", "UiPrintf func", "predefined"} {
		if strings.Contains(src, unwanted) {
			t.Errorf("output should not contain %q:\n%s", unwanted, out.Source)
		}
	}

	wantFuncs := []string{"uiInit", "uiUninit", "uiFreeInitError", "uiQueueMain", "uiNewWindow", "uiWindowTitle"}
	if !slices.Equal(out.Functions, wantFuncs) {
		t.Errorf("Functions = %v, want %v", out.Functions, wantFuncs)
	}
	if !slices.Equal(out.Skipped, []string{"uiPrintf"}) {
		t.Errorf("Skipped = %v", out.Skipped)
	}
}

func TestTranslateKeepsCStringsAsPointers(t *testing.T) {
	p := newProject(t, map[string]string{"libui/ui.h": uiHeader})
	g, _ := p.generator("cc", linuxMacros)

	out, err := g.Translate(context.Background(), testSpec())
	if err != nil {
		t.Fatal(err)
	}
	src := normalize(out.Source)
	// The pointer returned by uiInit must reach uiFreeInitError unchanged.
	if !strings.Contains(src, "UiFreeInitError func(err *byte)") {
		t.Errorf("const char * parameter should stay a pointer:\n%s", out.Source)
	}
	if strings.Contains(src, "string") {
		t.Errorf("no parameter should be converted to a Go string:\n%s", out.Source)
	}
}

func TestTranslateOpaqueType(t *testing.T) {
	p := newProject(t, map[string]string{
		"libui/ui.h": "#include <stddef.h>\nextern max_align_t *uiAligned(void);\n",
	})
	g, _ := p.generator("cc", linuxMacros)

	out, err := g.Translate(context.Background(), testSpec())
	if err != nil {
		t.Fatal(err)
	}
	got := normalize(out.Source)
	if !strings.Contains(got, "type Max_align_t struct{}") {
		t.Errorf("opaque type not emitted without fields:\n%s", out.Source)
	}
	if !strings.Contains(got, "UiAligned func() *Max_align_t") {
		t.Errorf("missing binding:\n%s", out.Source)
	}
	if strings.Contains(got, "__max_align") {
		t.Errorf("opaque type leaked its fields:\n%s", out.Source)
	}

	// Without the opaque override the long double member is unsupported.
	spec := testSpec()
	spec.OpaqueTypes = nil
	if _, err := g.Translate(context.Background(), spec); !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", err)
	}
}

const layoutHeader = `union uiValue { int i; double d; char s[12]; };
struct uiPair { long a; unsigned long b; };
struct uiFlags { unsigned visible : 1; unsigned enabled : 1; };
struct uiSizes { void *p; size_t n; };
`

func TestTranslateLayout(t *testing.T) {
	p := newProject(t, map[string]string{"libui/ui.h": "#include <stddef.h>\n" + layoutHeader})
	g, _ := p.generator("cc", linuxMacros)

	out, err := g.Translate(context.Background(), testSpec())
	if err != nil {
		t.Fatal(err)
	}
	got := normalize(out.Source)
	for _, want := range []string{
		"type UiValue struct { _ [0]uint64 Raw [16]byte }",
		"type UiPair struct { A int64 B uint64 }",
		"type UiFlags struct { _ [0]uint32 Raw [4]byte }",
		"type UiSizes struct { P unsafe.Pointer N uintptr }",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, out.Source)
		}
	}
	if strings.Contains(got, "github.com/ebitengine/purego") {
		t.Errorf("purego imported without functions:\n%s", out.Source)
	}
}

func TestTranslateFollowsTargetABI(t *testing.T) {
	p := newProject(t, map[string]string{"libui/ui.h": "#include <stddef.h>\n" + layoutHeader})
	g, _ := p.generator("cc", windowsMacros)

	spec := testSpec()
	spec.Target = platform.Parse("x86_64-pc-windows-msvc", "windows")
	out, err := g.Translate(context.Background(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if got := normalize(out.Source); !strings.Contains(got, "type UiPair struct { A int32 B uint32 }") {
		t.Errorf("long should be 32 bits on windows/amd64:\n%s", out.Source)
	}

	spec.Target = platform.Parse("sparc64-unknown-linux-gnu", "linux")
	if _, err := g.Translate(context.Background(), spec); !errors.Is(err, ErrGeneration) || !strings.Contains(err.Error(), "sparc64") {
		t.Errorf("expected an unknown ABI error, got %v", err)
	}
}

func TestTranslateFailures(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"unknown type", "extern foo_t uiBroken(void);\n", "ui.h"},
		{"syntax", "extern void uiBroken(int;\n", "ui.h"},
		{"undefined constant", "enum uiE { A = B };\n", "ui.h"},
		{"missing include", "#include \"missing.h\"\n", `include file not found: "missing.h"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t, map[string]string{"libui/ui.h": tt.header})
			g, _ := p.generator("cc", linuxMacros)
			_, err := g.Translate(context.Background(), testSpec())
			if !errors.Is(err, ErrGeneration) {
				t.Fatalf("expected ErrGeneration, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestTranslateIncludeDirs(t *testing.T) {
	p := newProject(t, map[string]string{
		"wrapper.h":            "#include <ui.h>\n",
		"vendor/ui/ui.h":       "#include \"ui_types.h\"\nextern uiHandle uiOpen(void);\n",
		"vendor/ui/ui_types.h": "typedef struct uiHandleImpl *uiHandle;\n",
	})
	g, _ := p.generator("cc", linuxMacros)

	spec := testSpec()
	spec.IncludeDirs = []string{"vendor/ui"}
	out, err := g.Translate(context.Background(), spec)
	if err != nil {
		t.Fatal(err)
	}
	got := normalize(out.Source)
	for _, want := range []string{
		"type UiHandleImpl struct{}",
		"type UiHandle *UiHandleImpl",
		"UiOpen func() UiHandle",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, out.Source)
		}
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := Write(&Output{Source: []byte("// Code generated by uisys\npackage ui\n")}, dir)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "// Code generated by uisys") {
		t.Errorf("unexpected file:\n%s", data)
	}
}

func TestTranslateCompilerFailure(t *testing.T) {
	fake := runner.NewFake().Fail("cc", nil, 1, "cc: error: unrecognized command-line option")
	g := NewGenerator(fake, Options{})

	_, err := g.Translate(context.Background(), testSpec())
	if !errors.Is(err, ErrGeneration) || !errors.Is(err, runner.ErrToolFailed) {
		t.Fatalf("expected ErrGeneration wrapping ErrToolFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "unrecognized") {
		t.Errorf("diagnostic should carry the compiler output: %v", err)
	}

	missing := NewGenerator(runner.NewFake().Missing("cc"), Options{})
	if _, err := missing.Translate(context.Background(), testSpec()); !errors.Is(err, runner.ErrToolMissing) {
		t.Errorf("expected ErrToolMissing, got %v", err)
	}

	silent := NewGenerator(runner.NewFake(), Options{})
	if _, err := silent.Translate(context.Background(), testSpec()); !errors.Is(err, ErrGeneration) {
		t.Errorf("expected ErrGeneration without predefined macros, got %v", err)
	}
}

func TestCompiler(t *testing.T) {
	linux := platform.Host{OS: platform.OSLinux, Name: "linux"}
	windows := platform.Host{OS: platform.OSWindows, Name: "windows"}
	tests := []struct {
		name         string
		preprocessor string
		host         platform.Host
		target       string
		want         string
	}{
		{"native", "", linux, "x86_64-unknown-linux-gnu", "cc"},
		{"mingw cross", "", linux, "i686-pc-windows-gnu", "i686-w64-mingw32-gcc"},
		{"mingw cross 64", "", linux, "x86_64-pc-windows-gnu", "x86_64-w64-mingw32-gcc"},
		{"mingw on windows", "", windows, "x86_64-pc-windows-gnu", "cc"},
		{"msvc", "", linux, "x86_64-pc-windows-msvc", "cc"},
		{"configured", "clang", linux, "i686-pc-windows-gnu", "clang"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(runner.NewFake(), Options{Preprocessor: tt.preprocessor, Host: tt.host, WorkDir: "/work"})
			spec := Spec{Header: "wrapper.h", Target: platform.Parse(tt.target, platform.InferOS(tt.target))}
			if got := g.Compiler(spec.Target); got != tt.want {
				t.Errorf("Compiler = %q, want %q", got, tt.want)
			}
			cmd := g.CompilerCommand(spec)
			if cmd.Name != tt.want || cmd.Dir != "/work" {
				t.Errorf("CompilerCommand = %+v", cmd)
			}
			if !slices.Equal(cmd.Args[:4], []string{"-x", "c", "-dM", "-E"}) || cmd.Args[len(cmd.Args)-1] != os.DevNull {
				t.Errorf("unexpected args %v", cmd.Args)
			}
		})
	}
}

func TestTranslateUsesMinGWCompiler(t *testing.T) {
	p := newProject(t, map[string]string{"libui/ui.h": "extern void uiMain(void);\n"})
	fake := runner.NewFake().Respond("x86_64-w64-mingw32-gcc", []string{"-x", "c", "-dM"}, p.compilerOutput(windowsMacros))
	g := NewGenerator(fake, Options{WorkDir: p.root, Host: platform.Host{OS: platform.OSLinux, Name: "linux"}})

	spec := testSpec()
	spec.Target = platform.Parse("x86_64-pc-windows-gnu", "windows")
	out, err := g.Translate(context.Background(), spec)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(out.Functions, []string{"uiMain"}) {
		t.Errorf("Functions = %v", out.Functions)
	}
	if fake.Called("cc") {
		t.Errorf("host compiler used for a MinGW target: %v", fake.Lines())
	}
}

func TestParseToolchain(t *testing.T) {
	res := runner.Result{
		Stdout: []byte("#define __STDC__ 1\r\n#define __SIZE_TYPE__ long unsigned int\r\n"),
		Stderr: []byte(strings.Join([]string{
			"clang version 17.0.0",
			quoteListStart,
			" /work/quoted",
			systemListStart,
			" /usr/local/include",
			" /usr/include/",
			" /System/Library/Frameworks (framework directory)",
			searchListEnd,
			" /not/a/search/dir",
		}, "\r\n")),
	}
	tc := parseToolchain(res)

	if tc.predefined != "#define __STDC__ 1\n#define __SIZE_TYPE__ long unsigned int\n" {
		t.Errorf("predefined = %q", tc.predefined)
	}
	if !slices.Equal(tc.quote, []string{"/work/quoted"}) {
		t.Errorf("quote = %v", tc.quote)
	}
	if !slices.Equal(tc.system, []string{"/usr/local/include", "/usr/include"}) {
		t.Errorf("system = %v", tc.system)
	}

	cfg := tc.config(nil, []string{"/work/vendor"})
	if !slices.Equal(cfg.IncludePaths, []string{"", "/work/vendor", "/work/quoted", "/usr/local/include", "/usr/include"}) {
		t.Errorf("IncludePaths = %v", cfg.IncludePaths)
	}
	if !slices.Equal(cfg.SysIncludePaths, []string{"/work/vendor", "/usr/local/include", "/usr/include"}) {
		t.Errorf("SysIncludePaths = %v", cfg.SysIncludePaths)
	}
}
