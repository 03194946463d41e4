package platform

import "path/filepath"

// Family holds the literals that differ per toolchain family.
type Family struct {
	Name string
	// PrimaryLibrary is the link name of libui as produced by its build.
	PrimaryLibrary string
	// CXXFlags are always passed to the native build for this family.
	CXXFlags []string
	// OutputSubdir is appended to the native build's output directory.
	OutputSubdir string
}

var (
	familyMSVC = Family{
		Name:           "msvc",
		PrimaryLibrary: "libui",
		OutputSubdir:   filepath.Join("build", "out", "Release"),
	}
	familyApple = Family{
		Name:           "apple",
		PrimaryLibrary: "ui",
		CXXFlags:       []string{"--stdlib=libc++"},
		OutputSubdir:   filepath.Join("build", "out"),
	}
	familyGNU = Family{
		Name:           "gnu",
		PrimaryLibrary: "ui",
		OutputSubdir:   filepath.Join("build", "out"),
	}
)

// FamilyOf selects the literal table for t. MSVC takes precedence over the
// vendor, since the Visual Studio generators nest outputs per configuration.
func FamilyOf(t Triple) Family {
	switch {
	case t.IsMSVC:
		return familyMSVC
	case t.IsApple:
		return familyApple
	default:
		return familyGNU
	}
}

// NarrowingShim is the diagnostic suppression needed when libui is built
// statically for Windows by clang or gcc. libui has not fixed its narrowing
// conversions upstream.
const NarrowingShim = "-Wno-c++11-narrowing"

var mingwPrefixes = map[string]string{
	"x86_64-pc-windows-gnu": "x86_64-w64-mingw32",
	"i686-pc-windows-gnu":   "i686-w64-mingw32",
}

// MinGWPrefix returns the cross toolchain prefix for the two supported
// MinGW targets. Any other triple, including native MSVC, reports false.
func MinGWPrefix(t Triple) (string, bool) {
	prefix, ok := mingwPrefixes[t.Raw]
	return prefix, ok
}
