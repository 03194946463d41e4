// Package platform describes the target and host of a native build.
package platform

import (
	"os"
	"runtime"
	"strings"
)

// Environment variables read by Detect.
const (
	EnvTarget   = "UISYS_TARGET"
	EnvTargetOS = "UISYS_TARGET_OS"
	EnvHostOS   = "UISYS_HOST_OS"
)

// OS is the logical operating system of a target.
type OS string

const (
	OSWindows OS = "windows"
	OSMacOS   OS = "macos"
	OSLinux   OS = "linux"
	OSOther   OS = "other"
)

// Env looks up an environment variable.
type Env func(key string) (string, bool)

// OSEnv reads the process environment.
func OSEnv() Env {
	return os.LookupEnv
}

// MapEnv serves lookups from m.
func MapEnv(m map[string]string) Env {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// Triple describes the compilation target.
type Triple struct {
	// Raw is the full target triple, e.g. x86_64-pc-windows-msvc.
	Raw string
	// Arch is the first component of Raw.
	Arch string
	OS   OS
	// OSName is the OS tag as given, before classification.
	OSName  string
	IsMSVC  bool
	IsApple bool
}

// Detect derives the target triple from env. It never fails; missing values
// yield an empty triple with OS set to OSOther.
func Detect(env Env) Triple {
	raw, _ := env(EnvTarget)
	osName, _ := env(EnvTargetOS)
	return Parse(raw, osName)
}

// Parse classifies a raw triple and OS tag.
func Parse(raw, osName string) Triple {
	raw = strings.TrimSpace(raw)
	osName = strings.ToLower(strings.TrimSpace(osName))
	arch, _, _ := strings.Cut(raw, "-")
	return Triple{
		Raw:     raw,
		Arch:    arch,
		OS:      classifyOS(osName),
		OSName:  osName,
		IsMSVC:  strings.Contains(raw, "msvc"),
		IsApple: strings.Contains(raw, "apple"),
	}
}

func classifyOS(tag string) OS {
	switch tag {
	case "windows":
		return OSWindows
	case "macos", "darwin", "ios":
		return OSMacOS
	case "linux", "android":
		return OSLinux
	default:
		return OSOther
	}
}

var unixTags = map[string]bool{
	"linux":     true,
	"android":   true,
	"freebsd":   true,
	"netbsd":    true,
	"openbsd":   true,
	"dragonfly": true,
	"solaris":   true,
	"illumos":   true,
}

// IsUnixLike reports whether the target links its GUI toolkit through
// pkg-config, i.e. Linux and the BSD/Solaris family. macOS is not included.
func (t Triple) IsUnixLike() bool {
	return t.OS == OSLinux || unixTags[t.OSName]
}

// String returns the raw triple, or a placeholder when unknown.
func (t Triple) String() string {
	if t.Raw == "" {
		return "<unknown target>"
	}
	return t.Raw
}

// InferOS guesses the OS tag of a raw triple. The CLI uses it to fill in
// UISYS_TARGET_OS when only the triple was given.
func InferOS(raw string) string {
	parts := strings.Split(raw, "-")
	for i := len(parts) - 1; i >= 1; i-- {
		p := parts[i]
		switch {
		case p == "windows":
			return "windows"
		case p == "darwin" || strings.HasPrefix(p, "macos"):
			return "macos"
		case p == "ios":
			return "ios"
		case p == "linux":
			return "linux"
		case p == "android" || strings.HasPrefix(p, "androideabi"):
			return "android"
		case strings.HasPrefix(p, "freebsd"), strings.HasPrefix(p, "netbsd"),
			strings.HasPrefix(p, "openbsd"), strings.HasPrefix(p, "dragonfly"),
			strings.HasPrefix(p, "illumos"), strings.HasPrefix(p, "solaris"):
			return strings.TrimRight(p, "0123456789.")
		}
	}
	return ""
}

var goArchToTriple = map[string]string{
	"amd64":   "x86_64",
	"386":     "i686",
	"arm64":   "aarch64",
	"arm":     "armv7",
	"riscv64": "riscv64gc",
	"ppc64le": "powerpc64le",
	"s390x":   "s390x",
}

// GoTarget maps t back to a Go GOOS/GOARCH pair. It reports false when the
// triple names an architecture or OS that Go has no port for.
func (t Triple) GoTarget() (goos, goarch string, ok bool) {
	switch t.OSName {
	case "macos", "darwin", "ios":
		goos = "darwin"
	case "windows", "linux", "freebsd", "netbsd", "openbsd", "dragonfly", "illumos", "solaris":
		goos = t.OSName
	case "android":
		goos = "linux"
	default:
		return "", "", false
	}

	arch := t.Arch
	switch {
	case arch == "x86_64":
		goarch = "amd64"
	case arch == "i386", arch == "i586", arch == "i686", arch == "x86":
		goarch = "386"
	case arch == "aarch64", arch == "arm64":
		goarch = "arm64"
	case strings.HasPrefix(arch, "arm"), strings.HasPrefix(arch, "thumb"):
		goarch = "arm"
	case strings.HasPrefix(arch, "riscv64"):
		goarch = "riscv64"
	case arch == "powerpc64le":
		goarch = "ppc64le"
	case arch == "s390x":
		goarch = "s390x"
	case arch == "loongarch64":
		goarch = "loong64"
	case arch == "mips64el":
		goarch = "mips64le"
	default:
		return "", "", false
	}
	return goos, goarch, true
}

// DefaultTriple builds a triple for the machine the orchestrator runs on.
func DefaultTriple() string {
	return TripleFor(runtime.GOOS, runtime.GOARCH)
}

// TripleFor maps a Go GOOS/GOARCH pair to the conventional target triple.
func TripleFor(goos, goarch string) string {
	arch, ok := goArchToTriple[goarch]
	if !ok {
		arch = goarch
	}
	switch goos {
	case "windows":
		return arch + "-pc-windows-msvc"
	case "darwin":
		return arch + "-apple-darwin"
	case "linux":
		if goarch == "arm" {
			return arch + "-unknown-linux-gnueabihf"
		}
		return arch + "-unknown-linux-gnu"
	default:
		return arch + "-unknown-" + goos
	}
}

// Host describes the machine running the orchestrator.
type Host struct {
	OS OS
	// Name is the OS tag as given.
	Name string
}

// DetectHost reads UISYS_HOST_OS, defaulting to runtime.GOOS.
func DetectHost(env Env) Host {
	name, ok := env(EnvHostOS)
	if !ok || strings.TrimSpace(name) == "" {
		name = runtime.GOOS
	}
	name = strings.ToLower(strings.TrimSpace(name))
	return Host{OS: classifyOS(name), Name: name}
}

// IsWindows reports whether the host runs Windows.
func (h Host) IsWindows() bool {
	return h.OS == OSWindows
}
