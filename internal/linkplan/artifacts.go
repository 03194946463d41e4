package linkplan

import (
	"path/filepath"
	"strings"

	"github.com/dosanma1/uisys/internal/platform"
)

// ArtifactNames lists the file names lib may have on disk for target,
// most likely first.
func ArtifactNames(target platform.Triple, lib Library) []string {
	name := lib.Name
	static := lib.Kind == KindStatic
	switch {
	case target.IsMSVC:
		if static {
			return []string{name + ".lib"}
		}
		return []string{name + ".dll", name + ".lib"}
	case target.OS == platform.OSWindows:
		if static {
			return []string{"lib" + name + ".a"}
		}
		return []string{"lib" + name + ".dll", name + ".dll", "lib" + name + ".dll.a"}
	case target.IsApple:
		if static {
			return []string{"lib" + name + ".a"}
		}
		return []string{"lib" + name + ".dylib", "lib" + name + ".A.dylib"}
	default:
		if static {
			return []string{"lib" + name + ".a"}
		}
		return []string{"lib" + name + ".so", "lib" + name + ".so.0"}
	}
}

// IsSharedObject reports whether file is a loadable shared library rather
// than an archive or import library.
func IsSharedObject(file string) bool {
	base := filepath.Base(file)
	switch filepath.Ext(base) {
	case ".so", ".dylib", ".dll":
		return true
	}
	return strings.Contains(base, ".so.")
}
