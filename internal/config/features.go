package config

import (
	"fmt"
	"strings"
)

// Features selects the build strategy. It is resolved once per run and
// passed by value to every step.
type Features struct {
	// Fetch initializes or updates the libui git submodule.
	Fetch bool `yaml:"fetch" json:"fetch"`
	// Build compiles libui from source instead of using a prebuilt library.
	Build bool `yaml:"build" json:"build"`
	// Static links libui and its system dependencies statically.
	Static bool `yaml:"static" json:"static"`
}

// ParseFeatures parses a comma or space separated list such as "fetch,build".
// An empty list disables everything.
func ParseFeatures(list string) (Features, error) {
	var f Features
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	for _, name := range fields {
		switch strings.ToLower(name) {
		case "fetch":
			f.Fetch = true
		case "build":
			f.Build = true
		case "static":
			f.Static = true
		default:
			return Features{}, fmt.Errorf("unknown feature %q (must be fetch, build or static)", name)
		}
	}
	return f, nil
}

// String renders the enabled features as a comma separated list.
func (f Features) String() string {
	var names []string
	if f.Fetch {
		names = append(names, "fetch")
	}
	if f.Build {
		names = append(names, "build")
	}
	if f.Static {
		names = append(names, "static")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Linkage names the link mode.
func (f Features) Linkage() string {
	if f.Static {
		return "static"
	}
	return "dynamic"
}
