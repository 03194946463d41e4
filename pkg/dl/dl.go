// Package dl opens shared libraries at runtime to inspect their exports.
package dl

import "errors"

// ErrUnsupported is returned by Open on platforms without a loader.
var ErrUnsupported = errors.New("dynamic loading is not supported on this platform")

// Exports is anything symbols can be looked up in, such as a *Library.
type Exports interface {
	Lookup(name string) (uintptr, error)
}

// Missing returns the names lib does not export, in input order.
func Missing(lib Exports, names []string) []string {
	var missing []string
	for _, name := range names {
		if _, err := lib.Lookup(name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}
