// Package linkplan computes and emits the linker inputs for libui.
package linkplan

import (
	"fmt"
	"slices"
)

// Kind is the linkage of a library.
type Kind string

const (
	KindStatic  Kind = "static"
	KindDynamic Kind = "dynamic"
)

// Library is a single link-library entry.
type Library struct {
	Name string
	Kind Kind
}

// Plan is the ordered set of search paths and libraries handed to the
// linker. It only grows: entries are appended, never removed or reordered.
type Plan struct {
	SearchPaths []string
	Libraries   []Library
}

// AddSearchPath appends dir unless it is already present.
func (p *Plan) AddSearchPath(dir string) {
	if dir == "" || slices.Contains(p.SearchPaths, dir) {
		return
	}
	p.SearchPaths = append(p.SearchPaths, dir)
}

// AddLibrary appends a library entry.
func (p *Plan) AddLibrary(name string, kind Kind) {
	p.Libraries = append(p.Libraries, Library{Name: name, Kind: kind})
}

// Primary returns the first library, which is libui itself.
func (p *Plan) Primary() (Library, bool) {
	if len(p.Libraries) == 0 {
		return Library{}, false
	}
	return p.Libraries[0], true
}

// LibraryNames returns the library names in link order.
func (p *Plan) LibraryNames() []string {
	names := make([]string, len(p.Libraries))
	for i, lib := range p.Libraries {
		names[i] = lib.Name
	}
	return names
}

// Check verifies the plan shape: at least one search path, and the
// primary library present exactly once, first.
func (p *Plan) Check(primary string) error {
	if len(p.SearchPaths) == 0 {
		return fmt.Errorf("link plan has no search path")
	}
	first, ok := p.Primary()
	if !ok || first.Name != primary {
		return fmt.Errorf("link plan must start with %q, got %v", primary, p.LibraryNames())
	}
	for _, lib := range p.Libraries[1:] {
		if lib.Name == primary {
			return fmt.Errorf("primary library %q appears more than once", primary)
		}
	}
	return nil
}
