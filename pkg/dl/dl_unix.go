//go:build darwin || linux

package dl

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Library is an open shared library.
type Library struct {
	handle uintptr
	path   string
}

// Open loads the shared library at path, resolving every symbol up front.
func Open(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return &Library{handle: handle, path: path}, nil
}

// Lookup returns the address of an exported symbol.
func (l *Library) Lookup(name string) (uintptr, error) {
	addr, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", l.path, err)
	}
	return addr, nil
}

func (l *Library) Close() error {
	return purego.Dlclose(l.handle)
}
