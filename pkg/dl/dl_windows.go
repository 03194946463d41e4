//go:build windows

package dl

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Library is an open DLL.
type Library struct {
	dll  *windows.DLL
	path string
}

// Open loads the DLL at path.
func Open(path string) (*Library, error) {
	dll, err := windows.LoadDLL(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return &Library{dll: dll, path: path}, nil
}

// Lookup returns the address of an exported procedure.
func (l *Library) Lookup(name string) (uintptr, error) {
	proc, err := l.dll.FindProc(name)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", l.path, err)
	}
	return proc.Addr(), nil
}

func (l *Library) Close() error {
	return l.dll.Release()
}
