//go:build !darwin && !linux && !windows

package dl

// Library is never opened on this platform.
type Library struct{}

func Open(path string) (*Library, error) {
	return nil, ErrUnsupported
}

func (l *Library) Lookup(name string) (uintptr, error) {
	return 0, ErrUnsupported
}

func (l *Library) Close() error { return nil }
