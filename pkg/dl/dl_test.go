//go:build linux

package dl

import (
	"path/filepath"
	"slices"
	"testing"
)

func openLibc(t *testing.T) *Library {
	t.Helper()
	lib, err := Open("libc.so.6")
	if err != nil {
		t.Skipf("libc.so.6 not loadable: %v", err)
	}
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func TestMissing(t *testing.T) {
	lib := openLibc(t)
	got := Missing(lib, []string{"malloc", "uiNoSuchFunction", "free"})
	if !slices.Equal(got, []string{"uiNoSuchFunction"}) {
		t.Errorf("Missing = %v", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "libnothing.so")); err == nil {
		t.Fatal("expected an error")
	}
}
