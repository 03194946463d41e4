package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/dosanma1/uisys/internal/config"
	"github.com/dosanma1/uisys/internal/linkplan"
	"github.com/dosanma1/uisys/internal/platform"
)

type fakeSymbols struct {
	exports map[string]bool
	closed  bool
}

func (f *fakeSymbols) Lookup(name string) (uintptr, error) {
	if f.exports[name] {
		return 1, nil
	}
	return 0, errors.New("undefined symbol")
}

func (f *fakeSymbols) Close() error {
	f.closed = true
	return nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
}

// hostTarget is a triple the test machine can load libraries for.
func hostTarget() (string, platform.Host) {
	raw := platform.DefaultTriple()
	return raw, platform.DetectHost(platform.MapEnv(nil))
}

func TestCheckMissingArtifact(t *testing.T) {
	h := newHarness(t)
	o := h.orchestrator(config.Features{}, "x86_64-unknown-linux-gnu", linuxHost)

	_, err := o.Check(context.Background(), nil)
	if !errors.Is(err, ErrArtifactMissing) {
		t.Fatalf("err = %v, want ErrArtifactMissing", err)
	}
	var se *StepError
	if !errors.As(err, &se) || se.Step != StepCheck {
		t.Errorf("err = %#v, want StepCheck", err)
	}
}

func TestCheckStaticSkipsLoading(t *testing.T) {
	h := newHarness(t)
	touch(t, filepath.Join(h.work, "lib", "libui.a"))
	o := h.orchestrator(config.Features{Static: true}, "x86_64-unknown-linux-gnu", linuxHost)

	report, err := o.Check(context.Background(), func(string) (Symbols, error) {
		t.Fatal("static library must not be loaded")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.Library != filepath.Join(h.work, "lib", "libui.a") || report.Loaded {
		t.Errorf("report = %+v", report)
	}
	if len(h.fake.Calls()) != 0 {
		t.Errorf("unexpected tool calls: %v", h.fake.Lines())
	}
}

func TestCheckResolvesBoundFunctions(t *testing.T) {
	raw, host := hostTarget()
	tgt := target(raw)
	name := linkplan.ArtifactNames(tgt, linkplan.Library{Name: platform.FamilyOf(tgt).PrimaryLibrary, Kind: linkplan.KindDynamic})[0]

	tests := []struct {
		name    string
		exports map[string]bool
		missing []string
	}{
		{"complete", map[string]bool{"uiInit": true, "uiMain": true}, nil},
		{"partial", map[string]bool{"uiInit": true}, []string{"uiMain"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			lib := filepath.Join(h.work, "lib", name)
			touch(t, lib)
			o := New(h.fake, Options{Target: tgt, Host: host, WorkDir: h.work})

			syms := &fakeSymbols{exports: tt.exports}
			var opened string
			report, err := o.Check(context.Background(), func(p string) (Symbols, error) {
				opened = p
				return syms, nil
			})

			if tt.missing == nil && err != nil {
				t.Fatal(err)
			}
			if tt.missing != nil && !errors.Is(err, ErrMissingSymbols) {
				t.Fatalf("err = %v, want ErrMissingSymbols", err)
			}
			if opened != lib || !report.Loaded || !syms.closed {
				t.Errorf("opened = %q, report = %+v, closed = %v", opened, report, syms.closed)
			}
			if report.Functions != 2 || !slices.Equal(report.Missing, tt.missing) {
				t.Errorf("Functions = %d, Missing = %v, want %v", report.Functions, report.Missing, tt.missing)
			}
		})
	}
}

func TestCheckCrossTargetSkipsLoading(t *testing.T) {
	h := newHarness(t)
	touch(t, filepath.Join(h.work, "lib", "libui.dll"))
	o := h.orchestrator(config.Features{}, "x86_64-pc-windows-gnu", linuxHost)

	report, err := o.Check(context.Background(), func(string) (Symbols, error) {
		t.Fatal("cross target must not be loaded")
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.Loaded {
		t.Errorf("report = %+v", report)
	}
}
