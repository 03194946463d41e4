package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func newTestWatcher(t *testing.T, dir string) *Watcher {
	t.Helper()
	cfg := DefaultConfig(dir)
	cfg.Debounce = 20 * time.Millisecond
	w, err := NewWatcher(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

func receive(t *testing.T, w *Watcher) []Event {
	t.Helper()
	select {
	case batch := <-w.Batches():
		return batch
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a batch")
		return nil
	}
}

func TestHandleEventBatchesAndFilters(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "ui.h"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "ui.h"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "extra.h"), Op: fsnotify.Create})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "notes.txt"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "build", "gen.h"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "ui.h"), Op: fsnotify.Chmod})

	batch := receive(t, w)
	if len(batch) != 2 {
		t.Fatalf("batch = %+v, want extra.h and ui.h", batch)
	}
	if filepath.Base(batch[0].Path) != "extra.h" || batch[0].Type != EventCreated {
		t.Errorf("batch[0] = %+v", batch[0])
	}
	if filepath.Base(batch[1].Path) != "ui.h" || batch[1].Type != EventModified {
		t.Errorf("batch[1] = %+v", batch[1])
	}
}

func TestWatcherSeesHeaderWrites(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !running(w) {
		t.Fatal("watcher not running")
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "wrapper.h"), []byte("#include \"ui.h\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	batch := receive(t, w)
	if filepath.Base(batch[0].Path) != "wrapper.h" {
		t.Errorf("batch = %+v", batch)
	}

	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}
	if running(w) {
		t.Error("watcher still running after Stop")
	}
	if err := w.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func running(w *Watcher) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func TestLoopSerializesBatchesAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	w := newTestWatcher(t, dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		handled int
		errs    []error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		Loop(ctx, w, func(context.Context, []Event) error {
			mu.Lock()
			defer mu.Unlock()
			handled++
			return errors.New("parse failed")
		}, func(err error) {
			mu.Lock()
			defer mu.Unlock()
			errs = append(errs, err)
		})
	}()

	w.debounce(Event{Path: filepath.Join(dir, "ui.h"), Type: EventModified})

	deadline := time.Now().Add(5 * time.Second)
	for {
		mu.Lock()
		n := len(errs)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if handled != 1 || len(errs) != 1 {
		t.Errorf("handled = %d, errors = %v", handled, errs)
	}
}

func TestEventTypeString(t *testing.T) {
	if EventRenamed.String() != "renamed" || EventType(0).String() != "unknown" {
		t.Error("unexpected EventType names")
	}
}
