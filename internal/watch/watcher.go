// Package watch reports changes to the C headers bindings are generated from.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreated EventType = iota + 1
	EventModified
	EventDeleted
	EventRenamed
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventDeleted:
		return "deleted"
	case EventRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Event is a change to a watched file.
type Event struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Config contains configuration for the watcher
type Config struct {
	// Dirs are watched recursively.
	Dirs []string

	// Patterns are glob patterns matched against file names.
	Patterns []string

	// IgnorePatterns skip directories and files by name.
	IgnorePatterns []string

	// Debounce is how long the tree must be quiet before a batch is sent.
	Debounce time.Duration
}

// DefaultConfig watches C headers under dirs.
func DefaultConfig(dirs ...string) *Config {
	return &Config{
		Dirs:           dirs,
		Patterns:       []string{"*.h", "*.hpp"},
		IgnorePatterns: []string{".git", "build", "target", "*~", ".#*"},
		Debounce:       200 * time.Millisecond,
	}
}

// Watcher batches header changes. Every event arriving within the debounce
// window of the previous one lands in the same batch.
type Watcher struct {
	config  *Config
	watcher *fsnotify.Watcher
	batches chan []Event
	errors  chan error
	done    chan struct{}
	mu      sync.RWMutex
	running bool

	pending   map[string]Event
	timer     *time.Timer
	pendingMu sync.Mutex
}

// NewWatcher creates a new header watcher
func NewWatcher(config *Config) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:  config,
		watcher: fsWatcher,
		batches: make(chan []Event, 16),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		pending: make(map[string]Event),
	}, nil
}

// Start begins watching every configured directory.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, dir := range w.config.Dirs {
		if err := w.addRecursive(dir); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)

	return nil
}

// Stop stops the watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	close(w.done)

	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()

	return w.watcher.Close()
}

// Batches returns the channel of debounced change batches.
func (w *Watcher) Batches() <-chan []Event {
	return w.batches
}

// Errors returns the channel of errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// addRecursive adds a directory and all subdirectories to the watcher
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != dir && w.ignored(info.Name()) {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}

		return nil
	})
}

// processEvents processes fsnotify events until the watcher stops.
func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

// handleEvent handles a single fsnotify event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !w.matchesPattern(event.Name) || w.shouldIgnore(event.Name) {
		return
	}

	var eventType EventType
	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreated
	case event.Has(fsnotify.Write):
		eventType = EventModified
	case event.Has(fsnotify.Remove):
		eventType = EventDeleted
	case event.Has(fsnotify.Rename):
		eventType = EventRenamed
	default:
		return
	}

	w.debounce(Event{
		Path:      event.Name,
		Type:      eventType,
		Timestamp: time.Now(),
	})
}

// debounce adds event to the pending batch and restarts the quiet timer.
// The latest event per path wins.
func (w *Watcher) debounce(event Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[event.Path] = event
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	batch := make([]Event, 0, len(w.pending))
	for _, e := range w.pending {
		batch = append(batch, e)
	}
	clear(w.pending)
	w.pendingMu.Unlock()

	if len(batch) == 0 {
		return
	}
	slices.SortFunc(batch, func(a, b Event) int { return strings.Compare(a.Path, b.Path) })

	select {
	case w.batches <- batch:
	default:
		// Channel full; the consumer is still busy with older batches.
	}
}

// matchesPattern checks if a file matches any of the watch patterns
func (w *Watcher) matchesPattern(path string) bool {
	if len(w.config.Patterns) == 0 {
		return true
	}

	base := filepath.Base(path)
	for _, pattern := range w.config.Patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}

// shouldIgnore checks every path component below the watched roots.
func (w *Watcher) shouldIgnore(path string) bool {
	rel := path
	for _, dir := range w.config.Dirs {
		if r, err := filepath.Rel(dir, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
			break
		}
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if w.ignored(part) {
			return true
		}
	}
	return false
}

func (w *Watcher) ignored(name string) bool {
	for _, pattern := range w.config.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}
