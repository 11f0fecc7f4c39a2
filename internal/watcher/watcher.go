// Package watcher watches TOML files with fsnotify and reports batches of
// changed paths.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
	EventRename
)

// Event represents a file system event
type Event struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "create"
	case EventModify:
		return "modify"
	case EventDelete:
		return "delete"
	case EventRename:
		return "rename"
	default:
		return "unknown"
	}
}

// ChangeHandler is called with each settled batch of events
type ChangeHandler func(ctx context.Context, events []Event)

// Config contains watcher configuration
type Config struct {
	// Debounce is the quiet period before a batch is emitted.
	Debounce time.Duration
	// MaxWait bounds how long a steady stream of events delays a batch.
	// Zero means no bound.
	MaxWait time.Duration
	// Match selects the files whose events are reported. Nil matches all.
	Match func(path string) bool
	// SkipDir prunes directories when adding a tree. Nil skips nothing.
	SkipDir func(path string) bool
}

const (
	// DefaultDebounce gives editors time to finish a save.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultMaxWait flushes files that keep changing, such as generated output.
	DefaultMaxWait = 2 * time.Second
)

// DefaultConfig returns the default watcher configuration
func DefaultConfig() Config {
	return Config{Debounce: DefaultDebounce, MaxWait: DefaultMaxWait}
}

// Watcher watches directories for changes to matching files
type Watcher struct {
	config   Config
	logger   *slog.Logger
	handler  ChangeHandler
	fsw      *fsnotify.Watcher
	debounce *BatchDebouncer

	mu   sync.Mutex
	dirs map[string]bool
}

// New creates a new file system watcher
func New(config Config, logger *slog.Logger, handler ChangeHandler) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:  config,
		logger:  logger,
		handler: handler,
		fsw:     fsw,
		dirs:    make(map[string]bool),
	}, nil
}

// Add watches path. A file is watched through its directory; a directory
// is watched with all subdirectories that SkipDir keeps.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return w.addDir(filepath.Dir(abs))
	}

	return filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != abs && w.config.SkipDir != nil && w.config.SkipDir(p) {
			return filepath.SkipDir
		}
		return w.addDir(p)
	})
}

func (w *Watcher) addDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.dirs[dir] {
		return nil // Already watching
	}
	if err := w.fsw.Add(dir); err != nil {
		return err
	}
	w.dirs[dir] = true
	w.logger.Debug("Watching directory", "path", dir)
	return nil
}

// WatchedDirs returns the number of watched directories
func (w *Watcher) WatchedDirs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.dirs)
}

// Run delivers batches to the handler until ctx is cancelled. Pending
// events are dropped on exit.
func (w *Watcher) Run(ctx context.Context) error {
	w.debounce = NewBatchDebouncer(w.config.Debounce, w.config.MaxWait, func(events []Event) {
		if ctx.Err() != nil {
			return
		}
		w.logger.Debug("Changes settled", "events", len(events))
		if w.handler != nil {
			w.handler(ctx, events)
		}
	})
	defer w.debounce.Cancel()
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				w.logger.Warn("Watcher event queue overflowed, some changes were missed")
				continue
			}
			w.logger.Error("Watcher error", "error", err.Error())
		}
	}
}

// handleEvent turns one fsnotify event into a pending Event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	var eventType EventType
	switch {
	case event.Op&fsnotify.Create != 0:
		eventType = EventCreate
		// New directories inside a watched tree get watched too
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.config.SkipDir == nil || !w.config.SkipDir(event.Name) {
				if err := w.Add(event.Name); err != nil {
					w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err.Error())
				}
			}
			return
		}
	case event.Op&fsnotify.Write != 0:
		eventType = EventModify
	case event.Op&fsnotify.Remove != 0:
		eventType = EventDelete
	case event.Op&fsnotify.Rename != 0:
		eventType = EventRename
	default:
		return // Ignore chmod
	}

	if w.config.Match != nil && !w.config.Match(event.Name) {
		return
	}

	w.logger.Debug("File event", "type", eventType.String(), "path", event.Name)
	w.debounce.Add(Event{Type: eventType, Path: event.Name, Timestamp: time.Now()})
}
