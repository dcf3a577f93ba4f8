// Package watcher drives commands-document auto-reload: it watches one file
// for changes, groups rapid bursts with a debouncer, and hands the batch to
// registered handlers.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/keyrun-app/keyrun/internal/logging"
)

// DocumentWatcher watches a single document with debouncing. It watches the
// parent directory rather than the file itself: editors that save via
// rename-and-replace would otherwise silently drop the watch.
type DocumentWatcher struct {
	watcher   *fsnotify.Watcher
	path      string
	base      string
	debouncer *debouncer
	handlers  []ChangeHandler
	log       logging.Logger
	mutex     sync.RWMutex
}

// ChangeEvent represents one observed change to the document.
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
}

// EventType represents the type of file change.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeRemoved
	EventTypeRenamed
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeRemoved:
		return "removed"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// ChangeHandler receives one debounced batch of changes.
type ChangeHandler func(events []ChangeEvent)

// debouncer groups rapid changes: every change resets the timer, and the
// pending batch flushes once the document has been quiet for the delay.
type debouncer struct {
	delay   time.Duration
	flushFn func([]ChangeEvent)

	mutex   sync.Mutex
	timer   *time.Timer
	pending []ChangeEvent
}

func (d *debouncer) add(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *debouncer) flush() {
	d.mutex.Lock()
	events := d.pending
	d.pending = nil
	d.mutex.Unlock()

	if len(events) > 0 {
		d.flushFn(events)
	}
}

func (d *debouncer) stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// NewDocumentWatcher creates a watcher for the document at path. The parent
// directory must exist; the document itself may not yet.
func NewDocumentWatcher(path string, debounce time.Duration, log logging.Logger) (*DocumentWatcher, error) {
	if log == nil {
		log = logging.NewNop()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving document path: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	dw := &DocumentWatcher{
		watcher:  fsWatcher,
		path:     abs,
		base:     filepath.Base(abs),
		handlers: make([]ChangeHandler, 0),
		log:      log.WithComponent("watcher"),
	}
	dw.debouncer = &debouncer{delay: debounce, flushFn: dw.dispatch}

	if err := fsWatcher.Add(filepath.Dir(abs)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return dw, nil
}

// Path returns the watched document's absolute path.
func (dw *DocumentWatcher) Path() string {
	return dw.path
}

// AddHandler registers a handler for debounced change batches.
func (dw *DocumentWatcher) AddHandler(handler ChangeHandler) {
	dw.mutex.Lock()
	defer dw.mutex.Unlock()
	dw.handlers = append(dw.handlers, handler)
}

// Start begins watching until ctx is cancelled.
func (dw *DocumentWatcher) Start(ctx context.Context) {
	go dw.watchLoop(ctx)
}

// Stop stops the watcher and releases its resources.
func (dw *DocumentWatcher) Stop() error {
	dw.debouncer.stop()
	return dw.watcher.Close()
}

func (dw *DocumentWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			dw.handleFsnotifyEvent(ctx, event)
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.log.Warn(ctx, err, "file watcher error")
		}
	}
}

func (dw *DocumentWatcher) handleFsnotifyEvent(ctx context.Context, event fsnotify.Event) {
	// Only the watched document matters; editors drop temp files into the
	// same directory while saving.
	if filepath.Base(event.Name) != dw.base {
		return
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventTypeCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventTypeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventTypeRemoved
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}

	var modTime time.Time
	if info, err := os.Stat(event.Name); err == nil {
		modTime = info.ModTime()
	}

	dw.log.Debug(ctx, "document changed", "type", eventType.String(), "path", event.Name)
	dw.debouncer.add(ChangeEvent{Type: eventType, Path: event.Name, ModTime: modTime})
}

func (dw *DocumentWatcher) dispatch(events []ChangeEvent) {
	dw.mutex.RLock()
	handlers := dw.handlers
	dw.mutex.RUnlock()

	for _, handler := range handlers {
		handler(events)
	}
}
