package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/executor"
)

// DefaultDebounce is the window within which repeated notifications for the
// same path are ignored.
const DefaultDebounce = 1 * time.Second

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the watcher's logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// Clock abstracts time for debounce tests.
type Clock func() time.Time

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(w *Watcher) { w.now = clock }
}

// Watcher drives selective re-execution of one document's cells.
type Watcher struct {
	path     string
	pipeline executor.Component
	debounce time.Duration
	log      *slog.Logger
	now      Clock

	mu           sync.Mutex
	lastAccepted time.Time
	previous     map[string]string
}

// New creates a watcher for the document at path. The current file content
// seeds the previous-cell-text memory, so the first notification only
// executes what actually changed since construction.
func New(path string, pipeline executor.Component, opts ...Option) (*Watcher, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     path,
		pipeline: pipeline,
		debounce: DefaultDebounce,
		log:      slog.Default(),
		now:      time.Now,
		previous: cellText(doc),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run subscribes to filesystem notifications and processes them until the
// context is cancelled.
//
// The parent directory is watched rather than the file itself, so
// atomic-save editors (write temp, rename over) keep triggering events;
// non-matching paths are filtered out in HandleEvent.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.log.Info("watching", "path", w.path, "debounce", w.debounce)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := w.HandleEvent(ctx, event.Name); err != nil {
				w.log.Error("change handling failed", "path", w.path, "error", err)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("filesystem watcher error", "error", err)
		}
	}
}

// HandleEvent processes one modification notification.
//
// Events for other paths are ignored, as are events arriving inside the
// debounce window. An accepted event reloads the document, refreshes the
// pipeline (connections survive), diffs cell text against the previous
// snapshot, and executes added and changed cells. The previous snapshot is
// replaced unconditionally, even when some executions fail.
func (w *Watcher) HandleEvent(ctx context.Context, eventPath string) error {
	if filepath.Clean(eventPath) != filepath.Clean(w.path) {
		return nil
	}

	now := w.now()
	w.mu.Lock()
	if !w.lastAccepted.IsZero() && now.Sub(w.lastAccepted) < w.debounce {
		w.mu.Unlock()
		return nil
	}
	w.lastAccepted = now
	w.mu.Unlock()

	w.log.Info("document modified", "path", w.path)

	doc, err := document.Load(w.path)
	if err != nil {
		return fmt.Errorf("reload document: %w", err)
	}

	if err := w.pipeline.Refresh(doc); err != nil {
		return fmt.Errorf("refresh pipeline: %w", err)
	}

	current := cellText(doc)

	w.mu.Lock()
	added, changed, removed := Diff(w.previous, current)
	w.previous = current
	w.mu.Unlock()

	for _, name := range removed {
		w.log.Info("cell removed", "cell", name)
	}

	for _, name := range append(added, changed...) {
		if cfg := w.pipeline.CellConfig(name); cfg != nil && !cfg.AutoRun {
			w.log.Info("skipping cell: auto_run disabled", "cell", name)
			continue
		}

		// One cell failing never blocks the rest of the batch.
		if _, err := w.pipeline.ExecuteCell(ctx, name); err != nil {
			w.log.Error("cell execution failed", "cell", name, "error", err)
		}
	}

	return nil
}

// cellText snapshots a document's cells as name → raw text.
func cellText(doc *document.Document) map[string]string {
	cells := doc.Cells()
	text := make(map[string]string, len(cells))
	for _, c := range cells {
		text[c.Name] = c.Text
	}
	return text
}
