package guides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the guide directory must stay quiet before a
// reload runs.
const DefaultDebounce = 300 * time.Millisecond

// ErrWatcherStopped is returned by Start once Stop has been called. A
// Watcher is single-use.
var ErrWatcherStopped = errors.New("guide watcher stopped")

// ReloadFunc builds a fresh repository from the watched source.
type ReloadFunc func() (*Repository, error)

// Watcher reloads guides when files in a directory change and swaps the
// result into a Store. A failed reload keeps the previous repository.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dir      string
	store    *Store
	reload   ReloadFunc
	debounce time.Duration
	logger   *slog.Logger

	pending time.Time
	reloads int

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
	stopped bool
}

// NewWatcher creates a watcher on dir. Call Start to begin watching.
func NewWatcher(dir string, store *Store, reload ReloadFunc, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		watcher:  fw,
		dir:      dir,
		store:    store,
		reload:   reload,
		debounce: DefaultDebounce,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// SetDebounce overrides DefaultDebounce. It must be called before Start.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Start adds the directory to the watch list and runs the event loop in a
// goroutine until Stop is called or ctx is done. Starting a stopped watcher
// fails with ErrWatcherStopped.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return ErrWatcherStopped
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.logger.Info("watching guide directory", "dir", w.dir)

	go w.run(ctx)
	return nil
}

// Stop ends the event loop, waits for it to exit, and releases the
// underlying watcher. Stop is safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	alreadyStopped := w.stopped
	w.stopped = true
	w.mu.Unlock()

	if wasRunning {
		select {
		case <-w.stopCh:
		default:
			close(w.stopCh)
		}
		<-w.doneCh
	}
	if alreadyStopped {
		return
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Error("closing guide watcher", "error", err)
	}
}

// Reloads reports how many successful reloads have been applied.
func (w *Watcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("guide watcher error", "error", err)
		case <-ticker.C:
			w.maybeReload()
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	ext := filepath.Ext(ev.Name)
	if ext != ".md" && ext != ".txt" {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
		!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("guide file changed", "file", filepath.Base(ev.Name), "op", ev.Op.String())

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) maybeReload() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	repo, err := w.reload()
	if err != nil {
		w.logger.Error("guide reload failed, keeping previous guides", "error", err)
		return
	}
	prev := w.store.Swap(repo)
	prevCount := 0
	if prev != nil {
		prevCount = prev.Len()
	}

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	w.logger.Info("guides reloaded", "guides", repo.Len(), "previous", prevCount)
}
