package loader

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/speed-dashboard/internal/logger"
)

// DebounceInterval collapses bursts of file events into one notification.
const DebounceInterval = 100 * time.Millisecond

// Watcher reports when files matching a loader pattern are created or
// rewritten.
type Watcher struct {
	pattern  string
	watcher  *fsnotify.Watcher
	onChange func()
	onError  func(error)

	mu            sync.Mutex
	debounceTimer *time.Timer
	stopChan      chan struct{}
	closeOnce     sync.Once
}

// NewWatcher watches the directory of pattern. onChange runs on its own
// goroutine once per debounced burst; onError may be nil.
func NewWatcher(pattern string, onChange func(), onError func(error)) (*Watcher, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(pattern)
	if err := fsw.Add(dir); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w := &Watcher{
		pattern:  pattern,
		watcher:  fsw,
		onChange: onChange,
		onError:  onError,
		stopChan: make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Matches reports whether a file event path belongs to the watched pattern.
func (w *Watcher) Matches(path string) bool {
	ok, err := filepath.Match(filepath.Base(w.pattern), filepath.Base(path))
	return err == nil && ok
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.Matches(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Data watcher error", "error", err)
			if w.onError != nil {
				w.onError(err)
			}

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(DebounceInterval, func() {
		select {
		case <-w.stopChan:
			return
		default:
		}
		w.onChange()
	})
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		if w.debounceTimer != nil {
			w.debounceTimer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}
