package index

import (
	"os"
	"path/filepath"
	"strings"

	"localfeed/internal/logging"
	"localfeed/internal/metrics"
	"localfeed/internal/pathguard"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates the index cache when anything under a configured root
// changes, shrinking the staleness window below the TTL without polling.
// The TTL plus watermark checks remain the source of truth; the watcher is
// purely an accelerant and the index stays correct without it.
type Watcher struct {
	cache   *Cache
	roots   RootsFunc
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher over the same roots provider as the cache.
func NewWatcher(cache *Cache, roots RootsFunc) *Watcher {
	return &Watcher{
		cache: cache,
		roots: roots,
		done:  make(chan struct{}),
	}
}

// Start begins watching every configured root subtree. It returns an error
// only if the underlying watcher cannot be created; unreadable directories
// are logged and skipped.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	count := 0
	for _, root := range w.roots() {
		count += w.addTree(pathguard.Normalize(root))
	}
	logging.Debug("index watcher started, watching %d directories", count)
	metrics.WatchedDirectories.Set(float64(count))

	go w.loop()
	return nil
}

// Stop closes the watcher and ends the event loop.
func (w *Watcher) Stop() {
	close(w.done)
	if w.watcher != nil {
		if err := w.watcher.Close(); err != nil {
			logging.Error("failed to close index watcher: %v", err)
		}
	}
}

// addTree registers dir and every subdirectory with the watcher.
func (w *Watcher) addTree(dir string) int {
	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && !strings.HasPrefix(info.Name(), ".") {
			if addErr := w.watcher.Add(path); addErr != nil {
				logging.Warn("failed to watch %s: %v", path, addErr)
			} else {
				count++
			}
		}
		return nil
	})
	if err != nil {
		logging.Warn("failed to walk %s for watching: %v", dir, err)
	}
	return count
}

func (w *Watcher) loop() {
	for {
		select {
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
			logging.Error("index watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Skip hidden files
	if strings.Contains(event.Name, "/.") {
		return
	}

	logging.Debug("index watcher event: %s %s", event.Op, event.Name)
	w.cache.Invalidate()

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if addErr := w.watcher.Add(event.Name); addErr != nil {
				logging.Warn("failed to watch new directory %s: %v", event.Name, addErr)
			} else {
				metrics.WatchedDirectories.Inc()
			}
		}
	}
}
