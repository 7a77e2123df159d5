package inkpress

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eringen/inkpress/content"
	"github.com/eringen/inkpress/logger"
)

const watchDebounce = 100 * time.Millisecond

// ContentWatcher invalidates a ContentCache whenever a file under one of the
// collection directories is written, created, removed or renamed. Bursts of
// events inside watchDebounce collapse into one invalidation.
type ContentWatcher struct {
	watcher *fsnotify.Watcher
	cache   *ContentCache
	log     logger.Logger

	mu       sync.Mutex
	timer    *time.Timer
	done     chan struct{}
	stopOnce sync.Once
}

// WatchContent starts watching the collection directories under root. Missing
// directories are created first so later files are seen. Call Stop to release
// the watcher.
func WatchContent(root string, cache *ContentCache, log logger.Logger) (*ContentWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, t := range content.Types {
		dir := filepath.Join(root, t.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.Close()
			return nil, err
		}
		if err := w.Add(dir); err != nil {
			w.Close()
			return nil, err
		}
	}

	cw := &ContentWatcher{watcher: w, cache: cache, log: log, done: make(chan struct{})}
	go cw.loop()
	return cw, nil
}

func (cw *ContentWatcher) loop() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				cw.schedule()
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			logger.ErrorWithFields(cw.log, "content watcher error", logger.Fields{"error": err.Error()})
		case <-cw.done:
			return
		}
	}
}

func (cw *ContentWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(watchDebounce, func() {
		cw.cache.Invalidate()
		cw.log.Debug("content changed on disk, cache invalidated")
	})
}

// Stop closes the watcher and drops any pending invalidation. It is safe to
// call more than once.
func (cw *ContentWatcher) Stop() error {
	var err error
	cw.stopOnce.Do(func() {
		close(cw.done)
		err = cw.watcher.Close()
		cw.mu.Lock()
		if cw.timer != nil {
			cw.timer.Stop()
		}
		cw.mu.Unlock()
	})
	return err
}
