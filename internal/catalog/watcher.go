// This file implements a file system watcher for the local catalog file.
// It uses OS-level file system events to reload curated books when the file
// changes, instead of waiting for the next scheduled refresh.

package catalog

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatcherService watches the directory containing the local catalog file
// and reloads it when the file is written, created, renamed or removed.
type WatcherService struct {
	service       *Service
	watcher       *fsnotify.Watcher
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewWatcherService creates a watcher for the service's local catalog file.
func NewWatcherService(service *Service) *WatcherService {
	return &WatcherService{
		service:       service,
		debounceDelay: 2 * time.Second, // Wait 2 seconds after last change before reloading
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching. It fails if the service has no local catalog path
// or the containing directory cannot be watched.
func (w *WatcherService) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	// Watch the parent directory: editors replace files via rename, which a
	// watch on the file itself would lose.
	dir := filepath.Dir(w.service.localPath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	log.Printf("File watcher started for local catalog: %s", w.service.localPath)
	go w.processEvents()
	return nil
}

// Stop shuts the watcher down.
func (w *WatcherService) Stop() {
	close(w.stopChan)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *WatcherService) processEvents() {
	target := filepath.Clean(w.service.localPath)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("catalog watcher error: %v", err)
		case <-w.stopChan:
			return
		}
	}
}

// scheduleReload debounces bursts of write events into a single reload.
func (w *WatcherService) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		log.Println("Local catalog changed, reloading...")
		w.service.ReloadLocal()
	})
}
