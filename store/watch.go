package store

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher notices when the database file appears on disk, for the case
// where the viewer starts before the capture server has created it. Each
// appearance pushes one (coalesced) notification onto C; the consumer is
// expected to respond by calling Store.Open again from its own loop.
type Watcher struct {
	C       chan struct{}
	path    string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// WatchPath watches the directory containing path for the file's creation.
func WatchPath(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		C:       make(chan struct{}, 1),
		path:    path,
		watcher: fw,
		stopCh:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	abs, _ := filepath.Abs(w.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			evAbs, _ := filepath.Abs(event.Name)
			if evAbs != abs {
				continue
			}
			select {
			case w.C <- struct{}{}:
			default: // already pending
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("store: watcher error: %v", err)
		case <-w.stopCh:
			return
		}
	}
}

// Stop ends the watch and releases its resources.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}
