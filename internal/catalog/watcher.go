package catalog

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a file-backed catalogue whenever the file changes.
// A reload that fails keeps the last good catalogue in the store.
type Watcher struct {
	store    *Store
	path     string
	watcher  *fsnotify.Watcher
	onReload func(*Catalogue)

	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// NewWatcher creates a watcher for the catalogue file at path
func NewWatcher(store *Store, path string) (*Watcher, error) {
	if isURL(path) {
		return nil, fmt.Errorf("cannot watch remote catalogue %s", path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return &Watcher{
		store:  store,
		path:   abs,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// OnReload registers a callback invoked after each successful reload
func (w *Watcher) OnReload(fn func(*Catalogue)) {
	w.onReload = fn
}

// Start begins watching. The parent directory is watched so that editors
// replacing the file by rename are picked up too.
func (w *Watcher) Start() error {
	var err error
	w.watcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		w.watcher.Close()
		w.watcher = nil
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	go w.watch()
	log.Printf("Watching device catalogue %s", w.path)
	return nil
}

func (w *Watcher) watch() {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			absEventPath, _ := filepath.Abs(event.Name)
			if absEventPath != w.path {
				continue
			}

			log.Printf("File modified: %s", event.Name)
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)

		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	cat, err := Load(context.Background(), w.path, nil)
	if err != nil {
		log.Printf("Error reloading device catalogue, keeping previous: %v", err)
		return
	}

	w.store.Replace(cat)
	prefixes, categories := cat.Len()
	log.Printf("Reloaded device catalogue (%d prefixes, %d categories)", prefixes, categories)

	if w.onReload != nil {
		w.onReload(cat)
	}
}

// Stop stops watching and waits for the watch loop to exit
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		if w.watcher != nil {
			w.watcher.Close()
			<-w.done
		}
	})
}
