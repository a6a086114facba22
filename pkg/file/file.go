// Package file provides a settings Watcher backed by fsnotify.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/zoobzio/carousel"
)

// Watcher emits the contents of a settings file initially and every time the
// file is written or replaced.
type Watcher struct {
	path string
}

// New creates a Watcher for the file at path.
func New(path string) *Watcher {
	return &Watcher{path: path}
}

var _ carousel.Watcher = (*Watcher)(nil)

// Watch starts watching the file. The parent directory is watched rather
// than the file itself so editors that save by rename keep delivering
// updates. Empty reads are skipped. The file must exist when Watch is called.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	target := filepath.Clean(w.path)
	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", target, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", target, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer watcher.Close()

		emit := func() bool {
			data, err := os.ReadFile(target)
			if err != nil || len(data) == 0 {
				// Missing or truncated mid-write; the next event carries the content.
				return true
			}
			select {
			case out <- data:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if !emit() {
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}
