// Package zookeeper provides a carousel.Watcher that reads rotator settings
// from a ZooKeeper node using data watches.
package zookeeper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/go-zookeeper/zk"
	"github.com/zoobzio/carousel"
)

// DefaultPath is the node read when New is given an empty path.
const DefaultPath = "/carousel/settings"

// Watcher follows a ZooKeeper node holding a settings document.
type Watcher struct {
	conn *zk.Conn
	path string
}

var _ carousel.Watcher = (*Watcher)(nil)

// New creates a Watcher for the node at p.
func New(conn *zk.Conn, p string) *Watcher {
	if p == "" {
		p = DefaultPath
	}
	return &Watcher{conn: conn, path: p}
}

// Watch emits the node's data, the current value first, then every change.
// A missing node is waited for; a deleted one keeps the last settings until
// it is recreated. The channel closes when ctx is done or the session ends.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	out := make(chan []byte)

	go func() {
		defer close(out)

		var last []byte
		for ctx.Err() == nil {
			data, _, events, err := w.conn.GetW(w.path)
			if errors.Is(err, zk.ErrNoNode) {
				exists, _, created, err := w.conn.ExistsW(w.path)
				if err != nil {
					return
				}
				if exists {
					continue
				}
				events = created
			} else if err != nil {
				return
			} else if last == nil || !bytes.Equal(data, last) {
				last = data
				select {
				case out <- data:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				if ev.Err != nil && !errors.Is(ev.Err, zk.ErrNoNode) {
					return
				}
			}
		}
	}()

	return out, nil
}

// Put writes data to the node, creating it and its parents if needed.
func (w *Watcher) Put(data []byte) error {
	_, err := w.conn.Set(w.path, data, -1)
	if !errors.Is(err, zk.ErrNoNode) {
		if err != nil {
			return fmt.Errorf("set %s: %w", w.path, err)
		}
		return nil
	}
	if err := w.ensure(path.Dir(w.path)); err != nil {
		return err
	}
	if _, err := w.conn.Create(w.path, data, 0, zk.WorldACL(zk.PermAll)); err != nil {
		return fmt.Errorf("create %s: %w", w.path, err)
	}
	return nil
}

// ensure creates p and its ancestors.
func (w *Watcher) ensure(p string) error {
	if p == "/" || p == "." {
		return nil
	}
	if err := w.ensure(path.Dir(p)); err != nil {
		return err
	}
	_, err := w.conn.Create(p, nil, 0, zk.WorldACL(zk.PermAll))
	if err != nil && !errors.Is(err, zk.ErrNodeExists) {
		return fmt.Errorf("create %s: %w", p, err)
	}
	return nil
}
