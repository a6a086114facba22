// Package etcd provides a carousel.Watcher that reads rotator settings from
// an etcd key and follows it with the Watch API.
package etcd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/zoobzio/carousel"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// DefaultKey is the key read when New is given an empty one.
const DefaultKey = "/carousel/settings"

// Watcher follows an etcd key holding a settings document.
type Watcher struct {
	client *clientv3.Client
	key    string
}

var _ carousel.Watcher = (*Watcher)(nil)

// New creates a Watcher for key on client.
func New(client *clientv3.Client, key string) *Watcher {
	if key == "" {
		key = DefaultKey
	}
	return &Watcher{client: client, key: key}
}

// Watch emits the key's value, the current one first, then every put that
// changes it. Deletes are ignored, so the last settings stay in effect.
// A compacted or cancelled watch closes the channel.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	resp, err := w.client.Get(ctx, w.key)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", w.key, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)

		var last []byte
		send := func(v []byte) bool {
			if last != nil && bytes.Equal(v, last) {
				return true
			}
			last = v
			select {
			case out <- v:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if len(resp.Kvs) > 0 && !send(resp.Kvs[0].Value) {
			return
		}

		changes := w.client.Watch(ctx, w.key, clientv3.WithRev(resp.Header.Revision+1))
		for {
			select {
			case <-ctx.Done():
				return
			case wr, ok := <-changes:
				if !ok {
					return
				}
				if wr.Canceled {
					return
				}
				if wr.Err() != nil {
					continue
				}
				for _, ev := range wr.Events {
					if ev.Type != clientv3.EventTypePut {
						continue
					}
					if !send(ev.Kv.Value) {
						return
					}
				}
			}
		}
	}()

	return out, nil
}

// Put stores a settings document under the watcher's key.
func (w *Watcher) Put(ctx context.Context, data []byte) error {
	if _, err := w.client.Put(ctx, w.key, string(data)); err != nil {
		return fmt.Errorf("put %s: %w", w.key, err)
	}
	return nil
}
