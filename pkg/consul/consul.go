// Package consul provides a carousel.Watcher that reads rotator settings
// from a Consul KV key using blocking queries.
package consul

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/zoobzio/carousel"
)

// DefaultKey is the key read when New is given an empty one.
const DefaultKey = "carousel/settings"

// DefaultWait bounds each blocking query.
const DefaultWait = 5 * time.Minute

// retryDelay spaces out queries after the agent returns an error.
const retryDelay = time.Second

// Watcher follows a Consul KV key holding a settings document.
type Watcher struct {
	client *api.Client
	key    string
	wait   time.Duration
}

var _ carousel.Watcher = (*Watcher)(nil)

// Option configures a Watcher.
type Option func(*Watcher)

// WithWait sets how long each blocking query may wait for a change.
func WithWait(d time.Duration) Option {
	return func(w *Watcher) {
		w.wait = d
	}
}

// New creates a Watcher for key on client.
func New(client *api.Client, key string, opts ...Option) *Watcher {
	if key == "" {
		key = DefaultKey
	}
	w := &Watcher{client: client, key: key, wait: DefaultWait}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch emits the key's value, the current one first, then every change.
// Blocking queries that return the same value, and deletes, emit nothing.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	kv := w.client.KV()

	pair, meta, err := kv.Get(w.key, (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", w.key, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)

		var last []byte
		send := func(p *api.KVPair) bool {
			if p == nil || (last != nil && bytes.Equal(p.Value, last)) {
				return true
			}
			last = p.Value
			select {
			case out <- p.Value:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !send(pair) {
			return
		}

		index := meta.LastIndex
		for ctx.Err() == nil {
			opts := (&api.QueryOptions{WaitIndex: index, WaitTime: w.wait}).WithContext(ctx)
			pair, meta, err := kv.Get(w.key, opts)
			if err != nil {
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryDelay):
				}
				continue
			}
			// An index that goes backwards means the raft log was reset.
			if meta.LastIndex < index {
				index = 0
				continue
			}
			index = meta.LastIndex
			if !send(pair) {
				return
			}
		}
	}()

	return out, nil
}

// Put stores a settings document under the watcher's key.
func (w *Watcher) Put(ctx context.Context, data []byte) error {
	_, err := w.client.KV().Put(&api.KVPair{Key: w.key, Value: data}, (&api.WriteOptions{}).WithContext(ctx))
	if err != nil {
		return fmt.Errorf("put %s: %w", w.key, err)
	}
	return nil
}
