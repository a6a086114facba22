// Package nats provides a carousel.Watcher that reads rotator settings from
// a NATS JetStream key-value entry.
package nats

import (
	"bytes"
	"context"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/zoobzio/carousel"
)

// DefaultKey is the entry read when New is given an empty key.
const DefaultKey = "carousel.settings"

// Watcher follows one key of a JetStream key-value bucket.
type Watcher struct {
	kv  jetstream.KeyValue
	key string
}

var _ carousel.Watcher = (*Watcher)(nil)

// New creates a Watcher for key in kv.
func New(kv jetstream.KeyValue, key string) *Watcher {
	if key == "" {
		key = DefaultKey
	}
	return &Watcher{kv: kv, key: key}
}

// Watch emits the entry's value, the current one first, then every revision
// that changes it. Deletes and purges are ignored, so the last settings stay
// in effect.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	watcher, err := w.kv.Watch(ctx, w.key)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", w.key, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer watcher.Stop()

		var last []byte
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-watcher.Updates():
				if !ok {
					return
				}
				// nil marks the end of the initial values.
				if entry == nil {
					continue
				}
				switch entry.Operation() {
				case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
					continue
				}
				value := entry.Value()
				if last != nil && bytes.Equal(value, last) {
					continue
				}
				last = value

				select {
				case out <- value:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Put stores a settings document under the watcher's key.
func (w *Watcher) Put(ctx context.Context, data []byte) error {
	if _, err := w.kv.Put(ctx, w.key, data); err != nil {
		return fmt.Errorf("put %s: %w", w.key, err)
	}
	return nil
}
