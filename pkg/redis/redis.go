// Package redis provides a carousel.Watcher that reads rotator settings from
// a Redis key and follows it with keyspace notifications.
package redis

import (
	"bytes"
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/zoobzio/carousel"
)

// DefaultKey is the key read when New is given an empty one.
const DefaultKey = "carousel:settings"

// Watcher follows a Redis string key holding a settings document.
// Keyspace notifications must be enabled on the server:
//
//	CONFIG SET notify-keyspace-events KEA
type Watcher struct {
	client *redis.Client
	key    string
}

var _ carousel.Watcher = (*Watcher)(nil)

// New creates a Watcher for key on client.
func New(client *redis.Client, key string) *Watcher {
	if key == "" {
		key = DefaultKey
	}
	return &Watcher{client: client, key: key}
}

// Key returns the watched key.
func (w *Watcher) Key() string { return w.key }

// channel is the keyspace channel for the key in the client's database.
func (w *Watcher) channel() string {
	return fmt.Sprintf("__keyspace@%d__:%s", w.client.Options().DB, w.key)
}

// Watch subscribes to changes of the key and emits its value, the current
// one first. Writes that leave the value unchanged are not re-emitted and
// deletes are ignored, so the last settings stay in effect.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	pubsub := w.client.Subscribe(ctx, w.channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", w.key, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer pubsub.Close()

		var last []byte
		emit := func() bool {
			val, err := w.client.Get(ctx, w.key).Bytes()
			if err != nil {
				// Missing keys and transient read errors wait for the next write.
				return ctx.Err() == nil
			}
			if last != nil && bytes.Equal(val, last) {
				return true
			}
			last = val
			select {
			case out <- val:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				if !isWrite(msg.Payload) {
					continue
				}
				if !emit() {
					return
				}
			}
		}
	}()

	return out, nil
}

// isWrite reports whether a keyspace event replaces a string value.
func isWrite(event string) bool {
	switch event {
	case "set", "setex", "psetex", "setnx", "setrange", "append", "getset", "mset", "rename_to", "copy_to":
		return true
	}
	return false
}

// Put stores a settings document under the watcher's key.
func (w *Watcher) Put(ctx context.Context, data []byte) error {
	if err := w.client.Set(ctx, w.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", w.key, err)
	}
	return nil
}
