// Package firestore provides a carousel.Watcher that reads rotator settings
// from a Firestore document field using realtime listeners.
package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/zoobzio/carousel"
)

// DefaultField is the document field read when no other is configured.
const DefaultField = "settings"

// Watcher follows one field of a Firestore document. The field may hold
// the settings document as a string or bytes, or as a native map, which is
// emitted as JSON.
type Watcher struct {
	client     *firestore.Client
	collection string
	document   string
	field      string
}

var _ carousel.Watcher = (*Watcher)(nil)

// Option configures a Watcher.
type Option func(*Watcher)

// WithField sets the document field to read.
// Defaults to DefaultField.
func WithField(field string) Option {
	return func(w *Watcher) {
		w.field = field
	}
}

// New creates a Watcher for collection/document.
func New(client *firestore.Client, collection, document string, opts ...Option) *Watcher {
	w := &Watcher{
		client:     client,
		collection: collection,
		document:   document,
		field:      DefaultField,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch emits the field's value on every snapshot that changes it, the
// current one first. Snapshots of a missing document or field are skipped.
// The channel closes when ctx is done or the listener fails permanently.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	docRef := w.client.Collection(w.collection).Doc(w.document)

	out := make(chan []byte)

	go func() {
		defer close(out)

		snapshots := docRef.Snapshots(ctx)
		defer snapshots.Stop()

		var last []byte
		for {
			snap, err := snapshots.Next()
			if err != nil {
				// The iterator retries transient errors itself.
				return
			}
			if !snap.Exists() {
				continue
			}

			value, ok := extract(snap.Data()[w.field])
			if !ok || (last != nil && bytes.Equal(value, last)) {
				continue
			}
			last = value

			select {
			case out <- value:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// extract converts a document field to settings bytes.
func extract(field any) ([]byte, bool) {
	switch v := field.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return b, true
	}
	return nil, false
}

// Put writes data into the watched field, creating the document if needed.
func (w *Watcher) Put(ctx context.Context, data []byte) error {
	_, err := w.client.Collection(w.collection).Doc(w.document).Set(ctx,
		map[string]any{w.field: data},
		firestore.MergeAll,
	)
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", w.collection, w.document, err)
	}
	return nil
}
