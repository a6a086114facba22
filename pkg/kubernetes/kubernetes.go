// Package kubernetes provides a carousel.Watcher that reads rotator settings
// from a key of a ConfigMap or Secret and follows it with the Watch API.
package kubernetes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoobzio/carousel"
	"github.com/zoobzio/clockz"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/watch"
	"k8s.io/client-go/kubernetes"
)

// DefaultKey is the data key read when New is given an empty one.
const DefaultKey = "carousel.yaml"

// DefaultRetry is how long the watcher waits before re-establishing a
// failed watch.
const DefaultRetry = 2 * time.Second

var errWatchClosed = errors.New("kubernetes: watch closed")

// ResourceType specifies the type of Kubernetes resource to watch.
type ResourceType int

const (
	// ConfigMap watches a ConfigMap resource.
	ConfigMap ResourceType = iota
	// Secret watches a Secret resource.
	Secret
)

// String returns the resource kind.
func (rt ResourceType) String() string {
	if rt == Secret {
		return "Secret"
	}
	return "ConfigMap"
}

// Watcher follows one data key of a ConfigMap or Secret.
type Watcher struct {
	client       kubernetes.Interface
	namespace    string
	name         string
	key          string
	resourceType ResourceType
	retry        time.Duration
	clock        clockz.Clock
}

var _ carousel.Watcher = (*Watcher)(nil)

// Option configures a Watcher.
type Option func(*Watcher)

// WithResourceType sets the resource type to watch.
// Defaults to ConfigMap.
func WithResourceType(rt ResourceType) Option {
	return func(w *Watcher) {
		w.resourceType = rt
	}
}

// WithRetry sets the delay before a failed watch is re-established.
func WithRetry(d time.Duration) Option {
	return func(w *Watcher) {
		w.retry = d
	}
}

// WithClock sets the clock used for retry delays.
func WithClock(clock clockz.Clock) Option {
	return func(w *Watcher) {
		w.clock = clock
	}
}

// New creates a Watcher for key in the named resource.
func New(client kubernetes.Interface, namespace, name, key string, opts ...Option) *Watcher {
	if key == "" {
		key = DefaultKey
	}
	w := &Watcher{
		client:       client,
		namespace:    namespace,
		name:         name,
		key:          key,
		resourceType: ConfigMap,
		retry:        DefaultRetry,
		clock:        clockz.RealClock,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch emits the key's value, the current one first, then follows the
// resource. A value identical to the last one emitted is skipped, and so is
// a resource that lacks the key. The initial read must succeed; later
// failures are retried until ctx is done.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	value, version, err := w.getValue(ctx)
	if err != nil {
		return nil, fmt.Errorf("read %s %s/%s: %w", w.resourceType, w.namespace, w.name, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)

		var last []byte
		send := func(v []byte) bool {
			if v == nil || (last != nil && bytes.Equal(v, last)) {
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

		for {
			err := w.follow(ctx, version, value, send)
			if ctx.Err() != nil || err == nil {
				return
			}

			timer := w.clock.NewTimer(w.retry)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C():
			}

			// Re-read so a change missed while disconnected is not lost.
			value, version, err = w.getValue(ctx)
			if err != nil {
				value, version = nil, ""
			}
		}
	}()

	return out, nil
}

// follow opens a watch from version, sends current once the watch is
// established, then streams events until the watch fails. It returns nil
// only when send reports the consumer is gone.
func (w *Watcher) follow(ctx context.Context, version string, current []byte, send func([]byte) bool) error {
	opts := metav1.ListOptions{
		FieldSelector:   fields.OneTermEqualSelector("metadata.name", w.name).String(),
		ResourceVersion: version,
	}

	var (
		watcher watch.Interface
		err     error
	)
	if w.resourceType == ConfigMap {
		watcher, err = w.client.CoreV1().ConfigMaps(w.namespace).Watch(ctx, opts)
	} else {
		watcher, err = w.client.CoreV1().Secrets(w.namespace).Watch(ctx, opts)
	}
	if err != nil {
		return fmt.Errorf("start watch: %w", err)
	}
	defer watcher.Stop()

	if !send(current) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.ResultChan():
			if !ok {
				return errWatchClosed
			}
			switch event.Type {
			case watch.Error:
				return fmt.Errorf("watch error: %v", event.Object)
			case watch.Deleted, watch.Bookmark:
				continue
			}
			if m, ok := event.Object.(metav1.Object); ok && m.GetName() != w.name {
				continue
			}
			if !send(w.extractValue(event.Object)) {
				return nil
			}
		}
	}
}

func (w *Watcher) getValue(ctx context.Context) ([]byte, string, error) {
	if w.resourceType == ConfigMap {
		cm, err := w.client.CoreV1().ConfigMaps(w.namespace).Get(ctx, w.name, metav1.GetOptions{})
		if err != nil {
			return nil, "", err
		}
		return w.extractValue(cm), cm.ResourceVersion, nil
	}

	secret, err := w.client.CoreV1().Secrets(w.namespace).Get(ctx, w.name, metav1.GetOptions{})
	if err != nil {
		return nil, "", err
	}
	return w.extractValue(secret), secret.ResourceVersion, nil
}

// extractValue returns the key's bytes, or nil when obj is the wrong kind
// or lacks the key.
func (w *Watcher) extractValue(obj any) []byte {
	switch o := obj.(type) {
	case *corev1.ConfigMap:
		if w.resourceType != ConfigMap {
			return nil
		}
		if v, ok := o.Data[w.key]; ok {
			return []byte(v)
		}
		if v, ok := o.BinaryData[w.key]; ok {
			return v
		}
	case *corev1.Secret:
		if w.resourceType != Secret {
			return nil
		}
		if v, ok := o.Data[w.key]; ok {
			return v
		}
	}
	return nil
}
