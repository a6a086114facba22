// Package testing provides test utilities and helpers for carousel testing.
package testing

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/carousel"
)

// Call is one recorded presenter invocation.
type Call struct {
	Op    string // "activate" or "deactivate"
	Index int
}

// Recorder is a carousel.Presenter that records every call and tracks which
// slides are currently visible.
type Recorder[T any] struct {
	mu      sync.Mutex
	calls   []Call
	visible map[int]bool
	err     error
}

// NewRecorder creates an empty Recorder.
func NewRecorder[T any]() *Recorder[T] {
	return &Recorder[T]{visible: make(map[int]bool)}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (r *Recorder[T]) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Activate implements carousel.Presenter.
func (r *Recorder[T]) Activate(_ context.Context, index int, _ T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "activate", Index: index})
	r.visible[index] = true
	return r.err
}

// Deactivate implements carousel.Presenter.
func (r *Recorder[T]) Deactivate(_ context.Context, index int, _ T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: "deactivate", Index: index})
	delete(r.visible, index)
	return r.err
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder[T]) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Visible returns the indexes of currently visible slides, ascending.
func (r *Recorder[T]) Visible() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, 0, len(r.visible))
	for i := range r.visible {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

var _ carousel.Presenter[string] = (*Recorder[string])(nil)

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return condition()
}

// WaitForIndex waits until the rotator's active index is expected.
func WaitForIndex[T any](t *testing.T, r *carousel.Rotator[T], expected int, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return r.Index() == expected
	})
}

// RequireIndex fails the test immediately if the active index is not expected.
func RequireIndex[T any](t *testing.T, r *carousel.Rotator[T], expected int) {
	t.Helper()
	if got := r.Index(); got != expected {
		t.Fatalf("expected index %d, got %d", expected, got)
	}
}

// RequireState fails the test immediately if the rotator is not in the expected state.
func RequireState[T any](t *testing.T, r *carousel.Rotator[T], expected carousel.State) {
	t.Helper()
	if got := r.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// NewTestReloader creates a sync-mode Reloader fed by the returned channel.
func NewTestReloader(t *testing.T, apply func(context.Context, carousel.Settings, carousel.Settings) error) (*carousel.Reloader, chan<- []byte) {
	t.Helper()
	ch := make(chan []byte, 10)
	r := carousel.NewReloader(carousel.NewSyncChannelWatcher(ch), apply).SyncMode()
	return r, ch
}
