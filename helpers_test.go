package carousel

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
)

// call is one presenter invocation.
type call struct {
	op    string
	index int
}

// recorder is a Presenter that records calls and tracks which slides are
// currently visible.
type recorder[T any] struct {
	mu      sync.Mutex
	calls   []call
	visible map[int]bool
	fail    error
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{visible: make(map[int]bool)}
}

func (p *recorder[T]) Activate(_ context.Context, index int, _ T) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call{op: "activate", index: index})
	p.visible[index] = true
	return p.fail
}

func (p *recorder[T]) Deactivate(_ context.Context, index int, _ T) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call{op: "deactivate", index: index})
	delete(p.visible, index)
	return p.fail
}

func (p *recorder[T]) snapshot() []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]call(nil), p.calls...)
}

func (p *recorder[T]) active() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int, 0, len(p.visible))
	for i := range p.visible {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// countingMetrics counts advances per cause and timer resets.
type countingMetrics struct {
	NoOpMetricsProvider
	ticks    atomic.Int32
	resets   atomic.Int32
	rejected atomic.Int32
	failures atomic.Int32
}

func (m *countingMetrics) OnAdvance(_, _ int, cause Cause) {
	if cause == CauseTick {
		m.ticks.Add(1)
	}
}

func (m *countingMetrics) OnTimerReset()                         { m.resets.Add(1) }
func (m *countingMetrics) OnSlideRejected(_ int, _ error)        { m.rejected.Add(1) }
func (m *countingMetrics) OnTransitionFailure(_ string, _ error) { m.failures.Add(1) }

// waitFor polls condition until it holds or timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return condition()
}

// warmSignals emits every signal once so any lazily started event workers
// exist before a goroutine leak baseline is taken.
func warmSignals() {
	ctx := context.Background()
	for _, sig := range []capitan.Signal{
		RotatorStarted, RotatorStopped, RotatorStateChanged,
		SlideAdvanced, SlideRejected, LoadCompleted, TimerReset, TransitionFailed,
		SettingsReceived, SettingsRejected, SettingsApplied,
	} {
		capitan.Emit(ctx, sig)
	}
}
