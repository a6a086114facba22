package carousel

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// Presenter applies the visual side of a transition. Deactivate is always
// called for the outgoing slide before Activate is called for the incoming
// one. Presenters are invoked while the Rotator holds its lock and must not
// call back into the Rotator.
type Presenter[T any] interface {
	Deactivate(ctx context.Context, index int, slide T) error
	Activate(ctx context.Context, index int, slide T) error
}

// nopPresenter is used when no presenter is configured.
type nopPresenter[T any] struct{}

func (nopPresenter[T]) Deactivate(context.Context, int, T) error { return nil }
func (nopPresenter[T]) Activate(context.Context, int, T) error   { return nil }

// Rotator owns an ordered slide sequence, the active index, and the single
// repeating timer that advances it.
type Rotator[T any] struct {
	interval   time.Duration
	fadeDelay  time.Duration
	clock      clockz.Clock
	presenter  Presenter[T]
	metrics    MetricsProvider
	onStop     func(State)
	rejections *ring[Rejection[T]]

	state     atomic.Int32
	index     atomic.Int64
	lastError atomic.Pointer[error]

	mu      sync.Mutex
	slides  []T
	runCtx  context.Context
	tick    *schedule
	fade    *schedule
	shown   int
	pending int
}

// schedule is one armed one-shot timer and the channel that retires its
// goroutine when the timer is cancelled.
type schedule struct {
	timer clockz.Timer
	done  chan struct{}
}

func newSchedule(clock clockz.Clock, d time.Duration) *schedule {
	return &schedule{
		timer: clock.NewTimer(d),
		done:  make(chan struct{}),
	}
}

func (s *schedule) cancel() {
	s.timer.Stop()
	close(s.done)
}

// New creates a Rotator over slides. The sequence is copied. An empty
// sequence yields an inert Rotator.
//
// Instance configuration uses chainable methods before calling Start().
//
// Example:
//
//	rotator := carousel.New([]string{"a.jpg", "b.jpg", "c.jpg"}).
//	    Interval(4500 * time.Millisecond).
//	    FadeDelay(200 * time.Millisecond).
//	    Presenter(presenter)
//
//	if err := rotator.Start(ctx); err != nil {
//	    return err
//	}
//	defer rotator.Stop(ctx)
func New[T any](slides []T) *Rotator[T] {
	r := &Rotator[T]{
		interval:  DefaultInterval,
		fadeDelay: DefaultFadeDelay,
		clock:     clockz.RealClock,
		presenter: nopPresenter[T]{},
		slides:    append([]T(nil), slides...),
		shown:     -1,
	}
	if len(r.slides) == 0 {
		r.state.Store(int32(StateInert))
	} else {
		r.state.Store(int32(StateReady))
	}
	return r
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Interval sets the delay between automatic advances.
// Default: 4500ms. Non-positive durations are ignored. Must be called before
// Start(); use Configure to change it while running.
func (r *Rotator[T]) Interval(d time.Duration) *Rotator[T] {
	if d > 0 {
		r.interval = d
	}
	return r
}

// FadeDelay sets the presentation delay between deactivating the outgoing
// slide and activating the incoming one. Zero activates immediately.
// Default: 200ms. Negative durations are ignored. Must be called before Start().
func (r *Rotator[T]) FadeDelay(d time.Duration) *Rotator[T] {
	if d >= 0 {
		r.fadeDelay = d
	}
	return r
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic rotation testing.
// Must be called before Start().
func (r *Rotator[T]) Clock(clock clockz.Clock) *Rotator[T] {
	r.clock = clock
	return r
}

// Presenter sets the presenter that applies transitions.
// Must be called before Start().
func (r *Rotator[T]) Presenter(p Presenter[T]) *Rotator[T] {
	r.presenter = p
	return r
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Start().
func (r *Rotator[T]) Metrics(provider MetricsProvider) *Rotator[T] {
	r.metrics = provider
	return r
}

// OnStop sets a callback invoked each time rotation actually stops, either
// through Stop or through cancellation of the context passed to Start.
// The callback receives the state after stopping. Must be called before Start().
func (r *Rotator[T]) OnStop(fn func(State)) *Rotator[T] {
	r.onStop = fn
	return r
}

// RejectionHistorySize sets the number of preload rejections to retain.
// Use 0 (default) to keep none. Must be called before Load().
func (r *Rotator[T]) RejectionHistorySize(n int) *Rotator[T] {
	r.rejections = newRing[Rejection[T]](n)
	return r
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// State returns the current state of the Rotator.
func (r *Rotator[T]) State() State {
	return State(r.state.Load())
}

// Active reports whether the Rotator has resolved to a usable, non-empty
// slide sequence. It is false while loading and for inert rotators.
func (r *Rotator[T]) Active() bool {
	s := r.State()
	return s == StateReady || s == StateRunning
}

// Index returns the logical active index.
func (r *Rotator[T]) Index() int {
	return int(r.index.Load())
}

// Len returns the number of slides in the effective sequence.
func (r *Rotator[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.slides)
}

// Slides returns a copy of the effective slide sequence.
func (r *Rotator[T]) Slides() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.slides...)
}

// Current returns the active slide and true, or the zero value and false
// when the Rotator has no slides.
func (r *Rotator[T]) Current() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.slides) == 0 {
		var zero T
		return zero, false
	}
	return r.slides[r.index.Load()], true
}

// Shown returns the index of the slide the presenter last activated, or -1
// while no slide is visible (before the first presentation or during a
// fade window).
func (r *Rotator[T]) Shown() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.shown
}

// Timers returns the number of live rotation timer handles: 1 while
// running, otherwise 0.
func (r *Rotator[T]) Timers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tick != nil {
		return 1
	}
	return 0
}

// LastError returns the last presenter error, or nil if none occurred.
func (r *Rotator[T]) LastError() error {
	ptr := r.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// Rejections returns the retained preload rejections, oldest first.
// Returns nil if rejection history is not enabled (see RejectionHistorySize).
func (r *Rotator[T]) Rejections() []Rejection[T] {
	return r.rejections.all()
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start presents slide 0 and arms the rotation timer. Inert rotators ignore
// Start. Calling Start while running cancels the live timer and restarts
// from slide 0, so there is never more than one timer.
//
// Cancelling ctx stops the rotation as if Stop had been called.
func (r *Rotator[T]) Start(ctx context.Context) error {
	r.mu.Lock()
	switch r.State() {
	case StateInert:
		r.mu.Unlock()
		return nil
	case StateLoading:
		r.mu.Unlock()
		return ErrLoading
	}

	if r.tick != nil {
		r.tick.cancel()
		r.tick = nil
	}
	r.runCtx = ctx
	r.present(ctx, 0, CauseStart)
	r.armTick(ctx)
	r.setState(ctx, StateRunning)
	interval, fadeDelay, count := r.interval, r.fadeDelay, len(r.slides)
	r.mu.Unlock()

	capitan.Emit(ctx, RotatorStarted,
		KeyInterval.Field(interval),
		KeyFadeDelay.Field(fadeDelay),
		KeyCount.Field(count),
	)
	return nil
}

// Stop cancels the rotation timer. A pending fade completes immediately so
// exactly one slide stays visible. Stop is idempotent.
func (r *Rotator[T]) Stop(ctx context.Context) {
	r.mu.Lock()
	stopped := r.halt(ctx)
	r.mu.Unlock()

	if stopped {
		r.stopped(ctx)
	}
}

// Configure applies new timing settings. When running, the rotation timer is
// re-armed at the new interval.
func (r *Rotator[T]) Configure(ctx context.Context, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.interval = s.Interval()
	r.fadeDelay = s.FadeDelay()
	r.resetTick(ctx)
	return nil
}

// halt cancels the rotation and reports whether the Rotator was running.
// Caller must hold r.mu.
func (r *Rotator[T]) halt(ctx context.Context) bool {
	if r.tick == nil && r.State() != StateRunning {
		// Navigation before Start can leave a fade pending.
		r.flushFade(ctx)
		return false
	}
	if r.tick != nil {
		r.tick.cancel()
		r.tick = nil
	}
	r.flushFade(ctx)
	r.runCtx = nil
	r.setState(ctx, StateReady)
	return true
}

// stopped emits the stop signal and runs the OnStop callback.
func (r *Rotator[T]) stopped(ctx context.Context) {
	finalState := r.State()
	capitan.Emit(ctx, RotatorStopped,
		KeyState.Field(finalState.String()),
		KeyIndex.Field(r.Index()),
	)
	if r.onStop != nil {
		r.onStop(finalState)
	}
}

// -----------------------------------------------------------------------------
// Navigation
// -----------------------------------------------------------------------------

// Next advances to the following slide, wrapping at the end, and resets the
// rotation timer so the next automatic advance is a full interval away.
// With a single slide the index is unchanged but the timer is still reset.
func (r *Rotator[T]) Next(ctx context.Context) {
	r.step(ctx, 1, CauseNext)
}

// Previous steps back to the preceding slide, wrapping at the start, and
// resets the rotation timer.
func (r *Rotator[T]) Previous(ctx context.Context) {
	r.step(ctx, -1, CausePrevious)
}

// GoTo jumps to index and resets the rotation timer. An index outside
// [0, Len()) returns an error wrapping ErrOutOfRange and changes nothing.
// Inert and loading rotators ignore GoTo.
func (r *Rotator[T]) GoTo(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.navigable() {
		return nil
	}
	if n := len(r.slides); index < 0 || index >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, n)
	}
	if index != r.target() {
		r.present(ctx, index, CauseGoTo)
	}
	r.resetTick(ctx)
	return nil
}

func (r *Rotator[T]) step(ctx context.Context, delta int, cause Cause) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.navigable() {
		return
	}
	if n := len(r.slides); n > 1 {
		r.present(ctx, (r.Index()+delta+n)%n, cause)
	}
	r.resetTick(ctx)
}

// navigable reports whether navigation has any effect. Caller must hold r.mu.
func (r *Rotator[T]) navigable() bool {
	s := r.State()
	return (s == StateReady || s == StateRunning) && len(r.slides) > 0
}

// -----------------------------------------------------------------------------
// Timers
// -----------------------------------------------------------------------------

// armTick replaces the rotation timer with a fresh one a full interval out.
// Caller must hold r.mu.
func (r *Rotator[T]) armTick(ctx context.Context) {
	if r.tick != nil {
		r.tick.cancel()
	}
	s := newSchedule(r.clock, r.interval)
	r.tick = s

	go func() {
		select {
		case <-s.timer.C():
			r.mu.Lock()
			defer r.mu.Unlock()
			if r.tick != s {
				return
			}
			r.tick = nil
			if n := len(r.slides); n > 1 {
				r.present(ctx, (r.Index()+1)%n, CauseTick)
			}
			r.armTick(ctx)

		case <-s.done:

		case <-ctx.Done():
			ctx = context.WithoutCancel(ctx)
			r.mu.Lock()
			stopped := r.tick == s && r.halt(ctx)
			r.mu.Unlock()
			if stopped {
				r.stopped(ctx)
			}
		}
	}()
}

// resetTick re-arms a live rotation timer. Caller must hold r.mu.
func (r *Rotator[T]) resetTick(ctx context.Context) {
	if r.tick == nil {
		return
	}
	r.armTick(r.runCtx)
	capitan.Emit(ctx, TimerReset,
		KeyInterval.Field(r.interval),
	)
	if r.metrics != nil {
		r.metrics.OnTimerReset()
	}
}

// lifetime returns the context that bounds background presentation work.
// Caller must hold r.mu.
func (r *Rotator[T]) lifetime(ctx context.Context) context.Context {
	if r.runCtx != nil {
		return r.runCtx
	}
	return ctx
}

// -----------------------------------------------------------------------------
// State
// -----------------------------------------------------------------------------

// setState updates the state and emits a state change event if changed.
func (r *Rotator[T]) setState(ctx context.Context, newState State) {
	oldState := r.State()
	if oldState == newState {
		return
	}
	r.state.Store(int32(newState))
	capitan.Emit(ctx, RotatorStateChanged,
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	if r.metrics != nil {
		r.metrics.OnStateChange(oldState, newState)
	}
}

// setError stores a presenter error atomically.
func (r *Rotator[T]) setError(err error) {
	e := err
	r.lastError.Store(&e)
}
