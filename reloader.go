package carousel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultDebounce is the default debounce duration for settings changes.
const DefaultDebounce = 100 * time.Millisecond

// Watcher observes a source for changes and emits raw bytes on a channel.
// Implementations must emit the current value immediately upon Watch() being
// called to support initial settings loading.
type Watcher interface {
	// Watch begins observing the source and returns a channel that emits
	// raw bytes when changes occur. The channel is closed when the context
	// is canceled or an unrecoverable error occurs.
	Watch(ctx context.Context) (<-chan []byte, error)
}

// Health describes whether a Reloader holds usable settings.
type Health int32

const (
	// HealthEmpty means no valid settings have ever been applied.
	HealthEmpty Health = iota
	// HealthHealthy means the last change was applied.
	HealthHealthy
	// HealthDegraded means the last change failed and the previous
	// settings are still in effect.
	HealthDegraded
)

// String returns the string representation of the health.
func (h Health) String() string {
	switch h {
	case HealthEmpty:
		return "empty"
	case HealthHealthy:
		return "healthy"
	case HealthDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Reloader watches a source for settings changes, decodes and validates them,
// and hands them to an apply function. A change that fails any step is
// dropped and the last valid settings stay in effect.
type Reloader struct {
	watcher  Watcher
	apply    func(ctx context.Context, prev, curr Settings) error
	debounce time.Duration
	syncMode bool
	clock    clockz.Clock
	codec    Codec
	base     Settings
	onStop   func(Health)

	health       atomic.Int32
	current      atomic.Pointer[Settings]
	lastError    atomic.Pointer[error]
	errorHistory *ring[error]

	mu      sync.Mutex
	started bool

	// For sync mode: channel to receive changes
	changes <-chan []byte
}

// NewReloader creates a Reloader that feeds settings from watcher to apply.
// apply receives the previously applied settings (the base for the first
// change) and the new ones.
//
// Example:
//
//	reloader := carousel.NewReloader(
//	    file.New("carousel.yaml"),
//	    func(ctx context.Context, _, curr carousel.Settings) error {
//	        return rotator.Configure(ctx, curr)
//	    },
//	).Debounce(200 * time.Millisecond)
func NewReloader(watcher Watcher, apply func(ctx context.Context, prev, curr Settings) error) *Reloader {
	return &Reloader{
		watcher:  watcher,
		apply:    apply,
		debounce: DefaultDebounce,
		clock:    clockz.RealClock,
		codec:    YAMLCodec{},
		base:     DefaultSettings(),
	}
}

// Base sets the settings each change is decoded over, so a source only names
// the fields it overrides. Default: DefaultSettings(). Must be called before Start().
func (r *Reloader) Base(s Settings) *Reloader {
	r.base = s
	return r
}

// Debounce sets the debounce duration for change processing.
// Changes arriving within this duration are coalesced into a single update.
// Default: 100ms. Must be called before Start().
func (r *Reloader) Debounce(d time.Duration) *Reloader {
	r.debounce = d
	return r
}

// SyncMode disables the background watch loop. Start processes only the
// initial value; call Process for each subsequent one. Must be called before Start().
func (r *Reloader) SyncMode() *Reloader {
	r.syncMode = true
	return r
}

// Clock sets a custom clock for the debounce timer.
// Must be called before Start().
func (r *Reloader) Clock(clock clockz.Clock) *Reloader {
	r.clock = clock
	return r
}

// Codec sets the codec for decoding settings.
// Default: YAMLCodec, which also accepts JSON. Must be called before Start().
func (r *Reloader) Codec(codec Codec) *Reloader {
	r.codec = codec
	return r
}

// OnStop sets a callback invoked when the watch loop exits, with the final
// health. Must be called before Start().
func (r *Reloader) OnStop(fn func(Health)) *Reloader {
	r.onStop = fn
	return r
}

// ErrorHistorySize sets the number of recent errors to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Start().
func (r *Reloader) ErrorHistorySize(n int) *Reloader {
	r.errorHistory = newRing[error](n)
	return r
}

// Health returns the current health of the Reloader.
func (r *Reloader) Health() Health {
	return Health(r.health.Load())
}

// Current returns the last applied settings and true, or the zero value and
// false if nothing valid has been applied.
func (r *Reloader) Current() (Settings, bool) {
	ptr := r.current.Load()
	if ptr == nil {
		return Settings{}, false
	}
	return *ptr, true
}

// LastError returns the error from the most recent failed change, or nil
// after a successful one.
func (r *Reloader) LastError() error {
	ptr := r.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the recent error history, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (r *Reloader) ErrorHistory() []error {
	return r.errorHistory.all()
}

// Start begins watching. It blocks until the first value is processed and
// returns that value's error, if any, while continuing to watch in the
// background. Start can only be called once.
func (r *Reloader) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New("reloader already started")
	}
	r.started = true
	r.mu.Unlock()

	changes, err := r.watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	var initialErr error
	select {
	case <-ctx.Done():
		return ctx.Err()
	case raw, ok := <-changes:
		if !ok {
			return errors.New("watcher closed before emitting initial value")
		}
		r.received(ctx)
		initialErr = r.process(ctx, raw)
	}

	if r.syncMode {
		r.changes = changes
		return initialErr
	}

	go r.watch(ctx, changes)

	return initialErr
}

// Process reads and processes the next pending value in sync mode.
// Returns false if no value is available or the channel is closed.
func (r *Reloader) Process(ctx context.Context) bool {
	if !r.syncMode {
		return false
	}

	select {
	case raw, ok := <-r.changes:
		if !ok {
			return false
		}
		r.received(ctx)
		_ = r.process(ctx, raw) //nolint:errcheck // Errors stored via setError
		return true
	default:
		return false
	}
}

func (r *Reloader) received(ctx context.Context) {
	capitan.Emit(ctx, SettingsReceived,
		KeyContentType.Field(r.codec.ContentType()),
	)
}

// process decodes, validates, and applies a single change.
func (r *Reloader) process(ctx context.Context, raw []byte) error {
	curr, err := DecodeSettings(r.codec, r.base, raw)
	if err != nil {
		return r.reject(ctx, "decode", err)
	}

	prev, ok := r.Current()
	if !ok {
		prev = r.base
	}
	if err := r.apply(ctx, prev, curr); err != nil {
		return r.reject(ctx, "apply", err)
	}

	r.current.Store(&curr)
	r.lastError.Store(nil)
	r.health.Store(int32(HealthHealthy))
	capitan.Emit(ctx, SettingsApplied,
		KeyInterval.Field(curr.Interval()),
		KeyFadeDelay.Field(curr.FadeDelay()),
	)
	return nil
}

func (r *Reloader) reject(ctx context.Context, phase string, err error) error {
	e := err
	r.lastError.Store(&e)
	r.errorHistory.push(err)
	if r.current.Load() != nil {
		r.health.Store(int32(HealthDegraded))
	}
	capitan.Emit(ctx, SettingsRejected,
		KeyPhase.Field(phase),
		KeyError.Field(err.Error()),
	)
	return fmt.Errorf("%s failed: %w", phase, err)
}

// watch processes changes from the watcher channel with debouncing.
func (r *Reloader) watch(ctx context.Context, changes <-chan []byte) {
	defer func() {
		if r.onStop != nil {
			r.onStop(r.Health())
		}
	}()

	var (
		timer      clockz.Timer
		pending    []byte
		hasPending bool
	)

	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case raw, ok := <-changes:
			if !ok {
				if timer != nil {
					timer.Stop()
				}
				if hasPending {
					_ = r.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				}
				return
			}

			r.received(ctx)
			pending = raw
			hasPending = true

			if timer == nil {
				timer = r.clock.NewTimer(r.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C():
					default:
					}
				}
				timer.Reset(r.debounce)
			}

		case <-timerC:
			if hasPending {
				_ = r.process(ctx, pending) //nolint:errcheck // Errors stored via setError
				hasPending = false
			}
		}
	}
}
