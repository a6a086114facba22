package carousel

import (
	"context"
	"fmt"
	"time"

	"github.com/zoobzio/capitan"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadConcurrency bounds how many candidates are validated at once.
const DefaultLoadConcurrency = 4

// Loader validates a single candidate slide, typically by fetching and
// decoding the image it points at. A non-nil error drops the candidate.
type Loader[T any] interface {
	Load(ctx context.Context, slide T) error
}

// LoaderFunc adapts an ordinary function to the Loader interface.
type LoaderFunc[T any] func(ctx context.Context, slide T) error

// Load calls f(ctx, slide).
func (f LoaderFunc[T]) Load(ctx context.Context, slide T) error {
	return f(ctx, slide)
}

// Rejection records a candidate dropped during preload.
type Rejection[T any] struct {
	Index int // Position in the candidate sequence
	Slide T
	Err   error
}

// loadConfig holds configuration options for a preload pass.
type loadConfig struct {
	concurrency int
	timeout     time.Duration
}

// LoadOption configures a preload pass.
type LoadOption func(*loadConfig)

// WithConcurrency bounds how many candidates are validated in parallel.
// Values below 1 are ignored.
func WithConcurrency(n int) LoadOption {
	return func(c *loadConfig) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLoadTimeout bounds each individual Loader call. A candidate whose
// loader exceeds the timeout is rejected.
func WithLoadTimeout(d time.Duration) LoadOption {
	return func(c *loadConfig) {
		c.timeout = d
	}
}

// Load validates every candidate slide with loader and keeps only the ones
// that succeed, preserving their relative order. The Rotator reports
// StateLoading until Load returns, then StateReady, or StateInert when no
// candidate survived. Failed candidates are not returned as errors; they are
// emitted as SlideRejected signals and retained in Rejections().
//
// Load returns ErrRunning while rotating and ErrLoading while another Load is
// in flight. If ctx is cancelled the previous sequence is kept and the
// context error is returned.
func (r *Rotator[T]) Load(ctx context.Context, loader Loader[T], opts ...LoadOption) error {
	cfg := &loadConfig{concurrency: DefaultLoadConcurrency}
	for _, opt := range opts {
		opt(cfg)
	}

	r.mu.Lock()
	prevState := r.State()
	switch prevState {
	case StateRunning:
		r.mu.Unlock()
		return ErrRunning
	case StateLoading:
		r.mu.Unlock()
		return ErrLoading
	}
	r.flushFade(ctx)
	candidates := r.slides
	r.setState(ctx, StateLoading)
	r.mu.Unlock()

	failures, err := r.preload(ctx, candidates, loader, cfg)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.setState(ctx, prevState)
		return fmt.Errorf("preload aborted: %w", err)
	}

	kept := make([]T, 0, len(candidates))
	rejected := 0
	for i, slide := range candidates {
		if failures[i] == nil {
			kept = append(kept, slide)
			continue
		}
		rejected++
		r.rejections.push(Rejection[T]{Index: i, Slide: slide, Err: failures[i]})
		capitan.Emit(ctx, SlideRejected,
			KeyIndex.Field(i),
			KeyError.Field(failures[i].Error()),
		)
		if r.metrics != nil {
			r.metrics.OnSlideRejected(i, failures[i])
		}
	}

	if r.shown >= 0 {
		r.deactivate(ctx, r.shown)
		r.shown = -1
	}
	r.slides = kept
	r.index.Store(0)

	if len(kept) == 0 {
		r.setState(ctx, StateInert)
	} else {
		r.setState(ctx, StateReady)
	}

	capitan.Emit(ctx, LoadCompleted,
		KeyCount.Field(len(kept)),
		KeyRejected.Field(rejected),
	)
	return nil
}

// preload runs loader over candidates and returns one error slot per
// candidate. The returned error is non-nil only when ctx was cancelled.
func (r *Rotator[T]) preload(ctx context.Context, candidates []T, loader Loader[T], cfg *loadConfig) ([]error, error) {
	failures := make([]error, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.concurrency)
	for i, slide := range candidates {
		g.Go(func() error {
			lctx := gctx
			if cfg.timeout > 0 {
				var cancel context.CancelFunc
				lctx, cancel = r.clock.WithTimeout(gctx, cfg.timeout)
				defer cancel()
			}
			failures[i] = loader.Load(lctx, slide)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // Loader errors are collected per slot

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return failures, nil
}
