package carousel

import (
	"context"

	"github.com/zoobzio/capitan"
)

// present makes index the logical active slide and applies the transition:
// the shown slide is deactivated now, the new one is activated after the
// fade delay. The first presentation is immediate. Caller must hold r.mu.
func (r *Rotator[T]) present(ctx context.Context, index int, cause Cause) {
	from := r.Index()
	r.index.Store(int64(index))

	immediate := r.fadeDelay <= 0 || (r.shown < 0 && r.fade == nil)
	if r.fade != nil {
		r.fade.cancel()
		r.fade = nil
	}

	if r.shown != index {
		if r.shown >= 0 {
			r.deactivate(ctx, r.shown)
			r.shown = -1
		}
		r.pending = index
		if immediate {
			r.activate(ctx, index)
		} else {
			r.armFade(r.lifetime(ctx))
		}
	}

	capitan.Emit(ctx, SlideAdvanced,
		KeyFrom.Field(from),
		KeyTo.Field(index),
		KeyCause.Field(string(cause)),
	)
	if r.metrics != nil {
		r.metrics.OnAdvance(from, index, cause)
	}
}

// armFade schedules activation of r.pending after the fade delay.
// Cancelling ctx completes the fade early. Caller must hold r.mu.
func (r *Rotator[T]) armFade(ctx context.Context) {
	s := newSchedule(r.clock, r.fadeDelay)
	r.fade = s

	go func() {
		select {
		case <-s.timer.C():
		case <-s.done:
			return
		case <-ctx.Done():
			ctx = context.WithoutCancel(ctx)
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.fade != s {
			return
		}
		r.fade = nil
		r.activate(ctx, r.pending)
	}()
}

// flushFade completes a pending fade immediately. Caller must hold r.mu.
func (r *Rotator[T]) flushFade(ctx context.Context) {
	if r.fade == nil {
		return
	}
	r.fade.cancel()
	r.fade = nil
	r.activate(ctx, r.pending)
}

// target returns the slide that is shown, or will be once the pending fade
// completes. -1 when nothing has been presented. Caller must hold r.mu.
func (r *Rotator[T]) target() int {
	if r.fade != nil {
		return r.pending
	}
	return r.shown
}

func (r *Rotator[T]) activate(ctx context.Context, index int) {
	r.shown = index
	if err := r.presenter.Activate(ctx, index, r.slides[index]); err != nil {
		r.transitionFailed(ctx, "activate", index, err)
	}
}

func (r *Rotator[T]) deactivate(ctx context.Context, index int) {
	if err := r.presenter.Deactivate(ctx, index, r.slides[index]); err != nil {
		r.transitionFailed(ctx, "deactivate", index, err)
	}
}

func (r *Rotator[T]) transitionFailed(ctx context.Context, phase string, index int, err error) {
	r.setError(err)
	capitan.Emit(ctx, TransitionFailed,
		KeyPhase.Field(phase),
		KeyIndex.Field(index),
		KeyError.Field(err.Error()),
	)
	if r.metrics != nil {
		r.metrics.OnTransitionFailure(phase, err)
	}
}
