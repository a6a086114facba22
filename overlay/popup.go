package overlay

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/carousel"
	"github.com/zoobzio/clockz"
)

// Popup is the email-capture dialog. Arm schedules a single automatic show
// after the delay; a click outside the popup while it is shown hides it.
type Popup struct {
	box      Container
	delay    time.Duration
	clock    clockz.Clock
	onChange func(visible bool)

	mu      sync.Mutex
	visible bool
	timer   clockz.Timer
	done    chan struct{}
}

// NewPopup creates a hidden Popup for the dialog element box.
func NewPopup(box Container) *Popup {
	return &Popup{
		box:   box,
		delay: carousel.DefaultPopupDelay,
		clock: clockz.RealClock,
	}
}

// Delay sets how long Arm waits before showing the popup.
// Default: 4000ms. Negative durations are ignored.
func (p *Popup) Delay(d time.Duration) *Popup {
	if d >= 0 {
		p.delay = d
	}
	return p
}

// Clock sets a custom clock for the show timer.
func (p *Popup) Clock(clock clockz.Clock) *Popup {
	p.clock = clock
	return p
}

// OnChange sets a callback invoked with the new visibility after every change.
func (p *Popup) OnChange(fn func(visible bool)) *Popup {
	p.onChange = fn
	return p
}

// Visible reports whether the popup is shown.
func (p *Popup) Visible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

// Armed reports whether an automatic show is pending.
func (p *Popup) Armed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.timer != nil
}

// Arm schedules the popup to show after the delay. Arming again replaces
// the pending show. Cancelling ctx disarms it.
func (p *Popup) Arm(ctx context.Context) {
	p.mu.Lock()
	p.disarmLocked()
	timer := p.clock.NewTimer(p.delay)
	done := make(chan struct{})
	p.timer, p.done = timer, done
	p.mu.Unlock()

	capitan.Emit(ctx, PopupArmed, KeyDelay.Field(p.delay))

	go func() {
		select {
		case <-timer.C():
			p.mu.Lock()
			if p.timer != timer {
				p.mu.Unlock()
				return
			}
			p.timer, p.done = nil, nil
			p.mu.Unlock()
			p.Show(ctx)
		case <-done:
		case <-ctx.Done():
			p.mu.Lock()
			if p.timer == timer {
				p.disarmLocked()
			}
			p.mu.Unlock()
		}
	}()
}

// Disarm cancels a pending automatic show.
func (p *Popup) Disarm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disarmLocked()
}

func (p *Popup) disarmLocked() {
	if p.timer == nil {
		return
	}
	p.timer.Stop()
	close(p.done)
	p.timer, p.done = nil, nil
}

// Show displays the popup.
func (p *Popup) Show(ctx context.Context) { p.set(ctx, true) }

// Hide dismisses the popup.
func (p *Popup) Hide(ctx context.Context) { p.set(ctx, false) }

// HandleClick implements ClickHandler.
func (p *Popup) HandleClick(ctx context.Context, target Target) {
	if p.Visible() && (p.box == nil || !p.box.Contains(target)) {
		p.Hide(ctx)
	}
}

func (p *Popup) set(ctx context.Context, visible bool) {
	p.mu.Lock()
	if p.visible == visible {
		p.mu.Unlock()
		return
	}
	p.visible = visible
	p.mu.Unlock()

	if visible {
		capitan.Emit(ctx, PopupShown)
	} else {
		capitan.Emit(ctx, PopupHidden)
	}
	if p.onChange != nil {
		p.onChange(visible)
	}
}
