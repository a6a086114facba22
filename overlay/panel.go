package overlay

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
)

// Panel is the mobile navigation menu. Clicking the toggle control flips it;
// clicking outside the panel while it is open closes it.
type Panel struct {
	panel    Container
	toggle   Container
	onChange func(open bool)

	mu   sync.Mutex
	open bool
}

// NewPanel creates a closed Panel. panel is the menu element, toggle the
// control that opens and closes it.
func NewPanel(panel, toggle Container) *Panel {
	return &Panel{panel: panel, toggle: toggle}
}

// OnChange sets a callback invoked with the new state after every change.
func (p *Panel) OnChange(fn func(open bool)) *Panel {
	p.onChange = fn
	return p
}

// IsOpen reports whether the panel is open.
func (p *Panel) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Open opens the panel.
func (p *Panel) Open(ctx context.Context) {
	p.update(ctx, func(bool) bool { return true })
}

// Close closes the panel.
func (p *Panel) Close(ctx context.Context) {
	p.update(ctx, func(bool) bool { return false })
}

// Toggle flips the panel.
func (p *Panel) Toggle(ctx context.Context) {
	p.update(ctx, func(open bool) bool { return !open })
}

// HandleClick implements ClickHandler.
func (p *Panel) HandleClick(ctx context.Context, target Target) {
	if p.toggle != nil && p.toggle.Contains(target) {
		p.Toggle(ctx)
		return
	}
	if p.IsOpen() && (p.panel == nil || !p.panel.Contains(target)) {
		p.Close(ctx)
	}
}

// update applies next to the current state and notifies on change.
func (p *Panel) update(ctx context.Context, next func(open bool) bool) {
	p.mu.Lock()
	open := next(p.open)
	if open == p.open {
		p.mu.Unlock()
		return
	}
	p.open = open
	p.mu.Unlock()

	if open {
		capitan.Emit(ctx, PanelOpened)
	} else {
		capitan.Emit(ctx, PanelClosed)
	}
	if p.onChange != nil {
		p.onChange(open)
	}
}
