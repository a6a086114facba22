// Package overlay implements the page behaviors that sit around the hero
// slider: the mobile navigation panel, the delayed email-capture popup and
// the contact link. None of them touch rotator state.
//
// Click-outside dismissal is expressed through the Container capability.
// A Document fans every click out to the registered handlers, standing in
// for a document-level listener.
package overlay

import (
	"context"
	"sync"
)

// Target is an opaque click target, such as a DOM node handle.
type Target any

// Container reports whether an element contains a click target.
type Container interface {
	Contains(target Target) bool
}

// ContainerFunc adapts a function to the Container interface.
type ContainerFunc func(target Target) bool

// Contains calls f(target).
func (f ContainerFunc) Contains(target Target) bool {
	return f(target)
}

// Is returns a Container that contains exactly the given targets.
func Is(targets ...Target) Container {
	return ContainerFunc(func(t Target) bool {
		for _, c := range targets {
			if c == t {
				return true
			}
		}
		return false
	})
}

// ClickHandler reacts to a click anywhere in the document.
type ClickHandler interface {
	HandleClick(ctx context.Context, target Target)
}

// ClickHandlerFunc adapts a function to the ClickHandler interface.
type ClickHandlerFunc func(ctx context.Context, target Target)

// HandleClick calls f(ctx, target).
func (f ClickHandlerFunc) HandleClick(ctx context.Context, target Target) {
	f(ctx, target)
}

// Document dispatches clicks to every registered handler in registration
// order.
type Document struct {
	mu       sync.RWMutex
	handlers []ClickHandler
}

// Listen registers h for every subsequent click.
func (d *Document) Listen(h ClickHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, h)
}

// Click delivers a click on target to all handlers.
func (d *Document) Click(ctx context.Context, target Target) {
	d.mu.RLock()
	handlers := append([]ClickHandler(nil), d.handlers...)
	d.mu.RUnlock()

	for _, h := range handlers {
		h.HandleClick(ctx, target)
	}
}
