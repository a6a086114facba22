package overlay

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/zoobzio/capitan"
)

// Opener opens a URL outside the page, such as in a new window.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(ctx context.Context, url string) error

// Open calls f(ctx, url).
func (f OpenerFunc) Open(ctx context.Context, url string) error {
	return f(ctx, url)
}

// Link is a floating contact button that opens a fixed URL when clicked.
type Link struct {
	url    string
	button Container
	opener Opener

	mu  sync.Mutex
	err error
}

// NewLink creates a Link that opens url through opener when button is clicked.
func NewLink(url string, button Container, opener Opener) *Link {
	return &Link{url: url, button: button, opener: opener}
}

// WhatsApp returns the click-to-chat URL for a phone number. Everything but
// digits is stripped.
func WhatsApp(number string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	return "https://wa.me/" + digits
}

// URL returns the link target.
func (l *Link) URL() string { return l.url }

// Err returns the error from the last open attempt.
func (l *Link) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// HandleClick implements ClickHandler.
func (l *Link) HandleClick(ctx context.Context, target Target) {
	if l.button == nil || !l.button.Contains(target) {
		return
	}
	err := l.opener.Open(ctx, l.url)
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
	if err == nil {
		capitan.Emit(ctx, LinkOpened, KeyURL.Field(l.url))
	}
}
