// Package image validates slide image sources over HTTP.
//
// A source survives preload only if it resolves to a URL that answers with a
// 2xx status and whose body decodes as an image header a browser can render
// (JPEG, PNG, GIF or WebP).
package image

import (
	"context"
	"errors"
	"fmt"
	stdimage "image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zoobzio/carousel"
	_ "golang.org/x/image/webp" // register decoder
)

// DefaultMaxBytes bounds how much of a response body is read while
// decoding the image header.
const DefaultMaxBytes = 1 << 20

// DefaultTimeout bounds each request made by the default client.
const DefaultTimeout = 10 * time.Second

var (
	// ErrNoSource is returned for an empty source.
	ErrNoSource = errors.New("image: empty source")

	// ErrStatus is returned when the server answers with a non-2xx status.
	ErrStatus = errors.New("image: unexpected status")

	// ErrUndecodable is returned when the body is not a supported image.
	ErrUndecodable = errors.New("image: undecodable")
)

// Info describes a successfully decoded image.
type Info struct {
	URL    string
	Format string
	Width  int
	Height int
}

// Loader fetches and decodes slide sources. It implements
// carousel.Loader[string].
type Loader struct {
	client   *http.Client
	base     *url.URL
	maxBytes int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithClient sets the HTTP client. Default: a client with DefaultTimeout.
func WithClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithBase resolves relative sources against base, normally the URL of the
// page the slides were found on.
func WithBase(base *url.URL) Option {
	return func(l *Loader) {
		l.base = base
	}
}

// WithMaxBytes bounds how much of each body is read. Values below 1 are ignored.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxBytes = n
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ carousel.Loader[string] = (*Loader)(nil)

// Load reports whether src is a renderable image.
func (l *Loader) Load(ctx context.Context, src string) error {
	_, err := l.Probe(ctx, src)
	return err
}

// Probe fetches src and decodes its image header.
func (l *Loader) Probe(ctx context.Context, src string) (Info, error) {
	target, err := l.Resolve(src)
	if err != nil {
		return Info{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Info{}, fmt.Errorf("build request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "image/webp,image/png,image/jpeg,image/gif,*/*;q=0.8")

	resp, err := l.client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Info{}, fmt.Errorf("%w: %s returned %d", ErrStatus, target, resp.StatusCode)
	}

	cfg, format, err := stdimage.DecodeConfig(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return Info{}, fmt.Errorf("%w: %s: %v", ErrUndecodable, target, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return Info{}, fmt.Errorf("%w: %s has zero size", ErrUndecodable, target)
	}

	return Info{URL: target, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

// Resolve turns src into an absolute http(s) URL.
func (l *Loader) Resolve(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", ErrNoSource
	}

	u, err := url.Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse source %q: %w", src, err)
	}
	if l.base != nil {
		u = l.base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported source %q: need an http(s) URL or a base", src)
	}
	return u.String(), nil
}
