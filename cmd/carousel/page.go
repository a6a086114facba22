package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zoobzio/carousel"
	"github.com/zoobzio/carousel/pkg/image"
	"github.com/zoobzio/carousel/pkg/markup"
	"go.uber.org/zap"
)

// maxPageBytes bounds how much of a remote page is read.
const maxPageBytes = 8 << 20

// page is a landing page loaded from disk or over HTTP.
type page struct {
	// location is an absolute URL for the page, file:// for local files.
	location *url.URL
	body     []byte
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// loadPage reads ref, which is either an http(s) URL or a file path.
func loadPage(ctx context.Context, ref string) (*page, error) {
	if isRemote(ref) {
		return fetchPage(ctx, ref)
	}

	abs, err := filepath.Abs(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ref, err)
	}
	body, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	return &page{
		location: &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)},
		body:     body,
	}, nil
}

func fetchPage(ctx context.Context, ref string) (*page, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("parse page URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch page: %s returned %d", u, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}
	return &page{location: u, body: body}, nil
}

// slides extracts the hero slides from the page.
func (p *page) slides() ([]markup.Slide, error) {
	return markup.Slides(strings.NewReader(string(p.body)), slideClass)
}

// imageBase returns the URL relative slide sources resolve against: the
// override when given, the page itself when it was fetched over HTTP,
// otherwise nil.
func (p *page) imageBase(override string) (*url.URL, error) {
	if override != "" {
		u, err := url.Parse(override)
		if err != nil {
			return nil, fmt.Errorf("parse --base: %w", err)
		}
		return u, nil
	}
	if p.location.Scheme == "http" || p.location.Scheme == "https" {
		return p.location, nil
	}
	return nil, nil
}

// slideLoader validates slide images. Slides without a source are content
// already in the page and always survive.
func slideLoader(l *image.Loader) carousel.Loader[markup.Slide] {
	return carousel.LoaderFunc[markup.Slide](func(ctx context.Context, s markup.Slide) error {
		if s.Source == "" {
			return nil
		}
		err := l.Load(ctx, s.Source)
		if err != nil {
			logger.Debug("slide image rejected",
				zap.Int("index", s.Index),
				zap.String("source", s.Source),
				zap.Error(err),
			)
		}
		return err
	})
}
