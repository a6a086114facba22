// Package browser presents hero slides on a live page over the Chrome
// DevTools protocol, using go-rod.
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/zoobzio/carousel"
	"github.com/zoobzio/carousel/pkg/markup"
)

// ErrMissingSlide is returned when the page has no element at a slide's
// document position.
var ErrMissingSlide = errors.New("browser: slide element not found")

// Evaluator runs a JavaScript function in the page and returns its result
// as a string.
type Evaluator interface {
	Eval(ctx context.Context, js string, args ...any) (string, error)
}

// pageEvaluator evaluates against a rod page.
type pageEvaluator struct {
	page *rod.Page
}

func (e pageEvaluator) Eval(ctx context.Context, js string, args ...any) (string, error) {
	res, err := e.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

const styleJS = `(cls, i, opacity, transform) => {
	const el = document.getElementsByClassName(cls)[i];
	if (!el) return "missing";
	el.style.opacity = opacity;
	el.style.transform = transform;
	return "ok";
}`

const outerHTMLJS = `() => document.documentElement.outerHTML`

// Presenter applies slide transitions to page elements carrying the slide
// class. It implements carousel.Presenter[markup.Slide] and addresses each
// slide by its original document position, so it stays correct after
// preload has dropped some slides.
type Presenter struct {
	eval    Evaluator
	class   string
	browser *rod.Browser
	page    *rod.Page
}

var _ carousel.Presenter[markup.Slide] = (*Presenter)(nil)

// New creates a Presenter over eval. An empty class uses
// markup.DefaultSlideClass.
func New(eval Evaluator, class string) *Presenter {
	if class == "" {
		class = markup.DefaultSlideClass
	}
	return &Presenter{eval: eval, class: class}
}

// Connect attaches to the browser at controlURL, opens pageURL in a new tab
// and waits for it to load.
func Connect(ctx context.Context, controlURL, pageURL, class string) (*Presenter, error) {
	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("browser: open %s: %w", pageURL, err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("browser: load %s: %w", pageURL, err)
	}

	p := New(pageEvaluator{page: page}, class)
	p.browser = b
	p.page = page
	return p, nil
}

// Close closes the tab and the browser connection opened by Connect.
func (p *Presenter) Close() error {
	if p.page != nil {
		_ = p.page.Close()
	}
	if p.browser != nil {
		return p.browser.Close()
	}
	return nil
}

// Deactivate fades the slide out.
func (p *Presenter) Deactivate(ctx context.Context, _ int, slide markup.Slide) error {
	return p.style(ctx, slide, "0", "scale(1.05)")
}

// Activate fades the slide in.
func (p *Presenter) Activate(ctx context.Context, _ int, slide markup.Slide) error {
	return p.style(ctx, slide, "1", "scale(1)")
}

func (p *Presenter) style(ctx context.Context, slide markup.Slide, opacity, transform string) error {
	out, err := p.eval.Eval(ctx, styleJS, p.class, slide.Index, opacity, transform)
	if err != nil {
		return fmt.Errorf("browser: style slide %d: %w", slide.Index, err)
	}
	if out != "ok" {
		return fmt.Errorf("%w: %s[%d]", ErrMissingSlide, p.class, slide.Index)
	}
	return nil
}

// Sources reads the slides currently in the page.
func (p *Presenter) Sources(ctx context.Context) ([]markup.Slide, error) {
	doc, err := p.eval.Eval(ctx, outerHTMLJS)
	if err != nil {
		return nil, fmt.Errorf("browser: read DOM: %w", err)
	}
	return markup.Slides(strings.NewReader(doc), p.class)
}
