// Package markup reads landing-page HTML: it extracts hero slide sources
// and rewrites sponsor logos to constrained sizing.
package markup

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSlideClass is the class carried by hero slide elements.
const DefaultSlideClass = "hero-slide"

// Slide is one hero slide element found in a document.
type Slide struct {
	// Index is the element's position among all slide elements in the
	// document, before any preload filtering.
	Index int
	// ID is the element id attribute, if any.
	ID string
	// Source is the image URL the slide displays. Empty for slides whose
	// content is already present in the page.
	Source string
}

var cssURL = regexp.MustCompile(`(?i)url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// Slides returns every element carrying class, in document order.
func Slides(r io.Reader, class string) ([]Slide, error) {
	if class == "" {
		class = DefaultSlideClass
	}
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var slides []Slide
	for _, n := range findByClass(doc, class) {
		slides = append(slides, Slide{
			Index:  len(slides),
			ID:     attr(n, "id"),
			Source: source(n),
		})
	}
	return slides, nil
}

// Sources returns the Source of each slide.
func Sources(slides []Slide) []string {
	out := make([]string, len(slides))
	for i, s := range slides {
		out[i] = s.Source
	}
	return out
}

// source picks the image a slide element shows: its own src or data-src,
// an inline background image, or the first descendant <img>.
func source(n *html.Node) string {
	if n.DataAtom == atom.Img {
		if v := attr(n, "src"); v != "" {
			return v
		}
	}
	if v := attr(n, "data-src"); v != "" {
		return v
	}
	if v := backgroundImage(attr(n, "style")); v != "" {
		return v
	}
	var found string
	walk(n, func(c *html.Node) bool {
		if c != n && c.DataAtom == atom.Img {
			found = attr(c, "src")
			if found == "" {
				found = attr(c, "data-src")
			}
			return false
		}
		return true
	})
	return found
}

// backgroundImage returns the first url() of a background or
// background-image declaration in an inline style.
func backgroundImage(style string) string {
	decls, err := parser.ParseDeclarations(style)
	if err != nil {
		return ""
	}
	for _, d := range decls {
		p := strings.ToLower(d.Property)
		if p != "background" && p != "background-image" {
			continue
		}
		if m := cssURL.FindStringSubmatch(d.Value); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// findByClass returns element nodes whose class list contains class.
func findByClass(root *html.Node, class string) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, class) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// walk visits n and its descendants depth-first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
