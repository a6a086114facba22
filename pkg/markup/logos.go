package markup

import (
	"fmt"
	"io"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LogoOptions controls sponsor logo normalization.
type LogoOptions struct {
	// ContainerClass marks the element holding sponsor logos. Default "sponsors".
	ContainerClass string
	// MaxHeight is the CSS max-height applied to each logo. Default "60px".
	MaxHeight string
	// MaxWidth is the CSS max-width applied to each logo. Default "160px".
	MaxWidth string
}

// WithDefaults fills empty fields with the default container and box.
func (o LogoOptions) WithDefaults() LogoOptions {
	if o.ContainerClass == "" {
		o.ContainerClass = "sponsors"
	}
	if o.MaxHeight == "" {
		o.MaxHeight = "60px"
	}
	if o.MaxWidth == "" {
		o.MaxWidth = "160px"
	}
	return o
}

// NormalizeLogos copies the document from r to w with every <img> inside a
// sponsor container constrained to the same bounding box. Inline style
// properties the pass does not own are kept. Returns the number of images
// rewritten.
func NormalizeLogos(r io.Reader, w io.Writer, opts LogoOptions) (int, error) {
	opts = opts.WithDefaults()

	doc, err := html.Parse(r)
	if err != nil {
		return 0, fmt.Errorf("parse html: %w", err)
	}

	decls := []declaration{
		{"max-height", opts.MaxHeight},
		{"max-width", opts.MaxWidth},
		{"width", "auto"},
		{"height", "auto"},
		{"object-fit", "contain"},
	}

	touched := 0
	seen := map[*html.Node]bool{}
	for _, container := range findByClass(doc, opts.ContainerClass) {
		walk(container, func(n *html.Node) bool {
			// Nested containers reach the same image twice.
			if n.DataAtom != atom.Img || seen[n] {
				return true
			}
			seen[n] = true
			setAttr(n, "style", constrain(attr(n, "style"), decls))
			touched++
			return true
		})
	}

	if err := html.Render(w, doc); err != nil {
		return touched, fmt.Errorf("render html: %w", err)
	}
	return touched, nil
}

type declaration struct {
	property string
	value    string
}

// constrain sets owned on an inline style, keeping every other
// declaration in place. A style that does not parse is kept verbatim with
// the owned declarations appended, which take precedence in the cascade.
func constrain(inline string, owned []declaration) string {
	parsed, err := parser.ParseDeclarations(inline)
	if err != nil {
		parts := []string{}
		if kept := strings.TrimRight(strings.TrimSpace(inline), "; "); kept != "" {
			parts = append(parts, kept)
		}
		for _, d := range owned {
			parts = append(parts, d.property+": "+d.value)
		}
		return strings.Join(parts, "; ")
	}

	for _, d := range owned {
		parsed = set(parsed, d.property, d.value)
	}

	parts := make([]string, len(parsed))
	for i, d := range parsed {
		parts[i] = d.Property + ": " + d.Value
		if d.Important {
			parts[i] += " !important"
		}
	}
	return strings.Join(parts, "; ")
}

// set replaces property in place or appends it. An owned property drops
// any !important flag so the constraint is not overridden.
func set(decls []*css.Declaration, property, value string) []*css.Declaration {
	for _, d := range decls {
		if strings.EqualFold(d.Property, property) {
			d.Property = property
			d.Value = value
			d.Important = false
			return decls
		}
	}
	return append(decls, &css.Declaration{Property: property, Value: value})
}
