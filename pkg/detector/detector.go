// Package detector decides whether an injected payload reflected into a
// response body and infers the markup context it landed in. Inference is
// a heuristic over a bounded window around the marker, not a rendering
// engine; it is allowed to be wrong on pathological markup.
package detector

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/Nishanath123/rxss-scanner/pkg/config"
	"github.com/Nishanath123/rxss-scanner/pkg/models"
	"github.com/Nishanath123/rxss-scanner/pkg/payloads"
)

// Result is the terminal outcome of classifying one response body.
type Result struct {
	Reflected bool
	Context   models.Context
	Snippet   string
	Position  int
}

// Detector locates a marker in response bodies and classifies the
// surrounding markup. The marker is injected at construction so the
// detector stays independent of any particular catalog.
type Detector struct {
	marker      string
	markerLower string
	radius      int
}

// New creates a Detector for the given marker.
func New(marker string) *Detector {
	return &Detector{
		marker:      marker,
		markerLower: strings.ToLower(marker),
		radius:      config.SnippetRadius,
	}
}

// Detect reports whether the marker reflects in body and, if so, the
// inferred context of its first occurrence. Bodies without the marker
// return immediately without any parsing.
func (d *Detector) Detect(body string, p payloads.Payload) Result {
	idx := strings.Index(body, d.marker)
	if idx == -1 {
		return Result{Reflected: false}
	}

	start := idx - d.radius
	if start < 0 {
		start = 0
	}
	end := idx + len(d.marker) + d.radius
	if end > len(body) {
		end = len(body)
	}
	window := body[start:end]

	ctx := d.classify(window, p)

	return Result{
		Reflected: true,
		Context:   ctx,
		Snippet:   window,
		Position:  idx,
	}
}

// classify applies the context heuristics in fixed precedence order.
// Order matters: a window can satisfy several heuristics at once.
func (d *Detector) classify(window string, p payloads.Payload) (ctx models.Context) {
	// A broken window must never abort the scan; whatever goes wrong
	// below, the answer is the text fallback.
	ctx = models.ContextText
	defer func() {
		if recover() != nil {
			ctx = models.ContextText
		}
	}()

	// Position and Snippet describe the first occurrence; repeated
	// echoes inside the window must not steer classification, so every
	// copy after the first is blanked out before inspection.
	window = d.maskRepeats(window)

	hits := d.inspect(window)

	switch {
	case hits.scriptText || d.insideScriptTag(window):
		ctx = models.ContextJSString
	case opensElement(p.Value) && strings.Contains(window, p.Value):
		// The payload introduced this element itself; attribute hits
		// inside it are artifacts of the injected markup.
		ctx = models.ContextTagName
	case hits.attrName:
		ctx = models.ContextAttributeName
	case hits.attrValue:
		ctx = models.ContextAttributeValue
	case hits.tagName:
		ctx = models.ContextTagName
	}
	return ctx
}

// hits records where the marker was seen during the DOM walk.
type hits struct {
	scriptText bool
	attrName   bool
	attrValue  bool
	tagName    bool
}

// inspect parses the window as a tolerant HTML fragment and walks the
// tree looking for the marker. Parse failures yield zero hits.
func (d *Detector) inspect(window string) hits {
	var h hits

	doc, err := html.Parse(strings.NewReader(window))
	if err != nil {
		return h
	}

	var walk func(n *html.Node, inScript bool)
	walk = func(n *html.Node, inScript bool) {
		switch n.Type {
		case html.ElementNode:
			// The parser lowercases tag and attribute names.
			if strings.Contains(n.Data, d.markerLower) {
				h.tagName = true
			}
			for _, attr := range n.Attr {
				if strings.Contains(attr.Key, d.markerLower) {
					h.attrName = true
				}
				if strings.Contains(strings.ToLower(attr.Val), d.markerLower) {
					h.attrValue = true
				}
			}
			if n.Data == "script" {
				inScript = true
			}
		case html.TextNode:
			if inScript && strings.Contains(strings.ToLower(n.Data), d.markerLower) {
				h.scriptText = true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inScript)
		}
	}
	walk(doc, false)

	return h
}

// maskRepeats overwrites every marker occurrence after the first with
// filler of the same length, keeping node offsets in the window stable.
func (d *Detector) maskRepeats(window string) string {
	lower := strings.ToLower(window)

	first := strings.Index(lower, d.markerLower)
	if first == -1 {
		return window
	}

	next := strings.Index(lower[first+len(d.marker):], d.markerLower)
	if next == -1 {
		return window
	}

	out := []byte(window)
	for i := first + len(d.marker); ; {
		j := strings.Index(lower[i:], d.markerLower)
		if j == -1 {
			break
		}
		pos := i + j
		for k := 0; k < len(d.marker); k++ {
			out[pos+k] = 'x'
		}
		i = pos + len(d.marker)
	}
	return string(out)
}

// insideScriptTag is a string-level fallback for windows that clip the
// script element: an unclosed <script before the marker means we are in
// script content even when the parsed fragment lost the tag.
func (d *Detector) insideScriptTag(window string) bool {
	markerIdx := strings.Index(strings.ToLower(window), d.markerLower)
	if markerIdx == -1 {
		return false
	}
	before := strings.ToLower(window[:markerIdx])

	open := strings.LastIndex(before, "<script")
	if open == -1 {
		return false
	}
	return strings.LastIndex(before, "</script") < open
}

// opensElement reports whether a payload begins a new HTML element:
// a '<' followed by an ASCII letter, the only sequence the HTML parser
// treats as a tag open.
func opensElement(s string) bool {
	if len(s) < 2 || s[0] != '<' {
		return false
	}
	c := s[1]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
