package models

import "fmt"

// Context identifies the markup location a reflection landed in.
type Context string

const (
	ContextText           Context = "text"
	ContextAttributeValue Context = "attribute_value"
	ContextAttributeName  Context = "attribute_name"
	ContextJSString       Context = "js_string"
	ContextTagName        Context = "tag_name"
)

// Contexts lists every recognized context in declared order. Payload
// catalogs and reports iterate this slice, never a map, so ordering
// stays stable.
var Contexts = []Context{
	ContextText,
	ContextAttributeValue,
	ContextAttributeName,
	ContextJSString,
	ContextTagName,
}

// Valid reports whether c is one of the recognized contexts.
func (c Context) Valid() bool {
	for _, known := range Contexts {
		if c == known {
			return true
		}
	}
	return false
}

// ParseContext converts a user-supplied label into a Context.
func ParseContext(s string) (Context, error) {
	c := Context(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown context %q", s)
	}
	return c, nil
}

// Finding represents one confirmed reflection. Findings are immutable
// once appended to a scan's result list.
type Finding struct {
	Param    string  `json:"param"`
	Payload  string  `json:"payload"`
	Context  Context `json:"context"`
	Snippet  string  `json:"snippet"`
	Position int     `json:"position"`
	URL      string  `json:"url"`
}
