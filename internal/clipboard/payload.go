// Package clipboard converts between scene objects and clipboard text.
//
// Copy produces a single SVG document from the selection; paste classifies
// the clipboard text as SVG markup or plain text and turns it back into
// scene objects.
package clipboard

import "strings"

// Kind tags a clipboard payload.
type Kind string

const (
	SvgDocument Kind = "svg"
	PlainText   Kind = "text"
)

// Payload is classified clipboard text.
type Payload struct {
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
}

// Classify tags text as an SVG document when, ignoring surrounding
// whitespace, it starts with "<svg". Everything else is plain text,
// including the empty string.
func Classify(text string) Payload {
	if strings.HasPrefix(strings.TrimSpace(text), "<svg") {
		return Payload{Kind: SvgDocument, Content: text}
	}
	return Payload{Kind: PlainText, Content: text}
}
