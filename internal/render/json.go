// Package render writes p4status reports as JSON or fixed-width text.
package render

import (
	"encoding/json"
	"io"
)

// Format selects an output renderer.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, bool) {
	switch Format(s) {
	case FormatJSON, FormatText:
		return Format(s), true
	default:
		return "", false
	}
}

// JSON writes v as two-space indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
