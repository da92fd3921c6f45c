package format

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// HighlightStyle is the chroma style used for terminal output
const HighlightStyle = "monokai"

// Highlight colors a JSON value for a 256-color terminal. Values that are
// not JSON, or that chroma cannot render, come back unchanged.
func Highlight(value string) string {
	if Validate(value) != nil {
		return value
	}

	var b strings.Builder
	if err := quick.Highlight(&b, value, "json", "terminal256", HighlightStyle); err != nil {
		return value
	}
	return b.String()
}
