// Package textedit implements tab indent and outdent for a plain multi-line
// text field. Offsets are byte offsets into the text.
package textedit

import "strings"

// Unit is the text inserted by one indent
const Unit = "  "

// Edit is the result of handling the indent key
type Edit struct {
	Text    string
	Start   int
	End     int
	Changed bool
}

// HandleTab applies indent, or outdent when shift is held. The caller must
// consume the key either way: tab never inserts a literal tab or moves focus.
func HandleTab(text string, start, end int, shift bool) Edit {
	if shift {
		return Outdent(text, start, end)
	}
	return Indent(text, start, end)
}

// Indent inserts one unit at start and leaves a collapsed caret just after it.
// The selected text is kept.
func Indent(text string, start, end int) Edit {
	start, _ = clamp(text, start, end)
	caret := start + len(Unit)
	return Edit{
		Text:    text[:start] + Unit + text[start:],
		Start:   caret,
		End:     caret,
		Changed: true,
	}
}

// Outdent removes the nearest unit before start when it sits on the current
// line, and shifts both bounds left by its width. Otherwise the text is
// returned unchanged.
func Outdent(text string, start, end int) Edit {
	start, end = clamp(text, start, end)
	unchanged := Edit{Text: text, Start: start, End: end}

	before := text[:start]
	unit := strings.LastIndex(before, Unit)
	if unit == -1 {
		return unchanged
	}
	// -1 when the caret is on the first line
	lineStart := strings.LastIndex(before, "\n")
	if unit < lineStart {
		return unchanged
	}

	return Edit{
		Text:    text[:unit] + text[unit+len(Unit):],
		Start:   start - len(Unit),
		End:     end - len(Unit),
		Changed: true,
	}
}

func clamp(text string, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if start > len(text) {
		start = len(text)
	}
	if end < start {
		end = start
	}
	if end > len(text) {
		end = len(text)
	}
	return start, end
}
