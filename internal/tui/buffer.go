package tui

import (
	"strings"
	"unicode/utf8"
)

// buffer is a multi-line text field with a byte cursor and an optional
// selection anchor. Positions are byte offsets.
type buffer struct {
	text   string
	cursor int
	anchor int // -1 when nothing is selected
}

func newBuffer(text string) buffer {
	return buffer{text: text, anchor: -1}
}

// selection returns the ordered selection bounds; a collapsed selection
// has start == end == cursor
func (b *buffer) selection() (int, int) {
	if b.anchor < 0 || b.anchor == b.cursor {
		return b.cursor, b.cursor
	}
	if b.anchor < b.cursor {
		return b.anchor, b.cursor
	}
	return b.cursor, b.anchor
}

func (b *buffer) clearSelection() {
	b.anchor = -1
}

// extend starts a selection at the cursor if none is active
func (b *buffer) extend() {
	if b.anchor < 0 {
		b.anchor = b.cursor
	}
}

// setText replaces the text and clamps the cursor into it
func (b *buffer) setText(text string) {
	b.text = text
	if b.cursor > len(text) {
		b.cursor = len(text)
	}
	b.snap()
	b.anchor = -1
}

// replaceSelection replaces the selected text (or inserts at the cursor)
func (b *buffer) replaceSelection(s string) {
	start, end := b.selection()
	b.text = b.text[:start] + s + b.text[end:]
	b.cursor = start + len(s)
	b.anchor = -1
}

func (b *buffer) insert(s string) {
	b.replaceSelection(s)
}

func (b *buffer) backspace() {
	if start, end := b.selection(); start != end {
		b.replaceSelection("")
		return
	}
	if b.cursor > 0 {
		_, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
		b.text = b.text[:b.cursor-size] + b.text[b.cursor:]
		b.cursor -= size
	}
}

func (b *buffer) deleteForward() {
	if start, end := b.selection(); start != end {
		b.replaceSelection("")
		return
	}
	if b.cursor < len(b.text) {
		_, size := utf8.DecodeRuneInString(b.text[b.cursor:])
		b.text = b.text[:b.cursor] + b.text[b.cursor+size:]
	}
}

func (b *buffer) left() {
	if b.cursor > 0 {
		_, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
		b.cursor -= size
	}
}

func (b *buffer) right() {
	if b.cursor < len(b.text) {
		_, size := utf8.DecodeRuneInString(b.text[b.cursor:])
		b.cursor += size
	}
}

// snap moves the cursor back to the start of the rune it points into
func (b *buffer) snap() {
	for b.cursor > 0 && b.cursor < len(b.text) && !utf8.RuneStart(b.text[b.cursor]) {
		b.cursor--
	}
}

// lineStart returns the offset of the first byte of the cursor's line
func (b *buffer) lineStart() int {
	return strings.LastIndex(b.text[:b.cursor], "\n") + 1
}

// lineEnd returns the offset of the newline ending the cursor's line
func (b *buffer) lineEnd() int {
	if idx := strings.Index(b.text[b.cursor:], "\n"); idx != -1 {
		return b.cursor + idx
	}
	return len(b.text)
}

func (b *buffer) home() {
	b.cursor = b.lineStart()
}

func (b *buffer) end() {
	b.cursor = b.lineEnd()
}

func (b *buffer) up() {
	start := b.lineStart()
	if start == 0 {
		return
	}
	col := b.cursor - start
	prevStart := strings.LastIndex(b.text[:start-1], "\n") + 1
	prevLen := start - 1 - prevStart
	b.cursor = prevStart + min(col, prevLen)
	b.snap()
}

func (b *buffer) down() {
	end := b.lineEnd()
	if end == len(b.text) {
		return
	}
	col := b.cursor - b.lineStart()
	nextStart := end + 1
	nextEnd := len(b.text)
	if idx := strings.Index(b.text[nextStart:], "\n"); idx != -1 {
		nextEnd = nextStart + idx
	}
	b.cursor = nextStart + min(col, nextEnd-nextStart)
	b.snap()
}

// clearToLineStart removes from the start of the line to the cursor
func (b *buffer) clearToLineStart() {
	start := b.lineStart()
	b.text = b.text[:start] + b.text[b.cursor:]
	b.cursor = start
	b.anchor = -1
}

// clearToLineEnd removes from the cursor to the end of the line
func (b *buffer) clearToLineEnd() {
	b.text = b.text[:b.cursor] + b.text[b.lineEnd():]
	b.anchor = -1
}

// position returns the cursor line and column
func (b *buffer) position() (int, int) {
	before := b.text[:b.cursor]
	line := strings.Count(before, "\n")
	return line, b.cursor - (strings.LastIndex(before, "\n") + 1)
}

// selected returns the selected text, or the whole text when nothing is selected
func (b *buffer) selected() string {
	start, end := b.selection()
	if start == end {
		return b.text
	}
	return b.text[start:end]
}

// handleKey applies a plain editing key and reports whether the text changed
// and whether the key was consumed
func (b *buffer) handleKey(key string, runes []rune) (changed, consumed bool) {
	before := b.text

	switch key {
	case "left":
		b.clearSelection()
		b.left()
	case "right":
		b.clearSelection()
		b.right()
	case "up":
		b.clearSelection()
		b.up()
	case "down":
		b.clearSelection()
		b.down()
	case "shift+left":
		b.extend()
		b.left()
	case "shift+right":
		b.extend()
		b.right()
	case "shift+up":
		b.extend()
		b.up()
	case "shift+down":
		b.extend()
		b.down()
	case "home", "ctrl+a":
		b.clearSelection()
		b.home()
	case "end", "ctrl+e":
		b.clearSelection()
		b.end()
	case "backspace":
		b.backspace()
	case "delete":
		b.deleteForward()
	case "ctrl+u":
		b.clearToLineStart()
	case "ctrl+k":
		b.clearToLineEnd()
	case "enter":
		b.insert("\n")
	default:
		if len(runes) == 0 {
			return false, false
		}
		b.insert(string(runes))
	}

	return b.text != before, true
}
