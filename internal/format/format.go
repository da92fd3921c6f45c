// Package format converts stored values between their raw form and the
// indented form shown in the editor. Both directions are total: text that
// is not JSON passes through unchanged.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Indent is the unit used when pretty-printing values
const Indent = "  "

// FormatError reports that a value is not valid JSON.
// It never leaves this package through Pretty or Raw.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("value is not valid JSON: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Validate reports whether value is a single JSON document
func Validate(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return &FormatError{Err: fmt.Errorf("empty value")}
	}
	// Unmarshal checks the whole input, trailing bytes included
	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return &FormatError{Err: err}
	}
	return nil
}

// Pretty returns value indented with two spaces, or value unchanged when it
// is not JSON
func Pretty(value string) string {
	if Validate(value) != nil {
		return value
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(value)), "", Indent); err != nil {
		return value
	}
	return buf.String()
}

// Raw strips the formatting Pretty adds, or returns value unchanged when it
// is not JSON
func Raw(value string) string {
	if Validate(value) != nil {
		return value
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(strings.TrimSpace(value))); err != nil {
		return value
	}
	return buf.String()
}
