// Package utils provides common utility functions.
package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// StringHelper provides display-width aware string functions for terminal
// and markdown output.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// Width returns the display width of str in monospace cells.
func (s *StringHelper) Width(str string) int {
	return runewidth.StringWidth(str)
}

// PadRight pads str with spaces to width display cells.
func (s *StringHelper) PadRight(str string, width int) string {
	padding := width - runewidth.StringWidth(str)
	if padding <= 0 {
		return str
	}

	return str + strings.Repeat(" ", padding)
}

// TruncateString truncates str to at most maxWidth display cells, marking the
// cut with "...".
func (s *StringHelper) TruncateString(str string, maxWidth int) string {
	return runewidth.Truncate(str, maxWidth, "...")
}

// SingleLine collapses whitespace runs to one space so a value fits in a
// table cell.
func (s *StringHelper) SingleLine(str string) string {
	return strings.Join(strings.Fields(str), " ")
}
