package helpers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TruncateRunes cuts s to at most max runes without splitting a multi-byte
// sequence. A non-positive max returns s unchanged.
func TruncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// CollapseSpace replaces every whitespace run with a single space and trims
// the ends.
func CollapseSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// IsBlank reports whether s holds only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
