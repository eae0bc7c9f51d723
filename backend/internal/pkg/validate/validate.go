package validate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Text trims user input and drops control characters other than newline and
// tab. Markup and comparison signs are stored as typed; HTML renderers escape
// them on output.
func Text(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, value)
	return strings.TrimSpace(value)
}

// TextPtr cleans an optional value and drops it when nothing is left.
func TextPtr(value *string) *string {
	if value == nil {
		return nil
	}
	clean := Text(*value)
	if clean == "" {
		return nil
	}
	return &clean
}

func MaxLen(value string, max int) bool {
	return utf8.RuneCountInString(value) <= max
}
