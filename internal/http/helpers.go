package http

import (
	"strings"
)

// sanitizeInput removes potentially dangerous characters and trims
// whitespace. Tabs and newlines survive: the clipboard import carries
// multiline text.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}
