package utils

import "unicode/utf8"

// Truncate shortens s to at most maxLen runes, ending it with "…" when
// anything was cut.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}
