package service

import "unicode/utf8"

// Truncate cuts s to at most maxBytes bytes and appends notice. The cut backs
// off to a rune boundary so the result stays valid UTF-8.
func Truncate(s string, maxBytes int, notice string) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + notice
}
