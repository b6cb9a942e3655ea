// Package textutil holds small string helpers shared by logs and titles.
package textutil

import "unicode/utf8"

// Trim shortens s to at most max bytes, cut on a rune boundary, and marks
// the cut with an ellipsis. The result stays valid UTF-8.
func Trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max < 0 {
		max = 0
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
