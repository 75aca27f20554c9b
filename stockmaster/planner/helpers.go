package planner

import (
	"strconv"
	"strings"
)

// likeContains turns text into a LIKE pattern matching any value that
// contains it. %, _ and \ are escaped so the result can be used with
// "ESCAPE '\'" safely.
func likeContains(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	b.WriteByte('%')
	for _, r := range text {
		switch r {
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('%')
	return b.String()
}

// formatNumber renders f so that it always reads back as a float.
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}
