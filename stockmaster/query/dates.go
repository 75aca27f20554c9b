package query

import "time"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
}

// ParseDate parses a datetime literal: RFC 3339 with an optional
// fraction, or a bare YYYY-MM-DD date (midnight UTC).
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders t in the canonical stored form.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
