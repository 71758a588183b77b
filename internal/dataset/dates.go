package dataset

import (
	"strings"
	"time"
)

// fallbackLayouts are tried in order when no format was detected or the
// detected one does not parse. First match wins, so unambiguous layouts
// come first.
var fallbackLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01-02-2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"2 Jan 2006",
}

// layoutFromFormat translates a schema-style date format (DD/MM/YYYY,
// YYYY-MM-DD, ...) into a Go reference layout.
func layoutFromFormat(format string) string {
	if format == "" || strings.EqualFold(format, "infer") {
		return ""
	}
	r := strings.NewReplacer(
		"YYYY", "2006",
		"YY", "06",
		"MM", "01",
		"DD", "02",
		"HH", "15",
		"mm", "04",
		"SS", "05",
	)
	return r.Replace(format)
}

// ParseDate parses a raw cell into a calendar date using the detected
// format first and the fallback layouts after. The second return is
// false when nothing parses; the value is then treated as null.
func ParseDate(value, format string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if layout := layoutFromFormat(format); layout != "" {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
