package awards

import (
	"strings"
	"time"
)

// endDateLayouts are tried in order when parsing end-date cells. The bulk
// download normally emits 2006-01-02, but older extracts carry timestamps
// and US-style dates.
var endDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// ParseEndDate attempts a tolerant parse of a date cell. Empty or
// unparseable values return ok=false; the caller treats that as "no value",
// never as an error.
func ParseEndDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range endDateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
