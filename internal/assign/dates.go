package assign

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Slashed dates are month-first:
// "03/04/2020" reads as March 4.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02Jan2006",
	"2006-01",
}

// IsDateColumn reports whether a header names a date column: any column
// whose name contains "date", case-insensitively.
func IsDateColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "date")
}

// NormalizeDate rewrites a recognised date as YYYY-MM-DD, or as
// YYYY-MM-DD HH:MM:SS when it carries a time of day. The second result is
// false when the value matches no known layout.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return t.Format("2006-01-02"), true
		}
		return t.Format("2006-01-02 15:04:05"), true
	}
	return s, false
}
