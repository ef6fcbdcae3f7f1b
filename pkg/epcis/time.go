package epcis

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted by ParseTime, tried in order. Vendors send timestamps
// with and without fractional seconds and frequently omit the zone.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTime parses an EPCIS timestamp. Values without a zone are taken as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported timestamp %q", s)
}

// FormatTime renders t the way EPCIS documents carry it, in UTC with
// millisecond precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// ZoneOffset returns the +hh:mm offset of t, as used by eventTimeZoneOffset
func ZoneOffset(t time.Time) string {
	return t.Format("-07:00")
}
