package shared

import "time"

// ParseDate parses a calendar date in YYYY-MM-DD form. Leave dates carry no
// time-of-day component on the wire.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}

// FormatDate renders a date the way ParseDate reads it.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
