package leave

import (
	"net/http"
	"time"

	"peopledesk/internal/apperror"
)

// DaysBetween returns the inclusive day count between two calendar dates.
// Both dates are truncated to midnight UTC before counting, so time-of-day
// and zone offsets on the inputs cannot skew the span.
func DaysBetween(start, end time.Time) (int, error) {
	s := dateOnly(start)
	e := dateOnly(end)
	if e.Before(s) {
		return 0, apperror.New(apperror.CodeValidation, "end date is before start date", http.StatusBadRequest)
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

// RangesOverlap reports whether two closed date intervals intersect.
// Touching on a single shared day counts as overlap.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	as, ae := dateOnly(aStart), dateOnly(aEnd)
	bs, be := dateOnly(bStart), dateOnly(bEnd)
	return !ae.Before(bs) && !be.Before(as)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
