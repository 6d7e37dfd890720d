// Package businessday implements weekday-only calendar arithmetic.
// Dates are calendar dates held as midnight UTC; no holidays are modelled.
package businessday

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date string cannot be parsed
var ErrInvalidDate = errors.New("invalid date")

// Date truncates t to its calendar date at midnight UTC. The wall-clock
// date of t is kept, so no timezone conversion takes place.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Format renders a date as YYYY-MM-DD
func Format(t time.Time) string {
	return t.Format(DateLayout)
}

// IsBusinessDay reports whether t falls on Monday through Friday
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextBusinessDayAfter returns the first weekday strictly after t
func NextBusinessDayAfter(t time.Time) time.Time {
	d := Date(t)
	switch d.Weekday() {
	case time.Friday:
		return d.AddDate(0, 0, 3)
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	default:
		return d.AddDate(0, 0, 1)
	}
}

// Normalize moves a weekend date forward to the following Monday
func Normalize(t time.Time) time.Time {
	d := Date(t)
	if IsBusinessDay(d) {
		return d
	}
	return NextBusinessDayAfter(d)
}

// AdvanceByInstallDays walks forward from start counting only weekdays and
// returns the last worked date. A job always takes at least one day.
func AdvanceByInstallDays(start time.Time, days int) time.Time {
	if days < 1 {
		days = 1
	}
	d := Date(start)
	counted := 0
	for {
		if IsBusinessDay(d) {
			counted++
			if counted >= days {
				return d
			}
		}
		d = d.AddDate(0, 0, 1)
	}
}

// NextAvailable returns the date a crew is free again after a job that
// starts on start and runs for days business days
func NextAvailable(start time.Time, days int) time.Time {
	return NextBusinessDayAfter(AdvanceByInstallDays(start, days))
}

// Span is an inclusive range of calendar dates occupied on a crew
type Span struct {
	Start time.Time
	End   time.Time // last worked date
}

// NewSpan builds the span occupied by a job of the given length
func NewSpan(start time.Time, days int) Span {
	s := Date(start)
	return Span{Start: s, End: AdvanceByInstallDays(s, days)}
}

// Overlaps reports whether two spans share any date
func (s Span) Overlaps(o Span) bool {
	return !s.Start.After(o.End) && !o.Start.After(s.End)
}

// Count returns the number of business days between from and to inclusive
func Count(from, to time.Time) int {
	n := 0
	for d := Date(from); !d.After(Date(to)); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			n++
		}
	}
	return n
}
