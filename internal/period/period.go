// Package period implements the calendar math for budget rule windows and
// recurring transaction cadences. All functions are pure and operate in UTC.
package period

import (
	"fmt"
	"strings"
	"time"
)

// Kind is the recurring calendar window over which a budget limit resets.
type Kind string

// Supported rule periods.
const (
	Daily    Kind = "daily"
	Weekly   Kind = "weekly"
	Biweekly Kind = "biweekly"
	Monthly  Kind = "monthly"
	Yearly   Kind = "yearly"
)

// Valid reports whether k is a known rule period.
func (k Kind) Valid() bool {
	switch k {
	case Daily, Weekly, Biweekly, Monthly, Yearly:
		return true
	}
	return false
}

// ParseKind parses a rule period name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unknown rule period %q", s)
	}
	return k, nil
}

// Frequency is the cadence at which a recurring schedule produces a
// transaction. Note that biweekly is a rule period only, not a cadence.
type Frequency string

// Supported recurrence frequencies.
const (
	FreqDaily   Frequency = "daily"
	FreqWeekly  Frequency = "weekly"
	FreqMonthly Frequency = "monthly"
	FreqYearly  Frequency = "yearly"
)

// Valid reports whether f is a known recurrence frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
		return true
	}
	return false
}

// ParseFrequency parses a recurrence frequency name case-insensitively.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown recurrence frequency %q", s)
	}
	return f, nil
}

// Window returns the half-open interval [start, end) of the calendar period
// of kind k containing the reference instant. Transaction timestamps t belong
// to the window when start <= t < end.
func Window(k Kind, ref time.Time) (start, end time.Time) {
	ref = ref.UTC()
	year, month, day := ref.Date()

	switch k {
	case Daily:
		start = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 0, 1)
	case Weekly:
		// ISO week: Monday is the first day.
		daysFromMonday := (int(ref.Weekday()) - int(time.Monday) + 7) % 7
		start = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysFromMonday)
		end = start.AddDate(0, 0, 7)
	case Biweekly:
		if day >= 15 {
			start = time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
			end = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
		} else {
			start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
			end = time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
		}
	case Yearly:
		start = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(1, 0, 0)
	default:
		// Monthly is also the fallback for unknown kinds, matching the
		// engine's historical behavior.
		start = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}

	return start, end
}

// Next returns the occurrence that follows from. Month and year steps clamp
// the day of month rather than overflowing: Jan 31 + 1 month is Feb 28 (or
// Feb 29 in a leap year), not Mar 3.
func Next(f Frequency, from time.Time) time.Time {
	from = from.UTC()
	switch f {
	case FreqWeekly:
		return from.AddDate(0, 0, 7)
	case FreqMonthly:
		return addMonthsClamped(from, 1)
	case FreqYearly:
		return addMonthsClamped(from, 12)
	default:
		return from.AddDate(0, 0, 1)
	}
}

// Previous returns the occurrence that precedes from. It is the inverse of
// Next up to day-of-month clamping.
func Previous(f Frequency, from time.Time) time.Time {
	from = from.UTC()
	switch f {
	case FreqWeekly:
		return from.AddDate(0, 0, -7)
	case FreqMonthly:
		return addMonthsClamped(from, -1)
	case FreqYearly:
		return addMonthsClamped(from, -12)
	default:
		return from.AddDate(0, 0, -1)
	}
}

// addMonthsClamped shifts t by n calendar months, clamping the day to the
// last valid day of the target month. time.Time.AddDate normalizes overflow
// (Jan 31 + 1 month = Mar 3), which is not what a billing cadence wants.
func addMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := daysIn(first.Year(), first.Month())
	if day > last {
		day = last
	}

	return time.Date(first.Year(), first.Month(), day, hour, minute, sec, t.Nanosecond(), time.UTC)
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}
