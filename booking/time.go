/*
time.go - Date and time-of-day value types

PURPOSE:
  Bookings are scoped to a single calendar date plus a [start, end)
  time-of-day window. These types keep that model explicit instead of
  passing around raw time.Time values with meaningless date or clock
  components.

KEY CONCEPTS:
  - Date: a calendar day (no clock, no zone ambiguity - always UTC)
  - TimeOfDay: minutes since midnight, formatted HH:MM
  - Overlaps: half-open interval intersection - the policy that decides
    whether two bookings compete for the same equipment

HALF-OPEN SEMANTICS:
  A window covers [start, end). Two windows overlap iff
  s1 < e2 && s2 < e1. Touching endpoints (one booking ends 10:00,
  another starts 10:00) do NOT overlap, so back-to-back bookings of
  the same equipment are always allowed.

SEE ALSO:
  - availability.go: uses Overlaps to accumulate competing usage
  - errors.go: ParseError kinds returned by the parsers here
*/
package booking

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - A calendar day
// =============================================================================

// Date is a calendar day. The zero value is "no date".
type Date struct {
	t time.Time
}

// NewDate builds a Date from components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a strict YYYY-MM-DD date. Failures are reported as a
// *ParseError with kind ParseBadDate (or ParseEmptyText for blank input)
// so callers can branch on the cause.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, &ParseError{Kind: ParseEmptyText, Input: s}
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, &ParseError{Kind: ParseBadDate, Input: s}
	}
	return Date{t: t.UTC()}, nil
}

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

// String formats the date as YYYY-MM-DD, the canonical wire form.
func (d Date) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// TIME OF DAY - Minutes since midnight
// =============================================================================

// TimeOfDay is a clock time within a day, stored as minutes since
// midnight. Comparisons are plain integer comparisons.
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from an hour and minute.
func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*60 + minute)
}

// ParseTimeOfDay parses an HH:MM clock time. Failures are reported as a
// *ParseError with kind ParseBadTime (or ParseEmptyText for blank input).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ParseError{Kind: ParseEmptyText, Input: s}
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, &ParseError{Kind: ParseBadTime, Input: s}
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }
func (t TimeOfDay) After(other TimeOfDay) bool  { return t > other }

// String formats the time as HH:MM, the canonical wire form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// =============================================================================
// OVERLAP - Half-open interval intersection
// =============================================================================

// Overlaps reports whether [s1, e1) and [s2, e2) intersect.
// Touching endpoints do not count as an overlap.
func Overlaps(s1, e1, s2, e2 TimeOfDay) bool {
	return s1 < e2 && s2 < e1
}
