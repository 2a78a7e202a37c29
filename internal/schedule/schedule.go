// Package schedule computes the next calendar occurrence of a
// recurring bill's frequency rule.
package schedule

import (
	"fmt"
	"time"

	"github.com/ledgerly-dev/ledgerly/internal/model"
)

// Error reports an invalid frequency/parameter combination. It is
// fatal to the offending bill's projections only.
type Error struct {
	BillID string
	Reason string
}

func (e Error) Error() string {
	return fmt.Sprintf("schedule for bill %s: %s", e.BillID, e.Reason)
}

// Next returns the first date strictly after anchor that satisfies the
// bill's schedule rule. Time-of-day is normalized to midnight in the
// anchor's location.
func Next(anchor time.Time, b model.RecurringBill) (time.Time, error) {
	anchor = midnight(anchor)

	switch b.Frequency {
	case model.FreqDaily:
		return anchor.AddDate(0, 0, 1), nil

	case model.FreqWeekly:
		return nextWeekday(anchor, effectiveWeekday(anchor, b)), nil

	case model.FreqBiweekly:
		// One full week past the next weekly occurrence.
		return nextWeekday(anchor.AddDate(0, 0, 7), effectiveWeekday(anchor, b)), nil

	case model.FreqMonthly:
		if b.WeekOfMonth >= 1 && b.WeekOfMonth <= 5 {
			if b.DayOfWeek < 0 || b.DayOfWeek > 6 {
				return time.Time{}, Error{BillID: b.ID, Reason: "weekOfMonth requires dayOfWeek"}
			}
			return nextNthWeekday(anchor, time.Weekday(b.DayOfWeek), b.WeekOfMonth), nil
		}
		if b.DayOfMonth < 1 || b.DayOfMonth > 31 {
			return time.Time{}, Error{BillID: b.ID, Reason: fmt.Sprintf("invalid dayOfMonth %d", b.DayOfMonth)}
		}
		return nextMonthDay(anchor, b.DayOfMonth), nil

	case model.FreqAnnual:
		return nextAnnual(anchor), nil

	default:
		return time.Time{}, Error{BillID: b.ID, Reason: fmt.Sprintf("unknown frequency %q", b.Frequency)}
	}
}

// effectiveWeekday resolves the bill's day-of-week, falling back to the
// anchor's own weekday when unset.
func effectiveWeekday(anchor time.Time, b model.RecurringBill) time.Weekday {
	if b.DayOfWeek >= 0 && b.DayOfWeek <= 6 {
		return time.Weekday(b.DayOfWeek)
	}
	return anchor.Weekday()
}

// nextWeekday returns the first date strictly after from that falls on wd.
func nextWeekday(from time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(from.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return from.AddDate(0, 0, days)
}

// nextMonthDay returns the next occurrence of day-of-month, clamped to
// the month's length (dayOfMonth 31 in February yields Feb 28/29).
// The same month is used when its occurrence is still ahead of anchor.
func nextMonthDay(anchor time.Time, day int) time.Time {
	candidate := clampToMonth(anchor.Year(), anchor.Month(), day, anchor.Location())
	if candidate.After(anchor) {
		return candidate
	}
	next := anchor.AddDate(0, 0, -anchor.Day()+1).AddDate(0, 1, 0) // first of next month
	return clampToMonth(next.Year(), next.Month(), day, anchor.Location())
}

// nextNthWeekday returns the next "nth weekday of the month" (week 5
// meaning the last occurrence), strictly after anchor.
func nextNthWeekday(anchor time.Time, wd time.Weekday, week int) time.Time {
	year, month := anchor.Year(), anchor.Month()
	for i := 0; i < 24; i++ {
		candidate := nthWeekdayOf(year, month, wd, week, anchor.Location())
		if candidate.After(anchor) {
			return candidate
		}
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	// Unreachable: every month has an nth weekday for week 1-5.
	return anchor.AddDate(0, 1, 0)
}

func nthWeekdayOf(year int, month time.Month, wd time.Weekday, week int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(wd) - int(first.Weekday()) + 7) % 7
	d := first.AddDate(0, 0, offset+(week-1)*7)
	// Week 5 means "last": step back while we've overflowed the month.
	for d.Month() != month {
		d = d.AddDate(0, 0, -7)
	}
	return d
}

// nextAnnual returns the same month/day one year later, clamping
// Feb 29 anchors to Feb 28 in non-leap years.
func nextAnnual(anchor time.Time) time.Time {
	return clampToMonth(anchor.Year()+1, anchor.Month(), anchor.Day(), anchor.Location())
}

// clampToMonth builds a date, clamping day to the month's length.
func clampToMonth(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := daysIn(year, month)
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
