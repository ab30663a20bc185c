package common

import (
	"bts/src/config"
	"bts/src/models"
	"bts/src/types"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidRecurrenceRule = errors.New("invalid recurrence rule")

// DateOnly strips the clock component, normalizing to midnight UTC so that
// calendar days compare and subtract cleanly regardless of source timezone.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ExpandTripWindow computes the calendar days on which a trip should depart
// within [windowStart, windowEnd], both inclusive. The result is ascending,
// deduplicated, clamped to the trip's own validity window and the pattern's
// end date, and filtered by the pattern's exception days. Pure, no I/O.
//
// An inverted window and an empty weekly day set both produce an empty slice;
// only a malformed rule is an error.
func ExpandTripWindow(trip *models.Trip, windowStart, windowEnd time.Time) ([]time.Time, error) {
	pattern := trip.Recurrence
	ws := DateOnly(windowStart)
	we := DateOnly(windowEnd)
	if we.Before(ws) {
		return []time.Time{}, nil
	}

	anchor := DateOnly(trip.ValidFrom)
	lower := anchor
	if lower.Before(ws) {
		lower = ws
	}
	upper := we
	if trip.ValidUntil != nil {
		if vu := DateOnly(*trip.ValidUntil); vu.Before(upper) {
			upper = vu
		}
	}
	if pattern.EndDate != nil {
		if ed := DateOnly(*pattern.EndDate); ed.Before(upper) {
			upper = ed
		}
	}
	if upper.Before(lower) {
		return []time.Time{}, nil
	}

	var days []time.Time
	switch pattern.Type {
	case "", types.RECURRENCE_NONE:
		if !anchor.Before(lower) && !anchor.After(upper) {
			days = append(days, anchor)
		}
	case types.RECURRENCE_DAILY:
		if pattern.Interval < 1 {
			return nil, fmt.Errorf("%w: daily interval must be >= 1, got %d", ErrInvalidRecurrenceRule, pattern.Interval)
		}
		// First candidate is the earliest day >= lower that sits on the
		// interval grid anchored at valid_from, so overlapping windows
		// expand to the same day set.
		d := anchor
		if d.Before(lower) {
			gap := daysBetween(anchor, lower)
			steps := (gap + pattern.Interval - 1) / pattern.Interval
			d = anchor.AddDate(0, 0, steps*pattern.Interval)
		}
		for ; !d.After(upper); d = d.AddDate(0, 0, pattern.Interval) {
			days = append(days, d)
		}
	case types.RECURRENCE_WEEKLY:
		if pattern.Interval < 1 {
			return nil, fmt.Errorf("%w: weekly interval must be >= 1, got %d", ErrInvalidRecurrenceRule, pattern.Interval)
		}
		if len(pattern.DaysOfWeek) == 0 {
			return []time.Time{}, nil
		}
		weekdays := make(map[int]bool, len(pattern.DaysOfWeek))
		for _, wd := range pattern.DaysOfWeek {
			weekdays[wd] = true
		}
		anchorWeek := startOfWeek(anchor)
		for d := lower; !d.After(upper); d = d.AddDate(0, 0, 1) {
			if !weekdays[int(d.Weekday())] {
				continue
			}
			if daysBetween(anchorWeek, startOfWeek(d))/7%pattern.Interval != 0 {
				continue
			}
			days = append(days, d)
		}
	case types.RECURRENCE_MONTHLY:
		if pattern.Interval < 1 {
			return nil, fmt.Errorf("%w: monthly interval must be >= 1, got %d", ErrInvalidRecurrenceRule, pattern.Interval)
		}
		// The anchor day-of-month is valid_from's; months too short clamp
		// to their last day without shifting later months (Jan 31 -> Feb 28
		// -> Mar 31).
		for k := 0; ; k++ {
			d := addMonthsClamped(anchor, k*pattern.Interval)
			if d.After(upper) {
				break
			}
			if d.Before(lower) {
				continue
			}
			days = append(days, d)
		}
	default:
		return nil, fmt.Errorf("%w: unknown recurrence type %q", ErrInvalidRecurrenceRule, pattern.Type)
	}

	out := make([]time.Time, 0, len(days))
	for _, d := range days {
		if pattern.Exceptions.Contains(d.Format(config.DATE_PARSE_FORMAT)) {
			continue
		}
		if len(out) > 0 && !out[len(out)-1].Before(d) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// startOfWeek returns the Monday of d's week.
func startOfWeek(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func addMonthsClamped(anchor time.Time, months int) time.Time {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	day := anchor.Day()
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}
