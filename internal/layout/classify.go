package layout

import (
	"math"
	"time"

	"homecal/internal/model"
)

// Class describes how a single event participates in grid layout.
type Class struct {
	// MultiDay is true when the event belongs in the all-day/multi-day band
	// rather than the hour grid.
	MultiDay bool
	// DurationDays is the number of calendar days the event covers, >= 1.
	DurationDays int
	// Inverted flags malformed input (End before Start). Such events are
	// still laid out, clamped to minimum duration, so upstream data issues
	// degrade visually instead of crashing.
	Inverted bool
}

// Classify partitions an event into the multi-day or timed bucket.
//
// An event is multi-day when its end falls on a later calendar day than its
// start, or when it covers the full 24-hour span of its day(s): carrying the
// all-day flag from the source, or running from midnight to the last minute
// of its end day. Everything else is a timed event bounded to a single
// calendar day.
//
// Pure function; no side effects.
func Classify(ev model.Event) Class {
	var cl Class
	cl.Inverted = ev.End.Before(ev.Start)

	end := effectiveEnd(ev.Start, ev.End)
	days := daysBetween(dateOf(ev.Start), dateOf(end))
	if days < 0 {
		days = 0
	}

	cl.MultiDay = days > 0 || ev.AllDay || coversFullDay(ev.Start, end)
	cl.DurationDays = days + 1
	return cl
}

// effectiveEnd maps an end-exclusive midnight (the common ICS convention for
// all-day events: [00:00, next day 00:00)) back onto the last instant of the
// previous day, so calendar-day math does not overcount by one.
func effectiveEnd(start, end time.Time) time.Time {
	if end.After(start) && isMidnight(end) {
		return end.Add(-time.Nanosecond)
	}
	return end
}

func coversFullDay(start, end time.Time) bool {
	return isMidnight(start) && end.Hour() == 23 && end.Minute() >= 59
}

func isMidnight(t time.Time) bool {
	return t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

// dateOf truncates t to midnight of its calendar day, keeping the location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween returns the calendar-day difference b - a for two midnights.
// Rounding absorbs the 23h/25h days around DST transitions.
func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// sanitizeInterval clamps an inverted interval to zero duration so downstream
// layout math never sees End < Start.
func sanitizeInterval(ev model.Event) model.Event {
	if ev.End.Before(ev.Start) {
		ev.End = ev.Start
	}
	return ev
}
