package layout

import (
	"sort"
	"time"

	"homecal/internal/model"
)

// VisibleRange is the contiguous run of calendar days currently rendered by
// a view: 1 day for day view, 7 for week view, 35 or 42 (full covering
// weeks) for month view. Build one through DayRange, WeekRange or
// MonthRange; the constructors guarantee the days are consecutive midnights
// in one location with no gaps or duplicates.
type VisibleRange struct {
	days []time.Time
}

// DayRange returns a range covering the single calendar day containing t.
func DayRange(t time.Time) VisibleRange {
	return VisibleRange{days: []time.Time{dateOf(t)}}
}

// WeekRange returns the 7-day week containing t, starting on weekStart.
func WeekRange(t time.Time, weekStart time.Weekday) VisibleRange {
	start := startOfWeek(dateOf(t), weekStart)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = start.AddDate(0, 0, i)
	}
	return VisibleRange{days: days}
}

// MonthRange returns the full weeks covering the given month: from the
// weekStart on/before the 1st through the end of the week containing the
// last day of the month.
func MonthRange(year int, month time.Month, loc *time.Location, weekStart time.Weekday) VisibleRange {
	if loc == nil {
		loc = time.Local
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	nextMonth := first.AddDate(0, 1, 0)

	var days []time.Time
	d := startOfWeek(first, weekStart)
	for d.Before(nextMonth) || len(days)%7 != 0 {
		days = append(days, d)
		d = d.AddDate(0, 0, 1)
	}
	return VisibleRange{days: days}
}

// startOfWeek walks back from a midnight to the previous (or same) weekStart.
func startOfWeek(day time.Time, weekStart time.Weekday) time.Time {
	for day.Weekday() != weekStart {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// Len returns the number of visible days.
func (r VisibleRange) Len() int { return len(r.days) }

// Day returns the midnight of the i-th visible day.
func (r VisibleRange) Day(i int) time.Time { return r.days[i] }

// Days returns a copy of the visible days.
func (r VisibleRange) Days() []time.Time {
	out := make([]time.Time, len(r.days))
	copy(out, r.days)
	return out
}

// Start returns the first instant of the range.
func (r VisibleRange) Start() time.Time {
	if len(r.days) == 0 {
		return time.Time{}
	}
	return r.days[0]
}

// End returns the first instant after the range (exclusive bound).
func (r VisibleRange) End() time.Time {
	if len(r.days) == 0 {
		return time.Time{}
	}
	return r.days[len(r.days)-1].AddDate(0, 0, 1)
}

// Weeks returns the visible days chunked into bands of at most 7 days. For
// a day view this is a single 1-day band; the multi-day mapper lays out each
// band independently.
func (r VisibleRange) Weeks() [][]time.Time {
	var weeks [][]time.Time
	for i := 0; i < len(r.days); i += 7 {
		end := i + 7
		if end > len(r.days) {
			end = len(r.days)
		}
		weeks = append(weeks, r.days[i:end])
	}
	return weeks
}

// DayBucket returns the timed (non-multi-day) events whose interval
// intersects the i-th visible day, in start order. Recomputed on every call;
// never persisted.
func (r VisibleRange) DayBucket(events []model.Event, i int) []model.Event {
	dayStart := r.days[i]
	dayEnd := dayStart.AddDate(0, 0, 1)

	var out []model.Event
	for _, ev := range events {
		if Classify(ev).MultiDay {
			continue
		}
		ev = sanitizeInterval(ev)
		end := effectiveEnd(ev.Start, ev.End)
		if ev.Start.Before(dayEnd) && !end.Before(dayStart) {
			out = append(out, ev)
		}
	}
	sortEvents(out)
	return out
}

// sortEvents orders events by start time ascending, breaking ties by ID so
// identical input always yields identical output.
func sortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Start.Equal(events[j].Start) {
			return events[i].Start.Before(events[j].Start)
		}
		return events[i].ID < events[j].ID
	})
}
