package layout

import (
	"time"

	"homecal/internal/model"
)

// MonthPlan is the render plan for a month view: full covering weeks, a
// compact per-day listing of timed events, and one band of multi-day bar
// placements per week.
type MonthPlan struct {
	Range VisibleRange
	// Weeks holds one multi-day band per 7-day strip of the range.
	Weeks []WeekLayout
	// DayEvents lists the timed events of each visible day, index-aligned
	// with Range. Month cells render these as simple indicators; no pixel
	// positioning is needed.
	DayEvents [][]model.Event
}

// WeekPlan is the render plan for a week view: an all-day band above a
// 7-column hour grid.
type WeekPlan struct {
	Range VisibleRange
	// AllDay is the multi-day band for the week.
	AllDay WeekLayout
	// Columns holds the timed placements of each day, index-aligned with
	// Range.
	Columns [][]TimedPlacement
}

// DayPlan is the render plan for a single-day view.
type DayPlan struct {
	Day time.Time
	// AllDay is the multi-day band clipped to this one day (band width 1).
	AllDay WeekLayout
	// Timed holds the hour-grid placements for the day.
	Timed []TimedPlacement
}

// MonthView lays out a month. The visible range covers full weeks honoring
// cfg.WeekStart, so leading/trailing days of adjacent months are included.
func MonthView(events []model.Event, year int, month time.Month, loc *time.Location, cfg Config) MonthPlan {
	r := MonthRange(year, month, loc, cfg.WeekStart)
	plan := MonthPlan{
		Range:     r,
		Weeks:     LayoutWeeks(events, r, cfg),
		DayEvents: make([][]model.Event, r.Len()),
	}
	for i := 0; i < r.Len(); i++ {
		plan.DayEvents[i] = r.DayBucket(events, i)
	}
	return plan
}

// WeekView lays out the week containing anchor.
func WeekView(events []model.Event, anchor time.Time, cfg Config) WeekPlan {
	r := WeekRange(anchor, cfg.WeekStart)
	plan := WeekPlan{
		Range:   r,
		Columns: make([][]TimedPlacement, r.Len()),
	}
	if bands := LayoutWeeks(events, r, cfg); len(bands) > 0 {
		plan.AllDay = bands[0]
	}
	for i := 0; i < r.Len(); i++ {
		plan.Columns[i] = LayoutDay(events, r.Day(i), cfg)
	}
	return plan
}

// DayView lays out the single calendar day containing day.
func DayView(events []model.Event, day time.Time, cfg Config) DayPlan {
	r := DayRange(day)
	plan := DayPlan{
		Day:   r.Day(0),
		Timed: LayoutDay(events, r.Day(0), cfg),
	}
	if bands := LayoutWeeks(events, r, cfg); len(bands) > 0 {
		plan.AllDay = bands[0]
	}
	return plan
}
