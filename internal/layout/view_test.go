package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homecal/internal/model"
)

func householdEvents() []model.Event {
	return []model.Event{
		{ID: "piano", Owner: "kid", Start: date(2024, 1, 8, 16, 0), End: date(2024, 1, 8, 17, 0)},
		{ID: "dentist", Owner: "parent", Start: date(2024, 1, 8, 16, 30), End: date(2024, 1, 8, 17, 30)},
		{ID: "trip", Household: true, Color: "#2f6f4f", AllDay: true,
			Start: date(2024, 1, 6, 0, 0), End: date(2024, 1, 10, 0, 0)},
	}
}

func TestMonthView(t *testing.T) {
	plan := MonthView(householdEvents(), 2024, time.January, time.UTC, Config{})

	require.Equal(t, 35, plan.Range.Len())
	require.Len(t, plan.Weeks, 5)
	require.Len(t, plan.DayEvents, 35)

	// The trip (Jan 6–9) spans the week boundary: it must appear in both
	// the first and the second week band.
	assert.Len(t, plan.Weeks[0].Placements, 1, "trip visible in week 0")
	assert.Len(t, plan.Weeks[1].Placements, 1, "trip visible in week 1")
	assert.Equal(t, 6, plan.Weeks[0].Placements[0].StartCol, "Saturday Jan 6")
	assert.Equal(t, 6, plan.Weeks[0].Placements[0].EndCol)
	assert.Equal(t, 0, plan.Weeks[1].Placements[0].StartCol, "Sunday Jan 7")
	assert.Equal(t, 2, plan.Weeks[1].Placements[0].EndCol, "Tuesday Jan 9")

	// Jan 8 is index 8 (Monday of the second week): both timed events, in
	// start order, with metadata carried through untouched.
	day8 := plan.DayEvents[8]
	require.Len(t, day8, 2)
	assert.Equal(t, "piano", day8[0].ID)
	assert.Equal(t, "dentist", day8[1].ID)
	assert.Equal(t, "kid", day8[0].Owner)
}

func TestWeekView(t *testing.T) {
	plan := WeekView(householdEvents(), date(2024, 1, 10, 0, 0), Config{WeekStart: time.Sunday, HourUnit: 60, MinHeight: 30})

	require.Equal(t, 7, plan.Range.Len())
	assert.Equal(t, date(2024, 1, 7, 0, 0), plan.Range.Day(0))

	require.Len(t, plan.AllDay.Placements, 1)
	trip := plan.AllDay.Placements[0]
	assert.Equal(t, "trip", trip.Event.ID)
	assert.Equal(t, 0, trip.StartCol, "clipped: started before this week")
	assert.Equal(t, 2, trip.EndCol)

	// Monday column (index 1) holds both overlapping timed events.
	require.Len(t, plan.Columns, 7)
	mon := plan.Columns[1]
	require.Len(t, mon, 2)
	for _, p := range mon {
		assert.Equal(t, 2, p.ColCount)
	}
	assert.Empty(t, plan.Columns[0], "Sunday has no timed events")
}

func TestDayView(t *testing.T) {
	plan := DayView(householdEvents(), date(2024, 1, 8, 12, 0), Config{HourUnit: 60, MinHeight: 30})

	assert.Equal(t, date(2024, 1, 8, 0, 0), plan.Day)

	// The all-day band is clipped to the single visible day.
	require.Len(t, plan.AllDay.Placements, 1)
	assert.Equal(t, 0, plan.AllDay.Placements[0].StartCol)
	assert.Equal(t, 0, plan.AllDay.Placements[0].EndCol)

	require.Len(t, plan.Timed, 2)
	piano := plan.Timed[0]
	assert.Equal(t, "piano", piano.Event.ID)
	assert.InDelta(t, 16*60, piano.Top, 1e-9)
}

func TestViewsArePure(t *testing.T) {
	events := householdEvents()
	cfg := Config{WeekStart: time.Sunday}

	first := MonthView(events, 2024, time.January, time.UTC, cfg)
	second := MonthView(events, 2024, time.January, time.UTC, cfg)
	assert.Equal(t, first, second)

	// Input slice is not mutated.
	assert.Equal(t, householdEvents(), events)
}
