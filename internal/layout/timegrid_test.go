package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homecal/internal/model"
)

var gridCfg = Config{HourUnit: 60, MinHeight: 30}

func placementByID(t *testing.T, placements []TimedPlacement, id string) TimedPlacement {
	t.Helper()
	for _, p := range placements {
		if p.Event.ID == id {
			return p
		}
	}
	t.Fatalf("no placement for %q", id)
	return TimedPlacement{}
}

func TestLayoutDayVertical(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "morning", Start: date(2024, 1, 7, 9, 30), End: date(2024, 1, 7, 11, 0)},
		{ID: "short", Start: date(2024, 1, 7, 9, 0), End: date(2024, 1, 7, 9, 5)},
		{ID: "zero", Start: date(2024, 1, 7, 14, 0), End: date(2024, 1, 7, 14, 0)},
	}

	placements := LayoutDay(events, day, gridCfg)
	require.Len(t, placements, 3)

	morning := placementByID(t, placements, "morning")
	assert.InDelta(t, 9.5*60, morning.Top, 1e-9)
	assert.InDelta(t, 1.5*60, morning.Height, 1e-9)

	short := placementByID(t, placements, "short")
	assert.InDelta(t, 30, short.Height, 1e-9, "five-minute event gets the minimum height")

	zero := placementByID(t, placements, "zero")
	assert.InDelta(t, 30, zero.Height, 1e-9, "zero-duration event gets the minimum height")
}

func TestLayoutDayHourBucketSplit(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "x", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 7, 10, 30)},
		{ID: "y", Start: date(2024, 1, 7, 10, 15), End: date(2024, 1, 7, 10, 45)},
	}

	placements := LayoutDay(events, day, gridCfg)
	require.Len(t, placements, 2)

	x := placementByID(t, placements, "x")
	y := placementByID(t, placements, "y")
	assert.Equal(t, 2, x.ColCount)
	assert.Equal(t, 2, y.ColCount)
	assert.NotEqual(t, x.Col, y.Col, "events sharing an hour bucket need distinct columns")
	assert.Equal(t, 0, x.Col, "earlier start claims the first column")
}

func TestLayoutDayNonOverlapping(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "a", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 7, 11, 0)},
		{ID: "c", Start: date(2024, 1, 7, 8, 0), End: date(2024, 1, 7, 9, 0)},
	}

	placements := LayoutDay(events, day, gridCfg)
	require.Len(t, placements, 2)
	for _, p := range placements {
		assert.Equal(t, 1, p.ColCount, "%s runs alone", p.Event.ID)
		assert.Equal(t, 0, p.Col)
	}
}

func TestLayoutDayOnTheHourBoundary(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "first", Start: date(2024, 1, 7, 9, 0), End: date(2024, 1, 7, 10, 0)},
		{ID: "second", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 7, 11, 0)},
	}

	placements := LayoutDay(events, day, gridCfg)
	for _, p := range placements {
		assert.Equal(t, 1, p.ColCount,
			"%s: back-to-back events must not share the boundary bucket", p.Event.ID)
	}
}

// TestLayoutDayPerHourWidth pins the per-hour-bucket behavior: a long event
// adopts the peak concurrency of any hour it touches, even where the
// neighbors' exact intervals never overlap it.
func TestLayoutDayPerHourWidth(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "long", Start: date(2024, 1, 7, 9, 0), End: date(2024, 1, 7, 12, 0)},
		{ID: "blip", Start: date(2024, 1, 7, 9, 30), End: date(2024, 1, 7, 10, 0)},
	}

	placements := LayoutDay(events, day, gridCfg)

	long := placementByID(t, placements, "long")
	blip := placementByID(t, placements, "blip")
	assert.Equal(t, 2, long.ColCount, "hour 9 has two events, so the long event narrows")
	assert.Equal(t, 2, blip.ColCount)
	assert.Equal(t, 0, long.Col)
	assert.Equal(t, 1, blip.Col)
}

func TestLayoutDayFilters(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "timed", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 7, 11, 0)},
		{ID: "multi", Start: date(2024, 1, 6, 0, 0), End: date(2024, 1, 8, 23, 59)},
		{ID: "other-day", Start: date(2024, 1, 8, 10, 0), End: date(2024, 1, 8, 11, 0)},
	}

	placements := LayoutDay(events, day, gridCfg)
	require.Len(t, placements, 1)
	assert.Equal(t, "timed", placements[0].Event.ID)
}

func TestLayoutDayInverted(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "bad", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 7, 9, 0)},
	}

	placements := LayoutDay(events, day, gridCfg)
	require.Len(t, placements, 1)
	assert.InDelta(t, 30, placements[0].Height, 1e-9, "inverted interval clamps to the floor")
	assert.GreaterOrEqual(t, placements[0].Height, 0.0)
}

func TestLayoutDayThroughMidnight(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "night", Start: date(2024, 1, 7, 23, 0), End: date(2024, 1, 8, 0, 0)},
	}

	placements := LayoutDay(events, day, gridCfg)
	require.Len(t, placements, 1)
	p := placements[0]
	assert.InDelta(t, 23*60, p.Top, 1e-9)
	assert.InDelta(t, 60, p.Height, 1e-9, "height runs to the end of the day")
}

func TestLayoutDayIdempotent(t *testing.T) {
	day := date(2024, 1, 7, 0, 0)
	events := []model.Event{
		{ID: "x", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 7, 10, 30)},
		{ID: "y", Start: date(2024, 1, 7, 10, 15), End: date(2024, 1, 7, 10, 45)},
		{ID: "z", Start: date(2024, 1, 7, 11, 30), End: date(2024, 1, 7, 12, 30)},
	}

	first := LayoutDay(events, day, gridCfg)
	second := LayoutDay(events, day, gridCfg)
	assert.Equal(t, first, second)
}

func TestLayoutDayEmpty(t *testing.T) {
	assert.Empty(t, LayoutDay(nil, date(2024, 1, 7, 0, 0), gridCfg))
}
