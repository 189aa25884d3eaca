package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"homecal/internal/model"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		event        model.Event
		wantMulti    bool
		wantDays     int
		wantInverted bool
	}{
		{
			name:      "timed single day",
			event:     model.Event{ID: "a", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 7, 11, 0)},
			wantMulti: false,
			wantDays:  1,
		},
		{
			name:      "spans three calendar days",
			event:     model.Event{ID: "b", Start: date(2024, 1, 1, 0, 0), End: date(2024, 1, 3, 23, 59)},
			wantMulti: true,
			wantDays:  3,
		},
		{
			name:      "crosses midnight by a minute",
			event:     model.Event{ID: "c", Start: date(2024, 1, 7, 23, 0), End: date(2024, 1, 8, 0, 30)},
			wantMulti: true,
			wantDays:  2,
		},
		{
			name:      "full day 00:00 to 23:59",
			event:     model.Event{ID: "d", Start: date(2024, 1, 7, 0, 0), End: date(2024, 1, 7, 23, 59)},
			wantMulti: true,
			wantDays:  1,
		},
		{
			name:      "all-day flag with end-exclusive midnight",
			event:     model.Event{ID: "e", AllDay: true, Start: date(2024, 1, 7, 0, 0), End: date(2024, 1, 8, 0, 0)},
			wantMulti: true,
			wantDays:  1,
		},
		{
			name:      "two-day all-day with end-exclusive midnight",
			event:     model.Event{ID: "f", AllDay: true, Start: date(2024, 1, 7, 0, 0), End: date(2024, 1, 9, 0, 0)},
			wantMulti: true,
			wantDays:  2,
		},
		{
			name:      "timed event ending exactly at midnight",
			event:     model.Event{ID: "g", Start: date(2024, 1, 7, 23, 0), End: date(2024, 1, 8, 0, 0)},
			wantMulti: false,
			wantDays:  1,
		},
		{
			name:      "zero duration",
			event:     model.Event{ID: "h", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 7, 10, 0)},
			wantMulti: false,
			wantDays:  1,
		},
		{
			name:         "inverted interval clamps to one day",
			event:        model.Event{ID: "i", Start: date(2024, 1, 7, 10, 0), End: date(2024, 1, 5, 10, 0)},
			wantMulti:    false,
			wantDays:     1,
			wantInverted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.event)
			assert.Equal(t, tt.wantMulti, got.MultiDay, "MultiDay")
			assert.Equal(t, tt.wantDays, got.DurationDays, "DurationDays")
			assert.Equal(t, tt.wantInverted, got.Inverted, "Inverted")
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	ev := model.Event{ID: "x", Start: date(2024, 1, 1, 0, 0), End: date(2024, 1, 3, 23, 59)}
	first := Classify(ev)
	second := Classify(ev)
	assert.Equal(t, first, second)
}
