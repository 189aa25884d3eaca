package layout

import (
	"sort"
	"time"

	appLog "homecal/internal/log"
	"homecal/internal/model"
)

// MultiDayPlacement positions one multi-day event within one week band.
// StartCol/EndCol are zero-based day-of-week indices clipped to the band;
// Row is the vertical stacking slot, assigned so that no two placements in
// the same row of the same band overlap.
type MultiDayPlacement struct {
	Event     model.Event
	WeekIndex int
	StartCol  int
	EndCol    int
	Row       int
}

// WeekLayout is the mapper output for one week band.
type WeekLayout struct {
	WeekIndex  int
	Placements []MultiDayPlacement
	// Rows is the number of occupied stacking rows.
	Rows int
	// Hidden counts events that overlapped this band but were dropped by
	// the row cap. A rendering-capacity decision, not a data error.
	Hidden int
}

// LayoutWeeks runs the interval-to-grid mapper over every week band of the
// visible range. Row assignment is local to each band: an event visible in
// two weeks may occupy different rows in each, since each week is an
// independent horizontal strip.
func LayoutWeeks(events []model.Event, r VisibleRange, cfg Config) []WeekLayout {
	cfg = cfg.withDefaults()

	var multi []model.Event
	for _, ev := range events {
		cl := Classify(ev)
		if !cl.MultiDay {
			continue
		}
		if cl.Inverted {
			appLog.Debug("multi-day event has inverted interval; clamping",
				"id", ev.ID, "start", ev.Start, "end", ev.End)
		}
		multi = append(multi, sanitizeInterval(ev))
	}

	weeks := r.Weeks()
	out := make([]WeekLayout, 0, len(weeks))
	for i, week := range weeks {
		out = append(out, layoutWeek(multi, week, i, cfg))
	}
	return out
}

// span is an occupied [start, end] column interval within a row.
type span struct {
	start, end int
}

func (s span) overlaps(o span) bool {
	return s.start <= o.end && s.end >= o.start
}

// layoutWeek clips the given multi-day events to one band of up to 7
// consecutive days and assigns stacking rows by greedy interval coloring.
//
// Candidates are processed in a deterministic order: start column ascending,
// wider span first, then ID. The tie-break affects visual stacking only;
// the no-overlap invariant holds for any order.
func layoutWeek(multi []model.Event, days []time.Time, weekIndex int, cfg Config) WeekLayout {
	wl := WeekLayout{WeekIndex: weekIndex}
	if len(days) == 0 {
		return wl
	}
	day0 := days[0]
	width := len(days)

	// Clip each event to the band. An event contributes a candidate when its
	// calendar-day span intersects the band's days.
	var candidates []MultiDayPlacement
	for _, ev := range multi {
		startIdx := daysBetween(day0, dateOf(ev.Start))
		endIdx := daysBetween(day0, dateOf(effectiveEnd(ev.Start, ev.End)))

		if endIdx < 0 || startIdx > width-1 {
			continue
		}
		if startIdx < 0 {
			startIdx = 0
		}
		if endIdx > width-1 {
			endIdx = width - 1
		}
		candidates = append(candidates, MultiDayPlacement{
			Event:     ev,
			WeekIndex: weekIndex,
			StartCol:  startIdx,
			EndCol:    endIdx,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.StartCol != b.StartCol {
			return a.StartCol < b.StartCol
		}
		if a.EndCol != b.EndCol {
			return a.EndCol > b.EndCol
		}
		return a.Event.ID < b.Event.ID
	})

	// Greedy row coloring: first row whose existing spans don't overlap the
	// candidate wins; otherwise open a new row, up to the cap.
	var rows [][]span
	for _, cand := range candidates {
		s := span{start: cand.StartCol, end: cand.EndCol}
		placed := false
		for rowIdx := range rows {
			free := true
			for _, occupied := range rows[rowIdx] {
				if s.overlaps(occupied) {
					free = false
					break
				}
			}
			if free {
				rows[rowIdx] = append(rows[rowIdx], s)
				cand.Row = rowIdx
				wl.Placements = append(wl.Placements, cand)
				placed = true
				break
			}
		}
		if placed {
			continue
		}
		if len(rows) >= cfg.MaxRows {
			wl.Hidden++
			continue
		}
		rows = append(rows, []span{s})
		cand.Row = len(rows) - 1
		wl.Placements = append(wl.Placements, cand)
	}

	wl.Rows = len(rows)
	return wl
}
