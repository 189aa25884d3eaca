package layout

import (
	"time"

	appLog "homecal/internal/log"
	"homecal/internal/model"
)

// TimedPlacement positions one timed event inside a single day's hour grid.
// Top and Height are pixel offsets derived from time of day and HourUnit;
// Col/ColCount describe the horizontal slot among concurrently running
// events (equal-width columns, width = 100% / ColCount).
type TimedPlacement struct {
	Event    model.Event
	Top      float64
	Height   float64
	Col      int
	ColCount int
}

// LayoutDay positions the timed events of the calendar day containing day.
//
// Vertical: Top = clock time * HourUnit, Height = duration * HourUnit with a
// MinHeight floor so short or zero-duration events stay visible. Inverted
// intervals clamp to the floor; heights are never negative.
//
// Horizontal: events are grouped by the hour buckets they touch (start hour
// through the last hour containing the event; an event ending exactly on the
// hour does not touch the bucket it ends on). Events sharing a bucket split
// its width evenly. ColCount is the maximum concurrency over an event's
// buckets, so an event spanning hours with different concurrency keeps a
// single width; that width can differ between neighbors that never share an
// exact interval. This per-hour packing is deliberately coarser than the
// interval coloring used for multi-day rows.
func LayoutDay(events []model.Event, day time.Time, cfg Config) []TimedPlacement {
	cfg = cfg.withDefaults()

	dayStart := dateOf(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var timed []model.Event
	for _, ev := range events {
		cl := Classify(ev)
		if cl.MultiDay {
			continue
		}
		if cl.Inverted {
			appLog.Debug("timed event has inverted interval; clamping",
				"id", ev.ID, "start", ev.Start, "end", ev.End)
		}
		ev = sanitizeInterval(ev)
		end := effectiveEnd(ev.Start, ev.End)
		if ev.Start.Before(dayEnd) && !end.Before(dayStart) {
			timed = append(timed, ev)
		}
	}
	if len(timed) == 0 {
		return nil
	}
	sortEvents(timed)

	placements := make([]TimedPlacement, 0, len(timed))
	buckets := make([][2]int, len(timed)) // [firstHour, lastHour] per event
	colsByBucket := make(map[int]map[int]bool)

	for i, ev := range timed {
		startFrac := float64(ev.Start.Hour()) + float64(ev.Start.Minute())/60
		endFrac := endOfDayFraction(ev, dayEnd)
		if endFrac < startFrac {
			endFrac = startFrac
		}

		height := (endFrac - startFrac) * cfg.HourUnit
		if height < cfg.MinHeight {
			height = cfg.MinHeight
		}

		first, last := hourBuckets(ev, startFrac, endFrac)
		buckets[i] = [2]int{first, last}

		// First free column across every bucket the event touches.
		col := 0
		for {
			free := true
			for h := first; h <= last; h++ {
				if colsByBucket[h][col] {
					free = false
					break
				}
			}
			if free {
				break
			}
			col++
		}
		for h := first; h <= last; h++ {
			if colsByBucket[h] == nil {
				colsByBucket[h] = make(map[int]bool)
			}
			colsByBucket[h][col] = true
		}

		placements = append(placements, TimedPlacement{
			Event:  ev,
			Top:    startFrac * cfg.HourUnit,
			Height: height,
			Col:    col,
		})
	}

	// ColCount per event = max occupancy over its buckets, recomputed after
	// every event has claimed its columns.
	occupancy := make(map[int]int, len(colsByBucket))
	for h, cols := range colsByBucket {
		for col := range cols {
			if col+1 > occupancy[h] {
				occupancy[h] = col + 1
			}
		}
	}
	for i := range placements {
		count := 1
		for h := buckets[i][0]; h <= buckets[i][1]; h++ {
			if occupancy[h] > count {
				count = occupancy[h]
			}
		}
		placements[i].ColCount = count
	}

	return placements
}

// endOfDayFraction returns the event's end as fractional hours within the
// day, clamped to 24 for events running through midnight.
func endOfDayFraction(ev model.Event, dayEnd time.Time) float64 {
	if !ev.End.Before(dayEnd) {
		return 24
	}
	return float64(ev.End.Hour()) + float64(ev.End.Minute())/60
}

// hourBuckets returns the inclusive range of hour buckets the event touches.
func hourBuckets(ev model.Event, startFrac, endFrac float64) (first, last int) {
	first = int(startFrac)
	if first > 23 {
		first = 23
	}

	end := effectiveEnd(ev.Start, ev.End)
	last = end.Hour()
	if endFrac >= 24 {
		last = 23
	} else if end.Minute() == 0 && end.Second() == 0 && end.Nanosecond() == 0 && last > first {
		// Ends exactly on the hour: the final bucket is not touched.
		last--
	}
	if last < first {
		last = first
	}
	return first, last
}
