package ics

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	appLog "homecal/internal/log"
	"homecal/internal/model"
)

const defaultMaxOccurrencesPerEvent = 5000

// ExpandConfig controls how recurrence expansion is performed.
type ExpandConfig struct {
	// DisplayLocation is the timezone every produced event is converted to.
	// If nil, time.Local is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd define the inclusive time window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerEvent is a safety cap against runaway expansions.
	// If zero, defaultMaxOccurrencesPerEvent is used.
	MaxOccurrencesPerEvent int
}

// ExpandResult wraps the expanded events and truncation information.
type ExpandResult struct {
	Events []model.Event
	// TruncatedUIDs records UIDs that hit the MaxOccurrencesPerEvent cap.
	TruncatedUIDs []string
}

// Expand takes parsed VEVENTs (from one or more sources) and expands them
// into concrete model.Event instances within the given time range. It
// handles:
//
//   - Single non-recurring events
//   - RRULE-based recurrence (DAILY/WEEKLY/MONTHLY/YEARLY, etc.)
//   - EXDATE for exception removal
//   - RECURRENCE-ID overrides
//   - All-day semantics ([date 00:00, next day 00:00))
//
// Each produced event carries the source's household display metadata
// (color, owner, household flag) untouched and is normalized into
// cfg.DisplayLocation.
func Expand(events []ParsedEvent, cfg ExpandConfig) (ExpandResult, error) {
	var result ExpandResult

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("expand: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.Local
	}
	if cfg.MaxOccurrencesPerEvent <= 0 {
		cfg.MaxOccurrencesPerEvent = defaultMaxOccurrencesPerEvent
	}

	// Group base events and overrides by UID.
	baseByUID := make(map[string][]ParsedEvent)
	overridesByUID := make(map[string][]ParsedEvent)
	for _, ev := range events {
		if ev.IsOverride && ev.Recurrence != nil {
			overridesByUID[ev.UID] = append(overridesByUID[ev.UID], ev)
		} else {
			baseByUID[ev.UID] = append(baseByUID[ev.UID], ev)
		}
	}

	out := make([]model.Event, 0)
	for uid, baseEvents := range baseByUID {
		ov := overridesByUID[uid]
		truncated := false

		for _, ev := range baseEvents {
			expanded, hitCap := expandEvent(ev, ov, cfg)
			if hitCap {
				truncated = true
			}
			out = append(out, expanded...)
		}

		if truncated {
			result.TruncatedUIDs = append(result.TruncatedUIDs, uid)
			appLog.Error("expand: truncated occurrences for UID due to cap",
				errors.New("max occurrences reached"),
				"uid", uid,
				"cap", cfg.MaxOccurrencesPerEvent,
			)
		}
	}

	result.Events = out
	return result, nil
}

// expandEvent expands a single base event with its possible overrides,
// returning events and whether the cap was hit.
func expandEvent(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	if ev.RawRRule == "" {
		return expandSingle(ev, overrides, cfg), false
	}
	return expandRecurring(ev, overrides, cfg)
}

func expandSingle(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) []model.Event {
	if !rangesOverlap(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}

	start, end := ev.Start, ev.End
	if o, ok := overrideForStart(overrides, start); ok {
		start, end = o.Start, o.End
		ev = o
	}
	return []model.Event{makeEvent(ev, start, end, cfg.DisplayLocation)}
}

func expandRecurring(ev ParsedEvent, overrides []ParsedEvent, cfg ExpandConfig) ([]model.Event, bool) {
	out := make([]model.Event, 0)

	r, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		appLog.Error("expand: failed to parse RRULE", err, "uid", ev.UID, "rrule", ev.RawRRule)
		return out, false
	}
	r.DTStart(ev.Start)

	// Build a set so EXDATEs can be applied.
	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		// Best effort: align EXDATE location with the event's start.
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Evaluate Between() in the event's original location.
	rangeStart := cfg.RangeStart.In(ev.Start.Location())
	rangeEnd := cfg.RangeEnd.In(ev.Start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)

	hitCap := false
	if len(occTimes) > cfg.MaxOccurrencesPerEvent {
		occTimes = occTimes[:cfg.MaxOccurrencesPerEvent]
		hitCap = true
	}

	for _, occStart := range occTimes {
		var occEnd time.Time
		if ev.AllDay {
			date := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = date
			occEnd = date.Add(24 * time.Hour)
		} else {
			// Preserve the original duration.
			occEnd = occStart.Add(ev.End.Sub(ev.Start))
		}

		base := ev
		start, end := occStart, occEnd
		if o, ok := overrideForStart(overrides, occStart); ok {
			start, end = o.Start, o.End
			base = o
		}
		out = append(out, makeEvent(base, start, end, cfg.DisplayLocation))
	}

	return out, hitCap
}

// overrideForStart finds an override whose RECURRENCE-ID matches baseStart
// with exact time equality.
func overrideForStart(overrides []ParsedEvent, baseStart time.Time) (ParsedEvent, bool) {
	for _, ov := range overrides {
		if ov.Recurrence == nil {
			continue
		}
		if ov.Recurrence.In(baseStart.Location()).Equal(baseStart) {
			return ov, true
		}
	}
	return ParsedEvent{}, false
}

// makeEvent converts a (possibly overridden) ParsedEvent plus a concrete
// start/end into a model.Event normalized into displayLoc, carrying the
// source's display metadata.
func makeEvent(ev ParsedEvent, start, end time.Time, displayLoc *time.Location) model.Event {
	startLocal := start.In(displayLoc)
	endLocal := end.In(displayLoc)

	return model.Event{
		// Stable per-instance key: UID plus local start time.
		ID:        ev.UID + "/" + startLocal.Format(time.RFC3339Nano),
		Title:     ev.Summary,
		Location:  ev.Location,
		Color:     ev.Source.Color,
		Owner:     ev.Source.Owner,
		Household: ev.Source.Household,
		AllDay:    ev.AllDay,
		Start:     startLocal,
		End:       endLocal,
	}
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
