package model

import "time"

// Event is one concrete calendar entry as consumed by the layout engine:
// recurrence already expanded and times normalized into the display timezone
// by the source pipeline (internal/ics). The layout code treats events as
// immutable input.
type Event struct {
	// ID uniquely identifies a single event instance. For ICS-backed events
	// this is the VEVENT UID combined with a per-instance key; sources
	// without a UID get a generated one.
	ID string

	Title    string
	Location string

	// Display metadata carried through to placements untouched. The layout
	// engine never branches on any of these.
	Color     string
	Owner     string
	Household bool

	// AllDay marks events with no meaningful time-of-day granularity.
	AllDay bool

	// Start / End in the display timezone. End is expected to be on or after
	// Start; inverted intervals are clamped (and flagged) by the layout code
	// rather than rejected.
	Start time.Time
	End   time.Time
}

// Duration returns End - Start, which may be zero or negative for
// malformed input.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}
