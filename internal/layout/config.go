// Package layout computes render-ready placement descriptors for calendar
// views: which day cells an event touches, how multi-day bars stack into
// rows across a week band, and where timed events sit inside an hour grid.
//
// Everything here is a pure function of (events, visible range, config).
// Placements are recomputed fully on every call; there is no cached state,
// so callers may invoke on every render without stale-placement leakage.
package layout

import "time"

// Config controls grid geometry and stacking limits. The zero value is
// usable: missing fields fall back to the defaults below.
type Config struct {
	// HourUnit is the rendered height of one hour in pixels.
	HourUnit float64
	// MinHeight is the minimum rendered height of a timed event in pixels.
	MinHeight float64
	// MaxRows caps stacked multi-day rows per week band; events beyond the
	// cap are dropped from rendering and surfaced via WeekLayout.Hidden.
	MaxRows int
	// WeekStart is the first day of the week for week/month ranges.
	WeekStart time.Weekday
}

const (
	defaultHourUnit  = 64.0
	defaultMinHeight = 32.0
	defaultMaxRows   = 10
)

func (c Config) withDefaults() Config {
	if c.HourUnit <= 0 {
		c.HourUnit = defaultHourUnit
	}
	if c.MinHeight <= 0 {
		c.MinHeight = defaultMinHeight
	}
	if c.MaxRows <= 0 {
		c.MaxRows = defaultMaxRows
	}
	return c
}
