package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ICS payloads require CRLF line endings.
func icsBody(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

func TestParseICSTimedEvent(t *testing.T) {
	body := icsBody(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
		"BEGIN:VEVENT",
		"UID:evt-100",
		"SUMMARY:Piano lesson",
		"LOCATION:Music school",
		"DTSTART:20240108T160000Z",
		"DTEND:20240108T170000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := ParseICS(testSource, body)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "evt-100", ev.UID)
	assert.Equal(t, "Piano lesson", ev.Summary)
	assert.Equal(t, "Music school", ev.Location)
	assert.False(t, ev.AllDay)
	assert.True(t, ev.Start.Equal(time.Date(2024, 1, 8, 16, 0, 0, 0, time.UTC)))
	assert.True(t, ev.End.Equal(time.Date(2024, 1, 8, 17, 0, 0, 0, time.UTC)))
	assert.Equal(t, testSource, ev.Source)
}

func TestParseICSAllDay(t *testing.T) {
	body := icsBody(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
		"BEGIN:VEVENT",
		"UID:evt-101",
		"SUMMARY:Recycling day",
		"DTSTART;VALUE=DATE:20240108",
		"DTEND;VALUE=DATE:20240109",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := ParseICS(testSource, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].AllDay)
}

func TestParseICSMissingUIDGetsGenerated(t *testing.T) {
	body := icsBody(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
		"BEGIN:VEVENT",
		"SUMMARY:No UID here",
		"DTSTART:20240108T160000Z",
		"DTEND:20240108T170000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := ParseICS(testSource, body)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.NotEmpty(t, events[0].UID)
}

func TestParseICSRecurrence(t *testing.T) {
	body := icsBody(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
		"BEGIN:VEVENT",
		"UID:evt-102",
		"SUMMARY:Weekly practice",
		"DTSTART:20240108T160000Z",
		"DTEND:20240108T170000Z",
		"RRULE:FREQ=WEEKLY;COUNT=4",
		"EXDATE:20240115T160000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:evt-102",
		"SUMMARY:Weekly practice (moved)",
		"DTSTART:20240122T180000Z",
		"DTEND:20240122T190000Z",
		"RECURRENCE-ID:20240122T160000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)

	events, err := ParseICS(testSource, body)
	require.NoError(t, err)
	require.Len(t, events, 2)

	base := events[0]
	assert.Equal(t, "FREQ=WEEKLY;COUNT=4", base.RawRRule)
	require.Len(t, base.ExDates, 1)
	assert.True(t, base.ExDates[0].Equal(time.Date(2024, 1, 15, 16, 0, 0, 0, time.UTC)))

	override := events[1]
	assert.True(t, override.IsOverride)
	require.NotNil(t, override.Recurrence)
	assert.True(t, override.Recurrence.Equal(time.Date(2024, 1, 22, 16, 0, 0, 0, time.UTC)))
}

func TestParseICSEmptyBody(t *testing.T) {
	_, err := ParseICS(testSource, nil)
	assert.Error(t, err)
}

func TestParseICSTimeFormats(t *testing.T) {
	utc, err := parseICSTime("20240108T160000Z")
	require.NoError(t, err)
	assert.True(t, utc.Equal(time.Date(2024, 1, 8, 16, 0, 0, 0, time.UTC)))

	floating, err := parseICSTime("20240108T160000")
	require.NoError(t, err)
	assert.Equal(t, 16, floating.Hour())

	dateOnly, err := parseICSTime("20240108")
	require.NoError(t, err)
	assert.Equal(t, 0, dateOnly.Hour())

	_, err = parseICSTime("")
	assert.Error(t, err)
}
