package ics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plannercal/internal/model"
)

func expandWindow() (time.Time, time.Time) {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
}

func parsedEvent(uid string, start time.Time, dur time.Duration) ParsedEvent {
	return ParsedEvent{
		Source:  Source{ID: "src"},
		UID:     uid,
		Summary: uid,
		Start:   start,
		End:     start.Add(dur),
		Status:  model.StatusScheduled,
	}
}

func TestExpandEvents_RejectsInvertedRange(t *testing.T) {
	start, end := expandWindow()
	_, err := ExpandEvents(nil, ExpandConfig{RangeStart: end, RangeEnd: start})
	assert.Error(t, err)
}

func TestExpandEvents_SingleEventPassesThrough(t *testing.T) {
	start, end := expandWindow()
	ev := parsedEvent("single", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), time.Hour)

	res, err := ExpandEvents([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)

	got := res.Events[0]
	assert.Equal(t, "single/2026-03-02T09:00:00Z", got.ID)
	assert.Equal(t, "src", got.SourceID)
	assert.Equal(t, ev.Start, got.Start)
}

func TestExpandEvents_OutOfRangeDropped(t *testing.T) {
	start, end := expandWindow()
	ev := parsedEvent("old", time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), time.Hour)

	res, err := ExpandEvents([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Events)
}

func TestExpandEvents_WeeklyRecurrence(t *testing.T) {
	start, end := expandWindow()
	ev := parsedEvent("weekly", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), time.Hour)
	ev.RawRRule = "FREQ=WEEKLY;COUNT=4"

	res, err := ExpandEvents([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 4)

	// Mondays Mar 2, 9, 16, 23, each preserving the one-hour duration.
	for i, got := range res.Events {
		want := time.Date(2026, 3, 2+7*i, 9, 0, 0, 0, time.UTC)
		assert.Equal(t, want, got.Start, "occurrence %d", i)
		assert.Equal(t, time.Hour, got.End.Sub(got.Start))
	}

	// Instance IDs stay distinct.
	assert.NotEqual(t, res.Events[0].ID, res.Events[1].ID)
}

func TestExpandEvents_ExDateRemovesInstance(t *testing.T) {
	start, end := expandWindow()
	ev := parsedEvent("weekly", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), time.Hour)
	ev.RawRRule = "FREQ=WEEKLY;COUNT=4"
	ev.ExDates = []time.Time{time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)}

	res, err := ExpandEvents([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 3)
	for _, got := range res.Events {
		assert.NotEqual(t, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), got.Start)
	}
}

func TestExpandEvents_OverrideReplacesInstance(t *testing.T) {
	start, end := expandWindow()
	base := parsedEvent("weekly", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), time.Hour)
	base.RawRRule = "FREQ=WEEKLY;COUNT=2"

	rid := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	override := parsedEvent("weekly", time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC), 30*time.Minute)
	override.Summary = "Moved session"
	override.Recurrence = &rid
	override.IsOverride = true

	res, err := ExpandEvents([]ParsedEvent{base, override}, ExpandConfig{
		DisplayLocation: time.UTC,
		RangeStart:      start,
		RangeEnd:        end,
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 2)

	var moved *model.CalendarEvent
	for i := range res.Events {
		if res.Events[i].Title == "Moved session" {
			moved = &res.Events[i]
		}
	}
	require.NotNil(t, moved)
	assert.Equal(t, time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC), moved.Start)
	assert.Equal(t, 30*time.Minute, moved.End.Sub(moved.Start))
}

func TestExpandEvents_OccurrenceCap(t *testing.T) {
	start, end := expandWindow()
	ev := parsedEvent("daily", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), time.Hour)
	ev.RawRRule = "FREQ=DAILY"

	res, err := ExpandEvents([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation:        time.UTC,
		RangeStart:             start,
		RangeEnd:               end,
		MaxOccurrencesPerEvent: 5,
	})
	require.NoError(t, err)
	assert.Len(t, res.Events, 5)
	assert.Equal(t, []string{"daily"}, res.TruncatedUIDs)
}

func TestExpandEvents_OutputOrderIsStable(t *testing.T) {
	start, end := expandWindow()
	at := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	events := []ParsedEvent{
		parsedEvent("uid-7", at, time.Hour),
		parsedEvent("uid-2", at, time.Hour),
		parsedEvent("uid-5", at, time.Hour),
		parsedEvent("uid-0", at, time.Hour),
		parsedEvent("uid-9", at, time.Hour),
		parsedEvent("uid-3", at, time.Hour),
		parsedEvent("uid-8", at, time.Hour),
		parsedEvent("uid-1", at, time.Hour),
		parsedEvent("early", at.Add(-2*time.Hour), time.Hour),
	}
	cfg := ExpandConfig{DisplayLocation: time.UTC, RangeStart: start, RangeEnd: end}

	var first []string
	for run := 0; run < 50; run++ {
		res, err := ExpandEvents(events, cfg)
		require.NoError(t, err)
		require.Len(t, res.Events, len(events))

		ids := make([]string, len(res.Events))
		for i, got := range res.Events {
			ids[i] = got.ID
		}
		if run == 0 {
			first = ids
			// The earlier start comes first, same-start ties break by ID.
			assert.Equal(t, "early/2026-03-02T07:00:00Z", ids[0])
			assert.Equal(t, "uid-0/2026-03-02T09:00:00Z", ids[1])
			assert.Equal(t, "uid-9/2026-03-02T09:00:00Z", ids[len(ids)-1])
			continue
		}
		require.Equal(t, first, ids, "run %d reordered", run)
	}
}

func TestExpandEvents_NormalizesToDisplayTimezone(t *testing.T) {
	start, end := expandWindow()
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ev := parsedEvent("tz", time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC), time.Hour)

	res, err := ExpandEvents([]ParsedEvent{ev}, ExpandConfig{
		DisplayLocation: ny,
		RangeStart:      start,
		RangeEnd:        end,
	})
	require.NoError(t, err)
	require.Len(t, res.Events, 1)

	got := res.Events[0]
	assert.Equal(t, ny, got.Start.Location())
	// 14:00 UTC is 09:00 in New York before the DST switch.
	assert.Equal(t, 9, got.Start.Hour())
}
