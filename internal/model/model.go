package model

import "time"

// SourceCategory classifies where an event came from. It drives styling and
// legend grouping only; layout treats all categories the same.
type SourceCategory string

const (
	SourceExternalCalendar   SourceCategory = "external-calendar"
	SourcePracticeManagement SourceCategory = "practice-management"
	SourceHoliday            SourceCategory = "holiday"
	SourceManual             SourceCategory = "manual"
)

// Status is the scheduling state of an event.
type Status string

const (
	StatusScheduled           Status = "scheduled"
	StatusConfirmed           Status = "confirmed"
	StatusCancelledByProvider Status = "cancelled-by-provider"
	StatusCancelledByClient   Status = "cancelled-by-client"
)

// Cancelled reports whether the status is a cancellation of either kind.
func (s Status) Cancelled() bool {
	return s == StatusCancelledByProvider || s == StatusCancelledByClient
}

// CalendarEvent is a single normalized event as supplied for one render
// pass. The layout and render code never mutates it; a new pass gets a new
// snapshot.
type CalendarEvent struct {
	// ID is unique within the supplied date range.
	ID string

	Title    string
	Location string

	// Start / End are timezone-normalized by the supplier. Start < End is
	// required for timed layout; violations are dropped with a warning.
	Start time.Time
	End   time.Time

	// SourceID identifies the feed or origin the event was loaded from
	// (e.g. a config ICS id). Used by classification allow-lists.
	SourceID string

	SourceCategory SourceCategory
	Status         Status

	// AllDay marks events that render in the all-day band instead of the
	// timed grid.
	AllDay bool

	Notes       []string
	ActionItems []string
}

// Duration returns End-Start, or zero for inverted intervals.
func (e CalendarEvent) Duration() time.Duration {
	d := e.End.Sub(e.Start)
	if d < 0 {
		return 0
	}
	return d
}

// Warning records a non-fatal problem encountered during a render pass,
// typically an event that was dropped or moved to the all-day band.
type Warning struct {
	EventID string
	Reason  string
}
