package layout

import (
	"time"

	"plannercal/internal/model"
)

// allDayThreshold is the duration at or above which a timed event is
// treated as all-day regardless of its clock times.
const allDayThreshold = 20 * time.Hour

// GridPosition is the target-independent geometry of one event box.
// Both render adapters consume this and nothing else, which is what makes
// the screen and PDF outputs agree.
type GridPosition struct {
	// RowStart / RowEnd are slot indices, half-open, RowEnd > RowStart.
	RowStart int
	RowEnd   int

	// FracLeft / FracWidth position the box horizontally inside the day
	// column, both in [0,1].
	FracLeft  float64
	FracWidth float64

	// ZOrder stacks later columns above earlier ones.
	ZOrder int
}

// PositionedEvent pairs an event with its resolved grid geometry.
type PositionedEvent struct {
	Event model.CalendarEvent
	Pos   GridPosition
}

// DayLayout is the complete layout for one day: timed grid placements,
// the all-day band, and any warnings collected on the way. It is a plain
// value; recomputing it for the same input yields an identical result.
type DayLayout struct {
	Slots    SlotIndex
	Timed    []PositionedEvent
	AllDay   []model.CalendarEvent
	Warnings []model.Warning
}

// Position combines a slot range and an overlap assignment into absolute
// grid geometry. gutterFraction shrinks each lane slightly so adjacent
// concurrent events stay visually separated.
func Position(rowStart, rowEnd, columnIndex, columnCount int, gutterFraction float64) GridPosition {
	if columnCount < 1 {
		columnCount = 1
	}
	return GridPosition{
		RowStart:  rowStart,
		RowEnd:    rowEnd,
		FracLeft:  float64(columnIndex) / float64(columnCount),
		FracWidth: (1 - gutterFraction) / float64(columnCount),
		ZOrder:    columnIndex,
	}
}

// isAllDay routes an event to the all-day band: explicitly flagged,
// spanning at least allDayThreshold, or starting outside the timed window.
func isAllDay(ev model.CalendarEvent, slots SlotIndex) bool {
	if ev.AllDay {
		return true
	}
	if ev.Duration() >= allDayThreshold {
		return true
	}
	if _, ok := slots.SlotForTime(ev.Start); !ok {
		return true
	}
	return false
}

// ComputeDayLayout runs the full layout pipeline for one day's events:
// all-day routing, overlap resolution, and grid positioning. The input is
// never mutated and no state outlives the call.
func ComputeDayLayout(events []model.CalendarEvent, slots SlotIndex, gutterFraction float64) DayLayout {
	out := DayLayout{Slots: slots}

	timed := make([]model.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if reason, bad := malformed(ev); bad {
			out.Warnings = append(out.Warnings, model.Warning{EventID: ev.ID, Reason: reason})
			continue
		}
		if isAllDay(ev, slots) {
			out.AllDay = append(out.AllDay, ev)
			continue
		}
		timed = append(timed, ev)
	}

	res := Resolve(timed)
	out.Warnings = append(out.Warnings, res.Warnings...)

	for _, g := range res.Groups {
		for _, a := range g.Assignments {
			// All-day routing already excluded outside-window starts, so
			// the range is always resolvable here.
			rowStart, rowEnd, _ := slots.SlotRange(a.Event.Start, a.Event.End)
			out.Timed = append(out.Timed, PositionedEvent{
				Event: a.Event,
				Pos:   Position(rowStart, rowEnd, a.ColumnIndex, g.ColumnCount, gutterFraction),
			})
		}
	}

	return out
}
