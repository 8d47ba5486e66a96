package layout

import (
	"fmt"
	"time"
)

// Default day window: slots labeled 06:00 through 23:30, 30 minutes each.
// The last label marks the start of the final slot, so the timed window
// covers 06:00-24:00 (36 slots, 18 hours).
const (
	DefaultWindowStartMinute = 6 * 60
	DefaultWindowEndMinute   = 23*60 + 30
	DefaultSlotMinutes       = 30
)

// SlotIndex defines the fixed partition of a day into contiguous, gapless
// slots and converts wall-clock times to slot coordinates. It is immutable
// and safe to share between render passes.
type SlotIndex struct {
	startMinute int // minutes since midnight of slot 0
	lastMinute  int // minutes since midnight of the final slot's start
	slotMinutes int
}

// NewSlotIndex builds a SlotIndex for a window whose first slot starts at
// startMinute and whose last slot starts at endMinute (both minutes since
// midnight). The window must be slot-aligned.
func NewSlotIndex(startMinute, endMinute, slotMinutes int) (SlotIndex, error) {
	if slotMinutes <= 0 {
		return SlotIndex{}, fmt.Errorf("layout: slot duration must be positive, got %d", slotMinutes)
	}
	if endMinute < startMinute {
		return SlotIndex{}, fmt.Errorf("layout: window end %d before start %d", endMinute, startMinute)
	}
	if (endMinute-startMinute)%slotMinutes != 0 {
		return SlotIndex{}, fmt.Errorf("layout: window %d-%d not aligned to %d-minute slots", startMinute, endMinute, slotMinutes)
	}
	return SlotIndex{
		startMinute: startMinute,
		lastMinute:  endMinute,
		slotMinutes: slotMinutes,
	}, nil
}

// DefaultSlotIndex returns the 06:00-23:30 / 30-minute partition.
func DefaultSlotIndex() SlotIndex {
	idx, _ := NewSlotIndex(DefaultWindowStartMinute, DefaultWindowEndMinute, DefaultSlotMinutes)
	return idx
}

// TotalSlots returns the number of slots in the day partition.
func (x SlotIndex) TotalSlots() int {
	return (x.lastMinute-x.startMinute)/x.slotMinutes + 1
}

// SlotMinutes returns the fixed duration of one slot.
func (x SlotIndex) SlotMinutes() int {
	return x.slotMinutes
}

// WindowMinutes returns the total minutes covered by the timed grid.
func (x SlotIndex) WindowMinutes() int {
	return x.TotalSlots() * x.slotMinutes
}

// WindowStartMinute returns the start of slot 0 in minutes since midnight.
func (x SlotIndex) WindowStartMinute() int {
	return x.startMinute
}

// SlotStartMinute returns the wall-clock start of slot i in minutes since
// midnight.
func (x SlotIndex) SlotStartMinute(i int) int {
	return x.startMinute + i*x.slotMinutes
}

// Label formats slot i's start as "HH:MM".
func (x SlotIndex) Label(i int) string {
	m := x.SlotStartMinute(i)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// TopOfHour reports whether slot i starts on a full hour. Top-of-hour rows
// get the shaded background in both render targets.
func (x SlotIndex) TopOfHour(i int) bool {
	return x.SlotStartMinute(i)%60 == 0
}

// minuteOfDay ignores the date part; the supplier has already normalized
// all events into the display timezone.
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SlotForTime maps a wall-clock time to the slot whose interval contains
// it. ok is false when the time falls outside the day window.
func (x SlotIndex) SlotForTime(t time.Time) (slot int, ok bool) {
	m := minuteOfDay(t)
	if m < x.startMinute || m >= x.lastMinute+x.slotMinutes {
		return 0, false
	}
	return (m - x.startMinute) / x.slotMinutes, true
}

// SlotRange maps an event's start and end to a half-open row range
// [rowStart, rowEnd). Duration is rounded up to the next slot boundary, so
// a 20-minute event spans one full slot and a 65-minute event spans three.
// A zero-duration event gets the minimum one slot.
//
// ok is false when the start lies outside the day window; such events
// belong in the all-day band, not the timed grid. Ends past the window are
// clamped to the last slot.
func (x SlotIndex) SlotRange(start, end time.Time) (rowStart, rowEnd int, ok bool) {
	rowStart, ok = x.SlotForTime(start)
	if !ok {
		return 0, 0, false
	}

	total := x.TotalSlots()
	if !end.After(start) {
		// Minimum duration: never zero-height.
		rowEnd = rowStart + 1
	} else {
		// Duration-based so events crossing midnight clamp instead of
		// wrapping.
		startRel := minuteOfDay(start) - x.startMinute
		durMin := int(end.Sub(start) / time.Minute)
		if end.Sub(start)%time.Minute != 0 {
			durMin++
		}
		rowEnd = (startRel + durMin + x.slotMinutes - 1) / x.slotMinutes
		if rowEnd <= rowStart {
			rowEnd = rowStart + 1
		}
	}
	if rowEnd > total {
		rowEnd = total
	}
	return rowStart, rowEnd, true
}
