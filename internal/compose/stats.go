package compose

import (
	"math"

	"plannercal/internal/layout"
	"plannercal/internal/model"
)

// DayStats summarizes one day for the statistics strip. Cancelled events
// count toward the appointment total but not toward scheduled time; only
// scheduled and confirmed events consume the day window. All-day entries
// count as appointments but never consume window time.
type DayStats struct {
	Appointments    int
	ScheduledHours  float64
	AvailableHours  float64
	FreeTimePercent int
}

func roundTenth(h float64) float64 {
	return math.Round(h*10) / 10
}

// ComputeDayStats derives the statistics for one day against the
// configured timed window. Only the timed events consume the window;
// the all-day band only adds to the appointment count.
func ComputeDayStats(timed, allDay []model.CalendarEvent, slots layout.SlotIndex) DayStats {
	windowMinutes := float64(slots.WindowMinutes())

	var scheduledMinutes float64
	for _, ev := range timed {
		if ev.Status.Cancelled() {
			continue
		}
		scheduledMinutes += ev.Duration().Minutes()
	}

	availableMinutes := windowMinutes - scheduledMinutes
	if availableMinutes < 0 {
		availableMinutes = 0
	}

	pct := 0
	if windowMinutes > 0 {
		pct = int(math.Round(100 * availableMinutes / windowMinutes))
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return DayStats{
		Appointments:    len(timed) + len(allDay),
		ScheduledHours:  roundTenth(scheduledMinutes / 60),
		AvailableHours:  roundTenth(availableMinutes / 60),
		FreeTimePercent: pct,
	}
}
