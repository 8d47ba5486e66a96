package compose

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"plannercal/internal/layout"
	"plannercal/internal/model"
)

func statsEvent(id string, start time.Time, dur time.Duration, status model.Status) model.CalendarEvent {
	return model.CalendarEvent{
		ID:     id,
		Start:  start,
		End:    start.Add(dur),
		Status: status,
	}
}

func TestComputeDayStats_Empty(t *testing.T) {
	got := ComputeDayStats(nil, nil, layout.DefaultSlotIndex())

	assert.Equal(t, 0, got.Appointments)
	assert.Equal(t, 0.0, got.ScheduledHours)
	assert.Equal(t, 18.0, got.AvailableHours)
	assert.Equal(t, 100, got.FreeTimePercent)
}

func TestComputeDayStats_CancelledCountedButNotScheduled(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	events := []model.CalendarEvent{
		statsEvent("a", day, time.Hour, model.StatusConfirmed),
		statsEvent("b", day.Add(2*time.Hour), time.Hour, model.StatusCancelledByClient),
		statsEvent("c", day.Add(4*time.Hour), time.Hour, model.StatusCancelledByProvider),
	}

	got := ComputeDayStats(events, nil, layout.DefaultSlotIndex())

	assert.Equal(t, 3, got.Appointments)
	assert.Equal(t, 1.0, got.ScheduledHours)
	assert.Equal(t, 17.0, got.AvailableHours)
	// 17/18 rounds to 94%.
	assert.Equal(t, 94, got.FreeTimePercent)
}

func TestComputeDayStats_HoursRoundedToTenth(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	events := []model.CalendarEvent{
		statsEvent("a", day, 50*time.Minute, model.StatusScheduled),
	}

	got := ComputeDayStats(events, nil, layout.DefaultSlotIndex())

	// 50 minutes is 0.8333h, rounded to 0.8.
	assert.Equal(t, 0.8, got.ScheduledHours)
	assert.Equal(t, 17.2, got.AvailableHours)
}

func TestComputeDayStats_OverbookedClampsToZero(t *testing.T) {
	day := time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)
	events := []model.CalendarEvent{
		statsEvent("a", day, 12*time.Hour, model.StatusScheduled),
		statsEvent("b", day, 12*time.Hour, model.StatusScheduled),
	}

	got := ComputeDayStats(events, nil, layout.DefaultSlotIndex())

	assert.Equal(t, 24.0, got.ScheduledHours)
	assert.Equal(t, 0.0, got.AvailableHours)
	assert.Equal(t, 0, got.FreeTimePercent)
}

func TestComputeDayStats_AllDayDoesNotConsumeWindow(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	allDay := []model.CalendarEvent{
		statsEvent("holiday", day, 24*time.Hour, model.StatusScheduled),
	}

	got := ComputeDayStats(nil, allDay, layout.DefaultSlotIndex())

	assert.Equal(t, 1, got.Appointments)
	assert.Equal(t, 0.0, got.ScheduledHours)
	assert.Equal(t, 18.0, got.AvailableHours)
	assert.Equal(t, 100, got.FreeTimePercent)
}

func TestComputeDayStats_TimedPlusAllDay(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	timed := []model.CalendarEvent{
		statsEvent("a", day, time.Hour, model.StatusConfirmed),
	}
	allDay := []model.CalendarEvent{
		statsEvent("holiday", day.Truncate(24*time.Hour), 24*time.Hour, model.StatusScheduled),
	}

	got := ComputeDayStats(timed, allDay, layout.DefaultSlotIndex())

	assert.Equal(t, 2, got.Appointments)
	assert.Equal(t, 1.0, got.ScheduledHours)
	assert.Equal(t, 17.0, got.AvailableHours)
	assert.Equal(t, 94, got.FreeTimePercent)
}
