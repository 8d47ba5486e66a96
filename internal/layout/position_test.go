package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plannercal/internal/model"
)

func TestPosition_SingleColumnFillsLane(t *testing.T) {
	pos := Position(6, 8, 0, 1, 0.05)

	assert.Equal(t, 6, pos.RowStart)
	assert.Equal(t, 8, pos.RowEnd)
	assert.Equal(t, 0.0, pos.FracLeft)
	assert.InDelta(t, 0.95, pos.FracWidth, 1e-9)
	assert.Equal(t, 0, pos.ZOrder)
}

func TestPosition_ColumnsSplitEvenly(t *testing.T) {
	left := Position(0, 1, 0, 2, 0.05)
	right := Position(0, 1, 1, 2, 0.05)

	assert.Equal(t, 0.0, left.FracLeft)
	assert.InDelta(t, 0.5, right.FracLeft, 1e-9)
	assert.InDelta(t, 0.475, left.FracWidth, 1e-9)
	assert.Equal(t, left.FracWidth, right.FracWidth)
	assert.Equal(t, 1, right.ZOrder)
}

func TestComputeDayLayout_RoutesAllDayEvents(t *testing.T) {
	slots := DefaultSlotIndex()

	flagged := model.CalendarEvent{
		ID: "flagged", AllDay: true,
		Start: dayTime(0, 0), End: dayTime(0, 0).Add(24 * time.Hour),
	}
	long := model.CalendarEvent{
		ID:    "long",
		Start: dayTime(1, 0), End: dayTime(1, 0).Add(21 * time.Hour),
	}
	early := model.CalendarEvent{
		ID:    "early",
		Start: dayTime(4, 30), End: dayTime(5, 30),
	}
	timed := timedEvent("timed", 9, 0, 10, 0)

	dl := ComputeDayLayout([]model.CalendarEvent{flagged, long, early, timed}, slots, 0.05)

	require.Len(t, dl.AllDay, 3)
	require.Len(t, dl.Timed, 1)
	assert.Equal(t, "timed", dl.Timed[0].Event.ID)
	assert.Empty(t, dl.Warnings)
}

func TestComputeDayLayout_MalformedCollectedNotRendered(t *testing.T) {
	slots := DefaultSlotIndex()

	dl := ComputeDayLayout([]model.CalendarEvent{
		timedEvent("ok", 9, 0, 10, 0),
		timedEvent("bad", 11, 0, 9, 0),
	}, slots, 0.05)

	require.Len(t, dl.Timed, 1)
	require.Len(t, dl.Warnings, 1)
	assert.Equal(t, "bad", dl.Warnings[0].EventID)
}

func TestComputeDayLayout_OverlappingPairSharesRowRange(t *testing.T) {
	slots := DefaultSlotIndex()

	dl := ComputeDayLayout([]model.CalendarEvent{
		timedEvent("a", 9, 0, 10, 0),
		timedEvent("b", 9, 0, 10, 0),
	}, slots, 0.05)

	require.Len(t, dl.Timed, 2)
	for _, pe := range dl.Timed {
		assert.Equal(t, 6, pe.Pos.RowStart)
		assert.Equal(t, 8, pe.Pos.RowEnd)
		assert.InDelta(t, 0.475, pe.Pos.FracWidth, 1e-9)
	}
	assert.NotEqual(t, dl.Timed[0].Pos.FracLeft, dl.Timed[1].Pos.FracLeft)
}

func TestComputeDayLayout_Deterministic(t *testing.T) {
	slots := DefaultSlotIndex()
	events := []model.CalendarEvent{
		timedEvent("a", 9, 0, 10, 30),
		timedEvent("b", 9, 30, 10, 0),
		timedEvent("c", 14, 0, 15, 0),
		{ID: "allday", AllDay: true, Start: dayTime(0, 0), End: dayTime(0, 0).Add(24 * time.Hour)},
	}
	shuffled := []model.CalendarEvent{events[2], events[3], events[0], events[1]}

	assert.Equal(t,
		ComputeDayLayout(events, slots, 0.05),
		ComputeDayLayout(shuffled, slots, 0.05))
}

func TestComputeDayLayout_BoxesStayInsideGrid(t *testing.T) {
	slots := DefaultSlotIndex()

	dl := ComputeDayLayout([]model.CalendarEvent{
		timedEvent("edge", 23, 30, 23, 45),
		timedEvent("span", 6, 0, 23, 0),
	}, slots, 0.05)

	for _, pe := range dl.Timed {
		assert.GreaterOrEqual(t, pe.Pos.RowStart, 0)
		assert.LessOrEqual(t, pe.Pos.RowEnd, slots.TotalSlots())
		assert.Greater(t, pe.Pos.RowEnd, pe.Pos.RowStart)
		assert.GreaterOrEqual(t, pe.Pos.FracLeft, 0.0)
		assert.LessOrEqual(t, pe.Pos.FracLeft+pe.Pos.FracWidth, 1.0)
	}
}
