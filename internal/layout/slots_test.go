package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayTime(h, m int) time.Time {
	return time.Date(2026, 3, 2, h, m, 0, 0, time.UTC)
}

func TestNewSlotIndex_Validation(t *testing.T) {
	_, err := NewSlotIndex(360, 1410, 0)
	assert.Error(t, err)

	_, err = NewSlotIndex(1410, 360, 30)
	assert.Error(t, err)

	// 06:00-23:45 is not aligned to 30-minute slots.
	_, err = NewSlotIndex(360, 23*60+45, 30)
	assert.Error(t, err)

	_, err = NewSlotIndex(360, 1410, 30)
	assert.NoError(t, err)
}

func TestDefaultSlotIndex_Shape(t *testing.T) {
	idx := DefaultSlotIndex()

	assert.Equal(t, 36, idx.TotalSlots())
	assert.Equal(t, 18*60, idx.WindowMinutes())
	assert.Equal(t, "06:00", idx.Label(0))
	assert.Equal(t, "23:30", idx.Label(35))
}

func TestTopOfHour(t *testing.T) {
	idx := DefaultSlotIndex()

	assert.True(t, idx.TopOfHour(0))  // 06:00
	assert.False(t, idx.TopOfHour(1)) // 06:30
	assert.True(t, idx.TopOfHour(2))  // 07:00
	assert.False(t, idx.TopOfHour(35))
}

func TestSlotForTime_Bounds(t *testing.T) {
	idx := DefaultSlotIndex()

	slot, ok := idx.SlotForTime(dayTime(6, 0))
	require.True(t, ok)
	assert.Equal(t, 0, slot)

	slot, ok = idx.SlotForTime(dayTime(6, 29))
	require.True(t, ok)
	assert.Equal(t, 0, slot)

	slot, ok = idx.SlotForTime(dayTime(23, 30))
	require.True(t, ok)
	assert.Equal(t, 35, slot)

	slot, ok = idx.SlotForTime(dayTime(23, 59))
	require.True(t, ok)
	assert.Equal(t, 35, slot)

	_, ok = idx.SlotForTime(dayTime(5, 59))
	assert.False(t, ok)
}

func TestSlotRange_Rounding(t *testing.T) {
	idx := DefaultSlotIndex()

	// 25 minutes rounds up to one full slot.
	rowStart, rowEnd, ok := idx.SlotRange(dayTime(9, 0), dayTime(9, 25))
	require.True(t, ok)
	assert.Equal(t, 6, rowStart)
	assert.Equal(t, 7, rowEnd)

	// 65 minutes spans three slots.
	rowStart, rowEnd, ok = idx.SlotRange(dayTime(9, 0), dayTime(10, 5))
	require.True(t, ok)
	assert.Equal(t, 6, rowStart)
	assert.Equal(t, 9, rowEnd)

	// Exactly one slot stays one slot.
	rowStart, rowEnd, ok = idx.SlotRange(dayTime(9, 0), dayTime(9, 30))
	require.True(t, ok)
	assert.Equal(t, 6, rowStart)
	assert.Equal(t, 7, rowEnd)
}

func TestSlotRange_ZeroDurationGetsMinimumHeight(t *testing.T) {
	idx := DefaultSlotIndex()

	rowStart, rowEnd, ok := idx.SlotRange(dayTime(14, 0), dayTime(14, 0))
	require.True(t, ok)
	assert.Equal(t, rowStart+1, rowEnd)
}

func TestSlotRange_ClampsPastWindowEnd(t *testing.T) {
	idx := DefaultSlotIndex()

	// Ends after midnight: clamp to the last slot instead of wrapping.
	rowStart, rowEnd, ok := idx.SlotRange(dayTime(22, 0), dayTime(22, 0).Add(150*time.Minute))
	require.True(t, ok)
	assert.Equal(t, 32, rowStart)
	assert.Equal(t, idx.TotalSlots(), rowEnd)
}

func TestSlotRange_StartOutsideWindow(t *testing.T) {
	idx := DefaultSlotIndex()

	_, _, ok := idx.SlotRange(dayTime(4, 0), dayTime(5, 0))
	assert.False(t, ok)
}
