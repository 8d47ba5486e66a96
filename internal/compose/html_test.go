package compose

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plannercal/internal/model"
)

func TestComposeDailyHTML_ReadySignalAndContent(t *testing.T) {
	c := testComposer(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	events := []model.CalendarEvent{
		composeEvent("a", "Jane Doe Appointment", day.Add(9*time.Hour), time.Hour),
	}

	doc, err := c.ComposeDailyHTML(events, day)
	require.NoError(t, err)

	html := string(doc.Bytes)
	assert.Contains(t, html, `data-ready="true"`)
	assert.Contains(t, html, "Jane Doe Appointment")
	assert.Contains(t, html, "Monday, March 2, 2026")
	assert.Contains(t, html, "1 appointment")
	// Top-of-hour shading and the practice border color.
	assert.Contains(t, html, "#f0f0f0")
	assert.Contains(t, html, "#6495ed")
}

func TestComposeDailyHTML_EscapesEventText(t *testing.T) {
	c := testComposer(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	events := []model.CalendarEvent{
		composeEvent("a", `<script>alert("x")</script>`, day.Add(9*time.Hour), time.Hour),
	}

	doc, err := c.ComposeDailyHTML(events, day)
	require.NoError(t, err)

	html := string(doc.Bytes)
	assert.NotContains(t, html, "<script>alert")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestComposeDailyHTML_CancelledGetsStrikethroughAndBadge(t *testing.T) {
	c := testComposer(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	ev := composeEvent("a", "Jane Doe", day.Add(9*time.Hour), time.Hour)
	ev.Status = model.StatusCancelledByClient

	doc, err := c.ComposeDailyHTML([]model.CalendarEvent{ev}, day)
	require.NoError(t, err)

	html := string(doc.Bytes)
	assert.Contains(t, html, `class="strike"`)
	assert.Contains(t, html, "CANCELLED BY CLIENT")
}

func TestComposeDailyHTML_AllDayBand(t *testing.T) {
	c := testComposer(t)
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	events := []model.CalendarEvent{
		{
			ID: "h", Title: "Labor Day", AllDay: true,
			Start: day, End: day.AddDate(0, 0, 1),
			Status: model.StatusScheduled,
		},
		{
			ID: "c", Title: "Conference", AllDay: true,
			Start: day, End: day.AddDate(0, 0, 1),
			Status: model.StatusScheduled,
		},
	}

	doc, err := c.ComposeDailyHTML(events, day)
	require.NoError(t, err)

	html := string(doc.Bytes)
	assert.Contains(t, html, "All Day")
	// Entries join with the same separator the PDF band uses.
	assert.Contains(t, html, "Labor Day   |   Conference")
}

func TestComposeWeeklyHTML_SevenColumns(t *testing.T) {
	c := testComposer(t)
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	doc, err := c.ComposeWeeklyHTML(nil, start, 7)
	require.NoError(t, err)

	html := string(doc.Bytes)
	assert.Contains(t, html, `data-ready="true"`)
	// Every day header appears.
	for i := 0; i < 7; i++ {
		assert.Contains(t, html, start.AddDate(0, 0, i).Format("Mon 1/2"))
	}
	// Title plus page header, worded exactly like the PDF overview page.
	assert.Equal(t, 2, strings.Count(html, "Weekly Planner"))
	assert.Contains(t, html, "Weekly Planner  Mar 2 - Mar 8, 2026")
}
