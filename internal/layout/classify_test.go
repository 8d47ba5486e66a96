package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"plannercal/internal/model"
)

func TestClassify_ExplicitCategoryWins(t *testing.T) {
	c := NewClassifier(map[string]model.SourceCategory{
		"gcal": model.SourceExternalCalendar,
	})

	ev := model.CalendarEvent{
		Title:          "Jane Doe Appointment",
		SourceID:       "gcal",
		SourceCategory: model.SourceHoliday,
	}
	assert.Equal(t, model.SourceHoliday, c.Classify(ev))
}

func TestClassify_SourcePinBeatsTitleHeuristics(t *testing.T) {
	c := NewClassifier(map[string]model.SourceCategory{
		"work": model.SourceExternalCalendar,
	})

	// The title looks like a practice appointment, but the source pin wins.
	ev := model.CalendarEvent{Title: "Jane Doe Appointment", SourceID: "work"}
	assert.Equal(t, model.SourceExternalCalendar, c.Classify(ev))
}

func TestClassify_HolidayKeywords(t *testing.T) {
	c := NewClassifier(nil)

	assert.Equal(t, model.SourceHoliday,
		c.Classify(model.CalendarEvent{Title: "Holidays in United States", SourceID: "h"}))
	assert.Equal(t, model.SourceHoliday,
		c.Classify(model.CalendarEvent{Title: "Public Holiday", SourceID: "x"}))
}

func TestClassify_PracticeHeuristics(t *testing.T) {
	c := NewClassifier(nil)

	assert.Equal(t, model.SourcePracticeManagement,
		c.Classify(model.CalendarEvent{Title: "Jane Doe Appointment", SourceID: "sp"}))
	assert.Equal(t, model.SourcePracticeManagement,
		c.Classify(model.CalendarEvent{Title: "Jane Doe", SourceID: "sp"}))
	assert.Equal(t, model.SourcePracticeManagement,
		c.Classify(model.CalendarEvent{Title: "Clinical Supervision", SourceID: "sp"}))
	assert.Equal(t, model.SourcePracticeManagement,
		c.Classify(model.CalendarEvent{Title: "Intake call", SourceID: "sp"}))
}

func TestClassify_Defaults(t *testing.T) {
	c := NewClassifier(nil)

	// No source id: locally created.
	assert.Equal(t, model.SourceManual,
		c.Classify(model.CalendarEvent{Title: "Lunch"}))

	// Unknown source id: external feed.
	assert.Equal(t, model.SourceExternalCalendar,
		c.Classify(model.CalendarEvent{Title: "Team standup", SourceID: "gcal"}))
}

func TestClassifyAll_DoesNotMutateInput(t *testing.T) {
	c := NewClassifier(nil)

	in := []model.CalendarEvent{{Title: "Lunch"}}
	out := c.ClassifyAll(in)

	assert.Equal(t, model.SourceCategory(""), in[0].SourceCategory)
	assert.Equal(t, model.SourceManual, out[0].SourceCategory)
}

func TestParseCategory(t *testing.T) {
	cat, ok := ParseCategory("Practice-Management")
	assert.True(t, ok)
	assert.Equal(t, model.SourcePracticeManagement, cat)

	_, ok = ParseCategory("bogus")
	assert.False(t, ok)
}
