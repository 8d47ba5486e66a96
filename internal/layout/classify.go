package layout

import (
	"regexp"
	"strings"

	"plannercal/internal/model"
)

// Classifier assigns each event a rendering category. It is a pure function
// of the event: the same input classifies identically on every call, which
// keeps the screen and PDF targets in agreement.
//
// Precedence, highest first:
//  1. An explicit category already present on the event (trusted supplier).
//  2. A per-source category pin from configuration (allow-list).
//  3. Holiday keywords in the title.
//  4. Practice-management title heuristics ("... Appointment" suffix,
//     a bare capitalized client name, supervision sessions).
//  5. Default: manual for locally created events (no source id),
//     external-calendar otherwise.
type Classifier struct {
	// sourceCategories pins events from a known source id to a category.
	sourceCategories map[string]model.SourceCategory
}

// NewClassifier builds a classifier with the given source-id allow-list.
// A nil map is valid and skips rule 2.
func NewClassifier(sourceCategories map[string]model.SourceCategory) *Classifier {
	return &Classifier{sourceCategories: sourceCategories}
}

var (
	// A bare "First Last" title is how the practice-management source
	// labels client sessions.
	clientNamePattern = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z][a-z]+$`)

	holidayKeywords = []string{"holiday", "holidays in"}

	practiceKeywords = []string{"supervision", "intake", "session"}
)

// Classify resolves exactly one category for the event. It never mutates
// the event and never fails.
func (c *Classifier) Classify(ev model.CalendarEvent) model.SourceCategory {
	// Rule 1: trusted explicit category.
	switch ev.SourceCategory {
	case model.SourceExternalCalendar, model.SourcePracticeManagement,
		model.SourceHoliday, model.SourceManual:
		return ev.SourceCategory
	}

	// Rule 2: source allow-list.
	if cat, ok := c.sourceCategories[ev.SourceID]; ok {
		return cat
	}

	title := strings.ToLower(strings.TrimSpace(ev.Title))

	// Rule 3: holiday keywords.
	for _, kw := range holidayKeywords {
		if strings.Contains(title, kw) {
			return model.SourceHoliday
		}
	}

	// Rule 4: practice-management heuristics.
	if strings.HasSuffix(title, " appointment") {
		return model.SourcePracticeManagement
	}
	if clientNamePattern.MatchString(strings.TrimSpace(ev.Title)) {
		return model.SourcePracticeManagement
	}
	for _, kw := range practiceKeywords {
		if strings.Contains(title, kw) {
			return model.SourcePracticeManagement
		}
	}

	// Rule 5: default.
	if ev.SourceID == "" {
		return model.SourceManual
	}
	return model.SourceExternalCalendar
}

// ClassifyAll returns a copy of events with SourceCategory resolved on each.
// The input slice is left untouched.
func (c *Classifier) ClassifyAll(events []model.CalendarEvent) []model.CalendarEvent {
	out := make([]model.CalendarEvent, len(events))
	for i, ev := range events {
		ev.SourceCategory = c.Classify(ev)
		out[i] = ev
	}
	return out
}

// ParseCategory maps a config string to a SourceCategory. Unknown values
// return false.
func ParseCategory(s string) (model.SourceCategory, bool) {
	switch model.SourceCategory(strings.TrimSpace(strings.ToLower(s))) {
	case model.SourceExternalCalendar:
		return model.SourceExternalCalendar, true
	case model.SourcePracticeManagement:
		return model.SourcePracticeManagement, true
	case model.SourceHoliday:
		return model.SourceHoliday, true
	case model.SourceManual:
		return model.SourceManual, true
	}
	return "", false
}
