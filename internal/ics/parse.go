package ics

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "plannercal/internal/log"
	"plannercal/internal/model"
)

// ParsedEvent is the normalized form of one VEVENT. Recurrence expansion
// operates on this type; it is not yet a display event.
type ParsedEvent struct {
	Source Source

	UID string
	Seq int

	Summary     string
	Location    string
	Status      model.Status
	Notes       []string
	ActionItems []string

	Start   time.Time
	End     time.Time
	AllDay  bool
	StartTZ string

	RawRRule   string
	ExDates    []time.Time
	Recurrence *time.Time
	IsOverride bool
}

// ParseICS parses one ICS payload. VTIMEZONE/TZID handling is delegated
// to the library; all-day detection inspects the DTSTART value form.
// RRULE, EXDATE and RECURRENCE-ID are recorded but not expanded here.
func ParseICS(src Source, body []byte) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]ParsedEvent, 0)
	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp)
		if perr != nil {
			// Skip the broken VEVENT, keep parsing the rest of the feed.
			appLog.Warn("ics vevent skipped", "id", src.ID, "err", perr)
			continue
		}
		events = append(events, ev)
	}

	appLog.Debug("ics parse completed", "id", src.ID, "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent
	out.Source = src

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if seqProp := ve.GetProperty(ical.ComponentPropertySequence); seqProp != nil {
		if n, err := strconv.Atoi(strings.TrimSpace(seqProp.Value)); err == nil {
			out.Seq = n
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	var description string
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		description = p.Value
	}
	out.Notes, out.ActionItems = splitDescription(description)
	out.Status = parseStatus(ve, description)

	start, _ := ve.GetStartAt()
	end, _ := ve.GetEndAt()
	out.Start = start
	out.End = end

	// All-day when DTSTART carries VALUE=DATE or a date-only literal.
	allDay := false
	if dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart); dtStartProp != nil {
		if params := dtStartProp.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				allDay = true
			}
			if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
				out.StartTZ = tzs[0]
			}
		}
		if !strings.Contains(dtStartProp.Value, "T") {
			allDay = true
		}
	}
	out.AllDay = allDay

	if rruleProp := ve.GetProperty(ical.ComponentPropertyRrule); rruleProp != nil {
		out.RawRRule = rruleProp.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if ridProp := ve.GetProperty("RECURRENCE-ID"); ridProp != nil {
		if t, err := parseICSTime(ridProp.Value); err == nil {
			out.Recurrence = &t
			out.IsOverride = true
		}
	}

	return out, nil
}

// parseStatus maps the VEVENT STATUS property onto the display status.
// Practice-management feeds mark the cancelling party in the description
// rather than in STATUS, so that text is consulted for cancelled events.
func parseStatus(ve *ical.VEvent, description string) model.Status {
	var raw string
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		raw = strings.ToUpper(strings.TrimSpace(p.Value))
	}

	switch raw {
	case "CONFIRMED":
		return model.StatusConfirmed
	case "CANCELLED":
		if strings.Contains(strings.ToLower(description), "cancelled by client") ||
			strings.Contains(strings.ToLower(description), "canceled by client") {
			return model.StatusCancelledByClient
		}
		return model.StatusCancelledByProvider
	default:
		return model.StatusScheduled
	}
}

// splitDescription breaks a DESCRIPTION into note lines and action
// items. Lines under an "Action Items" heading, or prefixed with a
// checkbox marker, become action items; other non-empty lines are notes.
func splitDescription(description string) (notes, actionItems []string) {
	if description == "" {
		return nil, nil
	}
	// Unfold literal "\n" sequences produced by ICS escaping.
	description = strings.ReplaceAll(description, `\n`, "\n")
	description = strings.ReplaceAll(description, `\,`, ",")

	inActions := false
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(strings.TrimSuffix(line, ":"))
		switch lower {
		case "action items", "todo", "to do":
			inActions = true
			continue
		case "notes", "event notes":
			inActions = false
			continue
		}

		if item, ok := strings.CutPrefix(line, "[ ] "); ok {
			actionItems = append(actionItems, item)
			continue
		}

		item := strings.TrimPrefix(strings.TrimPrefix(line, "- "), "* ")
		if inActions {
			actionItems = append(actionItems, item)
		} else {
			notes = append(notes, item)
		}
	}
	return notes, actionItems
}

// parseICSTime parses the basic ICS date and date-time literals used by
// EXDATE and RECURRENCE-ID values.
func parseICSTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	if strings.HasSuffix(v, "Z") {
		return time.Parse("20060102T150405Z", v)
	}
	if strings.Contains(v, "T") {
		return time.ParseInLocation("20060102T150405", v, time.Local)
	}
	return time.ParseInLocation("20060102", v, time.Local)
}
