package ics

import (
	"context"
	"errors"
	"strings"
	"time"

	"plannercal/internal/config"
	appLog "plannercal/internal/log"
	"plannercal/internal/model"
)

// Supplier runs the full fetch/parse/expand pipeline for the configured
// sources. It is the one event producer the web server and the export
// cycle share.
type Supplier struct {
	fetcher *Fetcher
	sources []Source
	loc     *time.Location
}

// NewSupplier builds a Supplier from configuration. Sources without a
// URL are dropped; a missing ID falls back to the name, then the URL.
func NewSupplier(cfg *config.Config, cacheDir string) *Supplier {
	sources := make([]Source, 0, len(cfg.ICS))
	for _, csrc := range cfg.ICS {
		if csrc.URL == "" {
			continue
		}
		id := csrc.ID
		if id == "" {
			id = csrc.Name
		}
		if id == "" {
			id = csrc.URL
		}
		sources = append(sources, Source{ID: id, URL: csrc.URL, Category: csrc.Category})
	}

	return &Supplier{
		fetcher: NewFetcher(cacheDir),
		sources: sources,
		loc:     cfg.Location(),
	}
}

// Sources returns the active subscription list.
func (s *Supplier) Sources() []Source { return s.sources }

// EventsBetween fetches every feed and returns the expanded events in
// [start, end), normalized to the display timezone. Individual feed
// failures degrade to cached or missing data; only a total failure with
// no usable feed is an error.
func (s *Supplier) EventsBetween(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error) {
	if len(s.sources) == 0 {
		return []model.CalendarEvent{}, nil
	}

	fetchResults, fetchErrs := s.fetcher.FetchAll(ctx, s.sources)
	if len(fetchResults) == 0 && len(fetchErrs) > 0 {
		return nil, errorsAggregate(fetchErrs)
	}

	parsed := make([]ParsedEvent, 0)
	for _, res := range fetchResults {
		events, err := ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("supplier: parse failed for source", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	result, err := ExpandEvents(parsed, ExpandConfig{
		DisplayLocation: s.loc,
		RangeStart:      start,
		RangeEnd:        end,
	})
	if err != nil {
		return nil, err
	}

	events := dedupe(result.Events)

	appLog.Info("supplier: events expanded",
		"sources", len(s.sources),
		"events", len(events),
		"range_start", start.Format(time.RFC3339),
		"range_end", end.Format(time.RFC3339),
	)
	return events, nil
}

// dedupe drops repeated instance IDs. Overlapping subscriptions to the
// same upstream calendar produce identical UID+start pairs; the first
// occurrence wins.
func dedupe(events []model.CalendarEvent) []model.CalendarEvent {
	seen := make(map[string]bool, len(events))
	out := events[:0]
	for _, ev := range events {
		if seen[ev.ID] {
			continue
		}
		seen[ev.ID] = true
		out = append(out, ev)
	}
	return out
}

func errorsAggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	for i, e := range errs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
