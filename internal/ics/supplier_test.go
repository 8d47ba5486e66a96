package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plannercal/internal/config"
	"plannercal/internal/model"
)

func TestNewSupplier_SourceDefaults(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ICS = []config.ICSConfig{
		{URL: "https://example.com/a.ics", ID: "a"},
		{URL: "https://example.com/b.ics", Name: "B Feed"},
		{URL: "https://example.com/c.ics"},
		{}, // no URL, dropped
	}

	s := NewSupplier(cfg, t.TempDir())
	sources := s.Sources()
	require.Len(t, sources, 3)
	assert.Equal(t, "a", sources[0].ID)
	assert.Equal(t, "B Feed", sources[1].ID)
	assert.Equal(t, "https://example.com/c.ics", sources[2].ID)
}

func TestEventsBetween_NoSources(t *testing.T) {
	cfg := config.DefaultConfig()
	s := NewSupplier(cfg, t.TempDir())

	events, err := s.EventsBetween(context.Background(),
		time.Now(), time.Now().AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventsBetween_FullPipeline(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//plannercal test//EN",
		"BEGIN:VEVENT",
		"UID:ev1",
		"DTSTART:20260302T140000Z",
		"DTEND:20260302T150000Z",
		"SUMMARY:Jane Doe Appointment",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n") + "\r\n"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.ICS = []config.ICSConfig{{URL: srv.URL, ID: "sp"}}
	s := NewSupplier(cfg, t.TempDir())

	events, err := s.EventsBetween(context.Background(),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Jane Doe Appointment", events[0].Title)
	assert.Equal(t, "sp", events[0].SourceID)
}

func TestDedupe(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: "a", Title: "first"},
		{ID: "b"},
		{ID: "a", Title: "duplicate"},
	}

	out := dedupe(events)
	require.Len(t, out, 2)
	assert.Equal(t, "first", out[0].Title)
	assert.Equal(t, "b", out[1].ID)
}
