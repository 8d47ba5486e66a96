package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"plannercal/internal/compose"
	"plannercal/internal/config"
	"plannercal/internal/ics"
	appLog "plannercal/internal/log"
	"plannercal/internal/model"
)

// Server exposes the planner over HTTP: the rendered screen view, the
// PDF export, the PNG preview and a JSON events API.
type Server struct {
	cfg      *config.Config
	composer *compose.Composer
	supplier *ics.Supplier
	debug    bool
	mux      *http.ServeMux

	// In-memory cache for expanded events so repeated page loads do not
	// refetch every feed. The periodic export cycle is the authoritative
	// refresh; this cache only absorbs HTTP traffic.
	eventsMu    sync.RWMutex
	eventsCache *eventsCache
}

const eventsCacheTTL = 30 * time.Second

type eventsCache struct {
	events     []model.CalendarEvent
	rangeStart time.Time
	rangeEnd   time.Time
	updatedAt  time.Time
}

// NewServer constructs a Server around a shared composer and supplier.
func NewServer(cfg *config.Config, composer *compose.Composer, supplier *ics.Supplier, debug bool) *Server {
	s := &Server{
		cfg:      cfg,
		composer: composer,
		supplier: supplier,
		debug:    debug,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware protects every route except /health, which stays
// open for liveness probes.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="PlannerCal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer binds to cfg.Listen and serves until the listener fails.
// Graceful shutdown on ctx cancel is handled by the caller wrapping an
// http.Server around Handler.
func StartServer(_ context.Context, cfg *config.Config, composer *compose.Composer, supplier *ics.Supplier, debug bool) error {
	s := NewServer(cfg, composer, supplier, debug)
	appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "debug", debug)
	return http.ListenAndServe(cfg.Listen, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/planner", s.handlePlanner)
	s.mux.HandleFunc("/planner/week", s.handlePlannerWeek)
	s.mux.HandleFunc("/export.pdf", s.handleExportPDF)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// loadEvents returns the expanded events covering [start, end), serving
// from the short-lived cache when it covers the requested range.
func (s *Server) loadEvents(ctx context.Context, start, end time.Time) ([]model.CalendarEvent, error) {
	now := time.Now()

	s.eventsMu.RLock()
	ec := s.eventsCache
	s.eventsMu.RUnlock()
	if ec != nil && now.Sub(ec.updatedAt) < eventsCacheTTL &&
		!start.Before(ec.rangeStart) && !end.After(ec.rangeEnd) {
		return ec.events, nil
	}

	events, err := s.supplier.EventsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{
		events:     events,
		rangeStart: start,
		rangeEnd:   end,
		updatedAt:  time.Now(),
	}
	s.eventsMu.Unlock()
	return events, nil
}

// requestedDay parses ?date=YYYY-MM-DD, defaulting to today in the
// display timezone.
func (s *Server) requestedDay(r *http.Request) (time.Time, error) {
	loc := s.cfg.Location()
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := time.ParseInLocation("2006-01-02", v, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q", v)
		}
		return d, nil
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
}

// eventDTO is the JSON view of one expanded event.
type eventDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	SourceID    string    `json:"source_id,omitempty"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	AllDay      bool      `json:"all_day"`
	Notes       []string  `json:"notes,omitempty"`
	ActionItems []string  `json:"action_items,omitempty"`
}

type eventsResponse struct {
	Events          []eventDTO `json:"events"`
	RangeStart      time.Time  `json:"range_start"`
	RangeEnd        time.Time  `json:"range_end"`
	DisplayTimeZone string     `json:"display_timezone"`
	WeekStart       string     `json:"week_start"`
}

// handleEvents returns expanded, classified events for a window.
//
// GET /api/events?days=7&backfill=1
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := r.URL.Query()
	days := parseIntDefault(q.Get("days"), 7)
	if days <= 0 {
		days = 7
	}
	backfill := parseIntDefault(q.Get("backfill"), 1)
	if backfill < 0 {
		backfill = 0
	}

	loc := s.cfg.Location()
	now := time.Now().In(loc)
	rangeStart := now.AddDate(0, 0, -backfill)
	rangeEnd := now.AddDate(0, 0, days)

	events, err := s.loadEvents(ctx, rangeStart, rangeEnd)
	if err != nil {
		appLog.Error("api events: load failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	classified := s.composer.Classifier().ClassifyAll(events)
	dtos := make([]eventDTO, 0, len(classified))
	for _, ev := range classified {
		dtos = append(dtos, eventDTO{
			ID:          ev.ID,
			Title:       ev.Title,
			Location:    ev.Location,
			Start:       ev.Start,
			End:         ev.End,
			SourceID:    ev.SourceID,
			Category:    string(ev.SourceCategory),
			Status:      string(ev.Status),
			AllDay:      ev.AllDay,
			Notes:       ev.Notes,
			ActionItems: ev.ActionItems,
		})
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:          dtos,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
		DisplayTimeZone: loc.String(),
		WeekStart:       s.cfg.WeekStart,
	})
}

// handlePlanner serves the daily screen view.
//
// GET /planner?date=2026-08-30
func (s *Server) handlePlanner(w http.ResponseWriter, r *http.Request) {
	day, err := s.requestedDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.loadEvents(r.Context(), day, day.AddDate(0, 0, 1))
	if err != nil {
		appLog.Error("planner: load failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	doc, err := s.composer.ComposeDailyHTML(events, day)
	if err != nil {
		appLog.Error("planner: compose failed", err)
		writeError(w, http.StatusInternalServerError, "failed to compose planner")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}

// handlePlannerWeek serves the weekly screen overview.
func (s *Server) handlePlannerWeek(w http.ResponseWriter, r *http.Request) {
	day, err := s.requestedDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := weekStartFor(day, s.cfg.WeekStart)

	events, err := s.loadEvents(r.Context(), start, start.AddDate(0, 0, 7))
	if err != nil {
		appLog.Error("planner week: load failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	doc, err := s.composer.ComposeWeeklyHTML(events, start, 7)
	if err != nil {
		appLog.Error("planner week: compose failed", err)
		writeError(w, http.StatusInternalServerError, "failed to compose planner")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}

// handleExportPDF serves the composed PDF.
//
// GET /export.pdf?date=2026-08-30&week=1
func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	day, err := s.requestedDay(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	week := r.URL.Query().Get("week") == "1"

	var doc *compose.Document
	if week {
		start := weekStartFor(day, s.cfg.WeekStart)
		events, lerr := s.loadEvents(r.Context(), start, start.AddDate(0, 0, 7))
		if lerr != nil {
			appLog.Error("export: load failed", lerr)
			writeError(w, http.StatusInternalServerError, "failed to load events")
			return
		}
		doc, err = s.composer.ComposeRange(events, start, 7)
	} else {
		events, lerr := s.loadEvents(r.Context(), day, day.AddDate(0, 0, 1))
		if lerr != nil {
			appLog.Error("export: load failed", lerr)
			writeError(w, http.StatusInternalServerError, "failed to load events")
			return
		}
		doc, err = s.composer.ComposeDaily(events, day)
	}
	if err != nil {
		appLog.Error("export: compose failed", err)
		writeError(w, http.StatusInternalServerError, "failed to compose PDF")
		return
	}

	name := fmt.Sprintf("planner-%s.pdf", day.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}

// handlePreview serves the last captured PNG from the export directory.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	dir := s.cfg.ExportDir
	if s.debug {
		dir = "./cache"
	}
	http.ServeFile(w, r, filepath.Join(dir, "preview.png"))
}

// weekStartFor walks back from day to the configured first weekday.
func weekStartFor(day time.Time, weekStart string) time.Time {
	target := time.Monday
	if weekStart == "sunday" {
		target = time.Sunday
	}
	for day.Weekday() != target {
		day = day.AddDate(0, 0, -1)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
