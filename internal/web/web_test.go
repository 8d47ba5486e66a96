package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plannercal/internal/compose"
	"plannercal/internal/config"
	"plannercal/internal/ics"
)

func testServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	if cfg == nil {
		cfg = config.DefaultConfig()
		cfg.Timezone = "UTC"
	}
	composer, err := compose.NewComposer(cfg)
	require.NoError(t, err)
	supplier := ics.NewSupplier(cfg, t.TempDir())
	return NewServer(cfg, composer, supplier, true)
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleEvents_NoSources(t *testing.T) {
	s := testServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events?days=3", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Events    []any  `json:"events"`
		WeekStart string `json:"week_start"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Events)
	assert.Equal(t, "monday", resp.WeekStart)
}

func TestHandlePlanner_ServesHTML(t *testing.T) {
	s := testServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/planner?date=2026-03-02", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `data-ready="true"`)
	assert.Contains(t, rec.Body.String(), "Monday, March 2, 2026")
}

func TestHandlePlanner_RejectsBadDate(t *testing.T) {
	s := testServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/planner?date=tomorrow", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExportPDF_Daily(t *testing.T) {
	s := testServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.pdf?date=2026-03-02", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	body := rec.Body.Bytes()
	require.Greater(t, len(body), 4)
	assert.Equal(t, "%PDF", string(body[:4]))
}

func TestHandleExportPDF_Weekly(t *testing.T) {
	s := testServer(t, nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export.pdf?date=2026-03-04&week=1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF", string(rec.Body.Bytes()[:4]))
}

func TestBasicAuth_ProtectsEverythingButHealth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "u", Password: "p"}
	s := testServer(t, cfg)

	// /health stays open.
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Everything else requires credentials.
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.SetBasicAuth("u", "p")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWeekStartFor(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	wed := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), weekStartFor(wed, "monday"))
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), weekStartFor(wed, "sunday"))
}
