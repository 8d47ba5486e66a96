package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription source.
type ICSConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup, classification and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label shown in the legend.
	Name string `yaml:"name" json:"name"`
	// Category, if set, pins every event from this source to one rendering
	// category: "practice-management", "external-calendar", "holiday" or
	// "manual". Empty means classify per event.
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
}

// BasicAuthConfig enables HTTP basic auth on every endpoint except
// /health. Empty username or password disables it.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// StyleConfig overrides the rendered look of one (category, status) pair.
// Colors are hex strings like "#6495ed".
type StyleConfig struct {
	Category string `yaml:"category" json:"category"`
	Status   string `yaml:"status,omitempty" json:"status,omitempty"`

	Fill          string `yaml:"fill,omitempty" json:"fill,omitempty"`
	Border        string `yaml:"border,omitempty" json:"border,omitempty"`
	BorderDashed  bool   `yaml:"border_dashed,omitempty" json:"border_dashed,omitempty"`
	Strikethrough bool   `yaml:"strikethrough,omitempty" json:"strikethrough,omitempty"`
	BadgeText     string `yaml:"badge_text,omitempty" json:"badge_text,omitempty"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the planner view and API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone all supplied events are normalized to
	// (e.g. "America/New_York").
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday opens the weekly document:
	// "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for the
	// periodic fetch+export cycle in daemon mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// DayWindowStart / DayWindowEnd bound the timed grid, "HH:MM" wall clock.
	// Events outside the window move to the all-day band.
	DayWindowStart string `yaml:"day_window_start" json:"day_window_start"`
	DayWindowEnd   string `yaml:"day_window_end" json:"day_window_end"`

	// SlotMinutes is the duration of one grid row.
	SlotMinutes int `yaml:"slot_minutes" json:"slot_minutes"`

	// GutterFraction is the horizontal fraction of a column reserved as
	// visual separation between concurrent events. 0.05 leaves boxes at 95%
	// of their lane.
	GutterFraction float64 `yaml:"gutter_fraction" json:"gutter_fraction"`

	// ExportDir is where composed PDFs and the preview PNG are written.
	ExportDir string `yaml:"export_dir" json:"export_dir"`

	// BasicAuth optionally protects the HTTP surface.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`

	// ICS is the list of subscribed event sources.
	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// Styles optionally override entries of the built-in style table.
	Styles []StyleConfig `yaml:"styles,omitempty" json:"styles,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         "127.0.0.1:8080",
		Timezone:       "America/New_York",
		WeekStart:      "monday",
		RefreshCron:    "*/15 * * * *",
		DayWindowStart: "06:00",
		DayWindowEnd:   "23:30",
		SlotMinutes:    30,
		GutterFraction: 0.05,
		ExportDir:      "/var/lib/plannercal",
		ICS:            []ICSConfig{},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "America/New_York"
	}
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		c.WeekStart = "monday"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if _, err := ParseClock(c.DayWindowStart); err != nil {
		c.DayWindowStart = "06:00"
	}
	if _, err := ParseClock(c.DayWindowEnd); err != nil {
		c.DayWindowEnd = "23:30"
	}
	ws, _ := ParseClock(c.DayWindowStart)
	we, _ := ParseClock(c.DayWindowEnd)
	if we <= ws {
		c.DayWindowStart = "06:00"
		c.DayWindowEnd = "23:30"
	}
	if c.SlotMinutes <= 0 {
		c.SlotMinutes = 30
	}
	if c.GutterFraction < 0 || c.GutterFraction >= 1 {
		c.GutterFraction = 0.05
	}
	if c.ExportDir == "" {
		c.ExportDir = "/var/lib/plannercal"
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
}

// ParseClock parses "HH:MM" into minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("config: invalid clock value %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("config: clock value %q out of range", s)
	}
	return h*60 + m, nil
}

// Location resolves the configured timezone, falling back to time.Local.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed, write a
//     default config with 0600 perms, return the default config.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file + rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".plannercal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save delegates to the package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
