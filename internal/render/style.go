package render

import (
	"fmt"
	"strings"

	"plannercal/internal/config"
	"plannercal/internal/model"
)

// RGB is an 8-bit color shared by both render targets.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as "#rrggbb" for the screen target's CSS.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Reference palette from the daily view: white event cards, cornflower
// blue for practice-management, dashed forest green for external feeds,
// solid yellow for holidays, shaded grey for top-of-hour rows.
var (
	ColorBlack       = RGB{0, 0, 0}
	ColorWhite       = RGB{255, 255, 255}
	ColorHourRow     = RGB{240, 240, 240}
	ColorPracticeBlu = RGB{100, 149, 237}
	ColorGoogleGreen = RGB{34, 139, 34}
	ColorHolidayYell = RGB{255, 255, 0}
	ColorManualGrey  = RGB{128, 128, 128}
	ColorMutedText   = RGB{77, 77, 77}
)

// Style is the resolved look of one event box. It is a pure value; the
// screen and PDF adapters both read it and neither may alter it.
type Style struct {
	Fill   RGB
	Border RGB

	BorderDashed bool
	// BorderLeftHeavy draws the thick left edge used for
	// practice-management cards.
	BorderLeftHeavy bool

	Strikethrough bool
	BadgeText     string
}

// styleKey indexes the table by category with an optional status overlay.
type styleKey struct {
	category model.SourceCategory
	status   model.Status // empty = any status
}

// StyleTable maps (category, status) to a Style. One table instance is
// shared by both adapters in a render pass; it is immutable after
// construction.
type StyleTable struct {
	entries map[styleKey]Style
}

// NewStyleTable builds the built-in table and applies any config
// overrides on top.
func NewStyleTable(overrides []config.StyleConfig) *StyleTable {
	t := &StyleTable{entries: map[styleKey]Style{}}

	t.entries[styleKey{category: model.SourcePracticeManagement}] = Style{
		Fill:            ColorWhite,
		Border:          ColorPracticeBlu,
		BorderLeftHeavy: true,
	}
	t.entries[styleKey{category: model.SourceExternalCalendar}] = Style{
		Fill:         ColorWhite,
		Border:       ColorGoogleGreen,
		BorderDashed: true,
	}
	t.entries[styleKey{category: model.SourceHoliday}] = Style{
		Fill:   ColorHolidayYell,
		Border: ColorBlack,
	}
	t.entries[styleKey{category: model.SourceManual}] = Style{
		Fill:   ColorWhite,
		Border: ColorManualGrey,
	}

	for _, ov := range overrides {
		t.applyOverride(ov)
	}
	return t
}

func (t *StyleTable) applyOverride(ov config.StyleConfig) {
	cat := model.SourceCategory(strings.ToLower(ov.Category))
	key := styleKey{category: cat, status: model.Status(strings.ToLower(ov.Status))}

	base, ok := t.entries[styleKey{category: cat}]
	if !ok {
		return
	}
	if ov.Fill != "" {
		if c, err := parseHex(ov.Fill); err == nil {
			base.Fill = c
		}
	}
	if ov.Border != "" {
		if c, err := parseHex(ov.Border); err == nil {
			base.Border = c
		}
	}
	if ov.BorderDashed {
		base.BorderDashed = true
	}
	if ov.Strikethrough {
		base.Strikethrough = true
	}
	if ov.BadgeText != "" {
		base.BadgeText = ov.BadgeText
	}
	t.entries[key] = base
}

// StyleFor resolves the style for one event. Resolution is pure: exact
// (category, status) entry first, then the category entry with the
// standard cancellation overlay applied for cancelled statuses.
func (t *StyleTable) StyleFor(cat model.SourceCategory, status model.Status) Style {
	if s, ok := t.entries[styleKey{category: cat, status: status}]; ok {
		return s
	}
	s, ok := t.entries[styleKey{category: cat}]
	if !ok {
		s = t.entries[styleKey{category: model.SourceManual}]
	}
	switch status {
	case model.StatusCancelledByProvider:
		s.Strikethrough = true
		s.BadgeText = "CANCELLED BY CLINICIAN"
	case model.StatusCancelledByClient:
		s.Strikethrough = true
		s.BadgeText = "CANCELLED BY CLIENT"
	}
	return s
}

// LegendEntry labels one category swatch in the document legend.
type LegendEntry struct {
	Category model.SourceCategory
	Label    string
	Style    Style
}

// Legend returns the fixed legend ordering used by both targets.
func (t *StyleTable) Legend() []LegendEntry {
	order := []struct {
		cat   model.SourceCategory
		label string
	}{
		{model.SourcePracticeManagement, "SimplePractice"},
		{model.SourceExternalCalendar, "Google Calendar"},
		{model.SourceHoliday, "Holidays in United States"},
		{model.SourceManual, "Manual"},
	}
	out := make([]LegendEntry, 0, len(order))
	for _, o := range order {
		out = append(out, LegendEntry{
			Category: o.cat,
			Label:    o.label,
			Style:    t.StyleFor(o.cat, model.StatusScheduled),
		})
	}
	return out
}

func parseHex(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("render: invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return RGB{}, fmt.Errorf("render: invalid hex color %q: %w", s, err)
	}
	return RGB{r, g, b}, nil
}
