package compose

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"plannercal/internal/config"
	"plannercal/internal/layout"
	appLog "plannercal/internal/log"
	"plannercal/internal/model"
	"plannercal/internal/render"
)

// maxDaysPerOverviewPage is how many day columns fit on one landscape
// overview page before the composer starts a continuation page. Splits
// happen only at day boundaries.
const maxDaysPerOverviewPage = 7

// Composer assembles finished planner documents from supplied events.
// All layout work is synchronous and deterministic; a Composer holds no
// mutable state between passes and may be shared by concurrent callers.
type Composer struct {
	slots      layout.SlotIndex
	gutter     float64
	styles     *render.StyleTable
	classifier *layout.Classifier
	weekStart  time.Weekday
}

// NewComposer wires a Composer from configuration: the slot partition,
// the gutter fraction, the style table with overrides, and the
// classifier's per-source category pins.
func NewComposer(cfg *config.Config) (*Composer, error) {
	startMin, err := config.ParseClock(cfg.DayWindowStart)
	if err != nil {
		return nil, err
	}
	endMin, err := config.ParseClock(cfg.DayWindowEnd)
	if err != nil {
		return nil, err
	}
	slots, err := layout.NewSlotIndex(startMin, endMin, cfg.SlotMinutes)
	if err != nil {
		return nil, err
	}

	pins := map[string]model.SourceCategory{}
	for _, src := range cfg.ICS {
		if cat, ok := layout.ParseCategory(src.Category); ok && src.ID != "" {
			pins[src.ID] = cat
		}
	}

	weekStart := time.Monday
	if cfg.WeekStart == "sunday" {
		weekStart = time.Sunday
	}

	return &Composer{
		slots:      slots,
		gutter:     cfg.GutterFraction,
		styles:     render.NewStyleTable(cfg.Styles),
		classifier: layout.NewClassifier(pins),
		weekStart:  weekStart,
	}, nil
}

// Slots exposes the composer's slot partition for callers that need to
// present the same grid (e.g. the screen view).
func (c *Composer) Slots() layout.SlotIndex { return c.slots }

// Classifier exposes the shared classifier.
func (c *Composer) Classifier() *layout.Classifier { return c.classifier }

// sameDay reports whether t falls on day (both already in display tz).
func sameDay(t, day time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// eventsForDay filters the supplied snapshot down to one day.
func eventsForDay(events []model.CalendarEvent, day time.Time) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0)
	for _, ev := range events {
		if sameDay(ev.Start, day) {
			out = append(out, ev)
		}
	}
	return out
}

// ComposeDaily renders a single-day portrait document. The pass either
// returns a complete document or a *RenderTargetError; partial output is
// never returned.
func (c *Composer) ComposeDaily(events []model.CalendarEvent, day time.Time) (*Document, error) {
	classified := c.classifier.ClassifyAll(eventsForDay(events, day))
	dl := layout.ComputeDayLayout(classified, c.slots, c.gutter)

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(fmt.Sprintf("Daily Planner %s", day.Format("2006-01-02")), true)
	pdf.SetAutoPageBreak(false, 0)

	c.drawDailyPage(pdf, day, dl)

	return c.finish(pdf, day, day.AddDate(0, 0, 1), dl.Warnings)
}

// ComposeRange renders a multi-day document: one or more landscape
// overview pages (up to seven day columns each, header and legend
// repeated on every page) followed by a portrait page per day. days must
// be at least 1.
func (c *Composer) ComposeRange(events []model.CalendarEvent, start time.Time, days int) (*Document, error) {
	if days < 1 {
		days = 1
	}

	classified := c.classifier.ClassifyAll(events)

	layouts := make([]layout.DayLayout, days)
	dates := make([]time.Time, days)
	var warnings []model.Warning
	for i := 0; i < days; i++ {
		dates[i] = start.AddDate(0, 0, i)
		layouts[i] = layout.ComputeDayLayout(eventsForDay(classified, dates[i]), c.slots, c.gutter)
		warnings = append(warnings, layouts[i].Warnings...)
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle(fmt.Sprintf("Weekly Planner %s", start.Format("2006-01-02")), true)
	pdf.SetAutoPageBreak(false, 0)

	// Overview pages, split at day boundaries only.
	for off := 0; off < days; off += maxDaysPerOverviewPage {
		n := days - off
		if n > maxDaysPerOverviewPage {
			n = maxDaysPerOverviewPage
		}
		c.drawOverviewPage(pdf, dates[off:off+n], layouts[off:off+n])
	}

	// One detailed portrait page per day.
	for i := 0; i < days; i++ {
		c.drawDailyPage(pdf, dates[i], layouts[i])
	}

	return c.finish(pdf, start, start.AddDate(0, 0, days), warnings)
}

// ComposeWeek renders the canonical seven-day document starting from the
// configured first weekday of the week containing day.
func (c *Composer) ComposeWeek(events []model.CalendarEvent, day time.Time) (*Document, error) {
	start := day
	for start.Weekday() != c.weekStart {
		start = start.AddDate(0, 0, -1)
	}
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	return c.ComposeRange(events, start, 7)
}

// finish serializes the document, converting any accumulated fpdf error
// into a typed render failure carrying the collected warnings.
func (c *Composer) finish(pdf *fpdf.Fpdf, rangeStart, rangeEnd time.Time, warnings []model.Warning) (*Document, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderTargetError{Target: string(render.TargetPDF), Warnings: warnings, Err: err}
	}

	for _, w := range warnings {
		appLog.Warn("event excluded from layout", "event_id", w.EventID, "reason", w.Reason)
	}

	return &Document{
		Bytes:       buf.Bytes(),
		PageCount:   pdf.PageCount(),
		GeneratedAt: time.Now(),
		RangeStart:  rangeStart,
		RangeEnd:    rangeEnd,
		Warnings:    warnings,
	}, nil
}

// setFont selects Helvetica at a geometric size given in the scale's
// millimeters.
func setFont(pdf *fpdf.Fpdf, style string, sizeMM float64) {
	pdf.SetFont("Helvetica", style, sizeMM*render.PtPerMM)
}

func setDrawRGB(pdf *fpdf.Fpdf, c render.RGB) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillRGB(pdf *fpdf.Fpdf, c render.RGB) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextRGB(pdf *fpdf.Fpdf, c render.RGB) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}

// truncate shortens s until it fits within width in the current font.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	// Core fonts are cp1252; stick to ASCII.
	const ellipsis = "..."
	for len(s) > 0 && pdf.GetStringWidth(s+ellipsis) > width {
		r := []rune(s)
		s = string(r[:len(r)-1])
	}
	return s + ellipsis
}

// centeredText draws s centered horizontally around cx at baseline y.
func centeredText(pdf *fpdf.Fpdf, cx, y float64, s string) {
	pdf.Text(cx-pdf.GetStringWidth(s)/2, y, s)
}

// drawDailyPage draws one complete portrait day page: header, legend,
// statistics strip, all-day band, the timed grid and the event boxes.
func (c *Composer) drawDailyPage(pdf *fpdf.Fpdf, day time.Time, dl layout.DayLayout) {
	sc := render.PDFDailyScale(c.slots.TotalSlots())
	adapter := render.NewPDFAdapter(sc, c.styles)

	pdf.AddPage()

	stats := ComputeDayStats(timedEvents(dl), dl.AllDay, c.slots)

	y := sc.MarginY

	// Header: centered date with an appointment-count subtitle.
	setTextRGB(pdf, render.ColorBlack)
	setFont(pdf, "B", sc.FontTitle)
	cx := sc.MarginX + (sc.TotalWidth()-2*sc.MarginX)/2
	centeredText(pdf, cx, y+sc.FontTitle, day.Format("Monday, January 2, 2006"))
	setFont(pdf, "", sc.FontSmall)
	subtitle := fmt.Sprintf("%d appointments", stats.Appointments)
	if stats.Appointments == 1 {
		subtitle = "1 appointment"
	}
	centeredText(pdf, cx, y+sc.FontTitle+sc.FontSmall*1.8, subtitle)
	y += sc.HeaderHeight

	y = c.drawLegend(pdf, sc, y)
	y = c.drawStatsStrip(pdf, sc, y, stats)

	// All-day band, only when occupied; the grid never moves because the
	// band's space is reserved by the scale either way.
	if len(dl.AllDay) > 0 {
		c.drawAllDayBand(pdf, sc, y, dl.AllDay)
	}
	y += sc.AllDayBand + sc.SectionGap

	gridTop := y
	c.drawGridRows(pdf, sc, gridTop, 1)
	c.drawDayEvents(pdf, adapter, sc, gridTop, dl, 0, true)

	// Footer.
	setFont(pdf, "", sc.FontTiny)
	setTextRGB(pdf, render.ColorMutedText)
	pdf.Text(sc.MarginX, gridTop+sc.SlotHeight*float64(c.slots.TotalSlots())+sc.FooterHeight*0.7,
		fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")))
}

// drawOverviewPage draws one landscape page with a column per day.
func (c *Composer) drawOverviewPage(pdf *fpdf.Fpdf, dates []time.Time, layouts []layout.DayLayout) {
	sc := render.PDFWeeklyScale(c.slots.TotalSlots(), len(dates))
	adapter := render.NewPDFAdapter(sc, c.styles)

	pdf.AddPageFormat("L", fpdf.SizeType{Wd: render.LetterWidthMM, Ht: render.LetterHeightMM})

	y := sc.MarginY

	setTextRGB(pdf, render.ColorBlack)
	setFont(pdf, "B", sc.FontTitle)
	cx := sc.TotalWidth() / 2
	title := fmt.Sprintf("Weekly Planner  %s - %s",
		dates[0].Format("Jan 2"), dates[len(dates)-1].Format("Jan 2, 2006"))
	centeredText(pdf, cx, y+sc.FontTitle, title)
	y += sc.HeaderHeight

	y = c.drawLegend(pdf, sc, y)
	y += sc.AllDayBand + sc.SectionGap

	gridTop := y

	// Day column headers sit just above the grid.
	setFont(pdf, "B", sc.FontSmall)
	for i, d := range dates {
		colCX := sc.MarginX + sc.TimeColWidth + (float64(i)+0.5)*sc.DayColWidth
		centeredText(pdf, colCX, gridTop-sc.FontSmall*0.8, d.Format("Mon 1/2"))
	}

	c.drawGridRows(pdf, sc, gridTop, len(dates))
	for i := range dates {
		c.drawDayEvents(pdf, adapter, sc, gridTop, layouts[i], i, false)
	}
}

// drawLegend draws the category swatches and returns the next y.
func (c *Composer) drawLegend(pdf *fpdf.Fpdf, sc render.UnitScale, y float64) float64 {
	setFont(pdf, "", sc.FontSmall)
	setTextRGB(pdf, render.ColorBlack)

	swatch := sc.LegendHeight * 0.5
	x := sc.MarginX
	for _, entry := range c.styles.Legend() {
		st := entry.Style
		setFillRGB(pdf, st.Fill)
		setDrawRGB(pdf, st.Border)
		pdf.SetLineWidth(sc.BorderLight)
		if st.BorderDashed {
			pdf.SetDashPattern([]float64{sc.DashLength / 2, sc.DashGap / 2}, 0)
		}
		pdf.Rect(x, y+swatch*0.4, swatch, swatch, "FD")
		pdf.SetDashPattern([]float64{}, 0)

		labelX := x + swatch*1.4
		pdf.Text(labelX, y+swatch*1.2, entry.Label)
		x = labelX + pdf.GetStringWidth(entry.Label) + swatch*2
	}
	return y + sc.LegendHeight + sc.SectionGap
}

// drawStatsStrip draws the shaded four-column statistics box.
func (c *Composer) drawStatsStrip(pdf *fpdf.Fpdf, sc render.UnitScale, y float64, stats DayStats) float64 {
	w := sc.TotalWidth() - 2*sc.MarginX
	setFillRGB(pdf, render.ColorHourRow)
	setDrawRGB(pdf, render.ColorBlack)
	pdf.SetLineWidth(sc.BorderLight)
	pdf.Rect(sc.MarginX, y, w, sc.StatsHeight, "FD")

	cells := []struct {
		value string
		label string
	}{
		{fmt.Sprintf("%d", stats.Appointments), "Appointments"},
		{fmt.Sprintf("%.1fh", stats.ScheduledHours), "Scheduled"},
		{fmt.Sprintf("%.1fh", stats.AvailableHours), "Available"},
		{fmt.Sprintf("%d%%", stats.FreeTimePercent), "Free Time"},
	}

	cellW := w / float64(len(cells))
	setTextRGB(pdf, render.ColorBlack)
	for i, cell := range cells {
		cx := sc.MarginX + (float64(i)+0.5)*cellW
		setFont(pdf, "B", sc.FontBody*1.3)
		centeredText(pdf, cx, y+sc.StatsHeight*0.45, cell.value)
		setFont(pdf, "", sc.FontSmall)
		centeredText(pdf, cx, y+sc.StatsHeight*0.8, cell.label)
	}
	return y + sc.StatsHeight + sc.SectionGap
}

// drawAllDayBand draws the band for all-day and outside-window events.
func (c *Composer) drawAllDayBand(pdf *fpdf.Fpdf, sc render.UnitScale, y float64, events []model.CalendarEvent) {
	w := sc.TotalWidth() - 2*sc.MarginX
	setFillRGB(pdf, render.ColorWhite)
	setDrawRGB(pdf, render.ColorBlack)
	pdf.SetLineWidth(sc.BorderLight)
	pdf.Rect(sc.MarginX, y, w, sc.AllDayBand, "FD")

	setFont(pdf, "B", sc.FontSmall)
	setTextRGB(pdf, render.ColorBlack)
	pdf.Text(sc.MarginX+sc.EventInset*2, y+sc.AllDayBand*0.35, "All Day")

	setFont(pdf, "", sc.FontSmall)
	var line string
	for i, ev := range events {
		if i > 0 {
			line += "   |   "
		}
		line += ev.Title
	}
	line = truncate(pdf, line, w-sc.TimeColWidth)
	pdf.Text(sc.MarginX+sc.TimeColWidth*0.5, y+sc.AllDayBand*0.75, line)
}

// drawGridRows draws the slot rows: shaded top-of-hour backgrounds, row
// separators, the time column labels and the outer frame.
func (c *Composer) drawGridRows(pdf *fpdf.Fpdf, sc render.UnitScale, gridTop float64, dayCount int) {
	total := c.slots.TotalSlots()
	gridW := sc.TimeColWidth + sc.DayColWidth*float64(dayCount)
	left := sc.MarginX

	for i := 0; i < total; i++ {
		rowY := gridTop + float64(i)*sc.SlotHeight

		if c.slots.TopOfHour(i) {
			setFillRGB(pdf, render.ColorHourRow)
			pdf.Rect(left, rowY, gridW, sc.SlotHeight, "F")
		}

		// Time label, bold on the hour.
		setTextRGB(pdf, render.ColorBlack)
		if c.slots.TopOfHour(i) {
			setFont(pdf, "B", sc.FontTimeHour)
		} else {
			setFont(pdf, "", sc.FontTimeHalf)
		}
		centeredText(pdf, left+sc.TimeColWidth/2, rowY+sc.SlotHeight*0.6, c.slots.Label(i))

		setDrawRGB(pdf, render.ColorManualGrey)
		pdf.SetLineWidth(sc.BorderLight * 0.5)
		pdf.Line(left, rowY, left+gridW, rowY)
	}

	// Frame and column separators.
	setDrawRGB(pdf, render.ColorBlack)
	pdf.SetLineWidth(sc.BorderLight)
	gridH := float64(total) * sc.SlotHeight
	pdf.Rect(left, gridTop, gridW, gridH, "D")
	for d := 0; d <= dayCount; d++ {
		x := left + sc.TimeColWidth + float64(d)*sc.DayColWidth
		pdf.Line(x, gridTop, x, gridTop+gridH)
	}
}

// drawDayEvents renders every positioned event of one day column.
// detailed enables the in-box notes/action-items columns used on daily
// pages; the overview fits only the title.
func (c *Composer) drawDayEvents(pdf *fpdf.Fpdf, adapter render.Adapter, sc render.UnitScale, gridTop float64, dl layout.DayLayout, dayIndex int, detailed bool) {
	for _, unit := range render.RenderAll(adapter, dl, dayIndex) {
		c.drawEventBox(pdf, sc, gridTop, unit, detailed)
	}
}

// drawEventBox draws one event card: fill, category border, text and the
// cancellation treatment.
func (c *Composer) drawEventBox(pdf *fpdf.Fpdf, sc render.UnitScale, gridTop float64, unit render.RenderUnit, detailed bool) {
	ev := unit.Event
	st := unit.Style

	x := sc.MarginX + unit.Box.X + sc.EventInset
	y := gridTop + unit.Box.Y + sc.EventInset
	w := unit.Box.W - 2*sc.EventInset
	h := unit.Box.H - 2*sc.EventInset
	if w <= 0 || h <= 0 {
		return
	}

	setFillRGB(pdf, st.Fill)
	pdf.Rect(x, y, w, h, "F")

	setDrawRGB(pdf, st.Border)
	pdf.SetLineWidth(sc.BorderLight)
	if st.BorderDashed {
		pdf.SetDashPattern([]float64{sc.DashLength, sc.DashGap}, 0)
	}
	pdf.Rect(x, y, w, h, "D")
	pdf.SetDashPattern([]float64{}, 0)
	if st.BorderLeftHeavy {
		pdf.SetLineWidth(sc.BorderHeavy)
		pdf.Line(x, y, x, y+h)
	}

	hasDetails := detailed && (len(ev.Notes) > 0 || len(ev.ActionItems) > 0) && unit.Box.W > sc.DayColWidth*0.6

	titleW := w - 2*sc.EventInset
	if hasDetails {
		titleW = w/3 - 2*sc.EventInset
	}

	setTextRGB(pdf, render.ColorBlack)
	setFont(pdf, "B", sc.FontBody)
	title := truncate(pdf, ev.Title, titleW)
	titleY := y + sc.FontBody + sc.EventInset
	pdf.Text(x+sc.EventInset*2, titleY, title)
	if st.Strikethrough {
		pdf.SetLineWidth(sc.BorderLight)
		setDrawRGB(pdf, render.ColorBlack)
		pdf.Line(x+sc.EventInset*2, titleY-sc.FontBody*0.35,
			x+sc.EventInset*2+pdf.GetStringWidth(title), titleY-sc.FontBody*0.35)
	}

	// Source line and time range, when the box is tall enough.
	if h > sc.FontBody*2.6 {
		setFont(pdf, "", sc.FontTiny)
		setTextRGB(pdf, render.ColorMutedText)
		pdf.Text(x+sc.EventInset*2, titleY+sc.FontTiny*1.4, sourceLabel(ev.SourceCategory))
		setFont(pdf, "", sc.FontSmall)
		setTextRGB(pdf, render.ColorBlack)
		pdf.Text(x+sc.EventInset*2, titleY+sc.FontTiny*1.4+sc.FontSmall*1.4,
			ev.Start.Format("15:04")+"-"+ev.End.Format("15:04"))
	}

	if st.BadgeText != "" {
		setFont(pdf, "B", sc.FontTiny)
		setTextRGB(pdf, st.Border)
		pdf.Text(x+w-pdf.GetStringWidth(st.BadgeText)-sc.EventInset*2, y+sc.FontTiny+sc.EventInset, st.BadgeText)
	}

	if hasDetails {
		c.drawEventDetails(pdf, sc, x, y, w, h, ev)
	}
}

// drawEventDetails draws the three-column expanded card: details, event
// notes and action items, separated by vertical rules.
func (c *Composer) drawEventDetails(pdf *fpdf.Fpdf, sc render.UnitScale, x, y, w, h float64, ev model.CalendarEvent) {
	colW := w / 3

	setDrawRGB(pdf, render.ColorBlack)
	pdf.SetLineWidth(sc.BorderLight * 0.5)
	pdf.Line(x+colW, y+sc.EventInset, x+colW, y+h-sc.EventInset)
	pdf.Line(x+2*colW, y+sc.EventInset, x+2*colW, y+h-sc.EventInset)

	drawList := func(colX float64, heading string, items []string) {
		setFont(pdf, "B", sc.FontSmall)
		setTextRGB(pdf, render.ColorBlack)
		pdf.Text(colX, y+sc.FontSmall+sc.EventInset, heading)
		setFont(pdf, "", sc.FontTiny)
		lineY := y + sc.FontSmall + sc.EventInset + sc.FontTiny*1.6
		for _, item := range items {
			if lineY > y+h-sc.EventInset {
				break
			}
			pdf.Text(colX, lineY, truncate(pdf, "- "+item, colW-4*sc.EventInset))
			lineY += sc.FontTiny * 1.6
		}
	}

	drawList(x+colW+sc.EventInset*2, "Event Notes", ev.Notes)
	drawList(x+2*colW+sc.EventInset*2, "Action Items", ev.ActionItems)
}

func timedEvents(dl layout.DayLayout) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0, len(dl.Timed))
	for _, pe := range dl.Timed {
		out = append(out, pe.Event)
	}
	return out
}

func sourceLabel(cat model.SourceCategory) string {
	switch cat {
	case model.SourcePracticeManagement:
		return "SIMPLEPRACTICE"
	case model.SourceExternalCalendar:
		return "GOOGLE CALENDAR"
	case model.SourceHoliday:
		return "HOLIDAY"
	default:
		return "MANUAL"
	}
}
