package compose

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"plannercal/internal/layout"
	"plannercal/internal/model"
	"plannercal/internal/render"
)

// The screen target emits a self-contained HTML page: absolutely
// positioned divs in CSS pixels, no external assets. The headless
// browser waits for the data-ready attribute before capturing.
var screenTemplate = template.Must(template.New("planner").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: Helvetica, Arial, sans-serif; background: #ffffff; color: #000000; }
  .canvas { position: relative; width: {{.WidthPx}}px; height: {{.HeightPx}}px; }
  .abs { position: absolute; overflow: hidden; }
  .strike { text-decoration: line-through; }
</style>
</head>
<body data-ready="true">
<div class="canvas">
{{range .Divs}}{{.}}
{{end}}</div>
</body>
</html>
`))

type screenPage struct {
	Title    string
	WidthPx  int
	HeightPx int
	Divs     []template.HTML
}

// htmlBuilder accumulates positioned divs for one page. All geometry is
// already physical; the builder only formats CSS.
type htmlBuilder struct {
	divs []template.HTML
}

func (b *htmlBuilder) div(x, y, w, h float64, z int, style, inner string) {
	b.divs = append(b.divs, template.HTML(fmt.Sprintf(
		`<div class="abs" style="left:%.1fpx;top:%.1fpx;width:%.1fpx;height:%.1fpx;z-index:%d;%s">%s</div>`,
		x, y, w, h, z, style, inner)))
}

func (b *htmlBuilder) text(x, y, w float64, z int, style, s string) {
	b.div(x, y, w, 0, z, "height:auto;"+style, template.HTMLEscapeString(s))
}

// ComposeDailyHTML renders the single-day screen document at the
// reference pixel geometry.
func (c *Composer) ComposeDailyHTML(events []model.CalendarEvent, day time.Time) (*Document, error) {
	classified := c.classifier.ClassifyAll(eventsForDay(events, day))
	dl := layout.ComputeDayLayout(classified, c.slots, c.gutter)

	sc := render.ScreenDailyScale()
	adapter := render.NewScreenAdapter(sc, c.styles)

	b := &htmlBuilder{}
	y := sc.MarginY

	stats := ComputeDayStats(timedEvents(dl), dl.AllDay, c.slots)

	// Header.
	w := sc.TotalWidth() - 2*sc.MarginX
	b.text(sc.MarginX, y, w, 1,
		fmt.Sprintf("font-size:%.0fpx;font-weight:bold;text-align:center;", sc.FontTitle),
		day.Format("Monday, January 2, 2006"))
	subtitle := fmt.Sprintf("%d appointments", stats.Appointments)
	if stats.Appointments == 1 {
		subtitle = "1 appointment"
	}
	b.text(sc.MarginX, y+sc.FontTitle*1.4, w, 1,
		fmt.Sprintf("font-size:%.0fpx;text-align:center;color:%s;", sc.FontSmall, render.ColorMutedText.Hex()),
		subtitle)
	y += sc.HeaderHeight

	y = c.htmlLegend(b, sc, y)
	y = c.htmlStatsStrip(b, sc, y, stats)

	if len(dl.AllDay) > 0 {
		c.htmlAllDayBand(b, sc, y, dl.AllDay)
	}
	y += sc.AllDayBand + sc.SectionGap

	gridTop := y
	c.htmlGridRows(b, sc, gridTop, 1)
	for _, unit := range render.RenderAll(adapter, dl, 0) {
		c.htmlEventBox(b, sc, gridTop, unit)
	}

	return c.finishHTML(b, sc, c.slots.TotalSlots(),
		fmt.Sprintf("Daily Planner %s", day.Format("2006-01-02")),
		day, day.AddDate(0, 0, 1), dl.Warnings)
}

// ComposeWeeklyHTML renders the multi-column screen overview for days
// consecutive days starting at start.
func (c *Composer) ComposeWeeklyHTML(events []model.CalendarEvent, start time.Time, days int) (*Document, error) {
	if days < 1 {
		days = 1
	}
	if days > maxDaysPerOverviewPage {
		days = maxDaysPerOverviewPage
	}

	classified := c.classifier.ClassifyAll(events)

	sc := render.ScreenWeeklyScale(days)
	adapter := render.NewScreenAdapter(sc, c.styles)

	b := &htmlBuilder{}
	y := sc.MarginY

	dates := make([]time.Time, days)
	layouts := make([]layout.DayLayout, days)
	var warnings []model.Warning
	for i := 0; i < days; i++ {
		dates[i] = start.AddDate(0, 0, i)
		layouts[i] = layout.ComputeDayLayout(eventsForDay(classified, dates[i]), c.slots, c.gutter)
		warnings = append(warnings, layouts[i].Warnings...)
	}

	w := sc.TotalWidth() - 2*sc.MarginX
	b.text(sc.MarginX, y, w, 1,
		fmt.Sprintf("font-size:%.0fpx;font-weight:bold;text-align:center;", sc.FontTitle),
		fmt.Sprintf("Weekly Planner  %s - %s",
			dates[0].Format("Jan 2"), dates[days-1].Format("Jan 2, 2006")))
	y += sc.HeaderHeight

	y = c.htmlLegend(b, sc, y)
	y += sc.AllDayBand + sc.SectionGap

	gridTop := y

	for i, d := range dates {
		colX := sc.MarginX + sc.TimeColWidth + float64(i)*sc.DayColWidth
		b.text(colX, gridTop-sc.FontSmall*1.6, sc.DayColWidth, 2,
			fmt.Sprintf("font-size:%.0fpx;font-weight:bold;text-align:center;", sc.FontSmall),
			d.Format("Mon 1/2"))
	}

	c.htmlGridRows(b, sc, gridTop, days)
	for i := range dates {
		for _, unit := range render.RenderAll(adapter, layouts[i], i) {
			c.htmlEventBox(b, sc, gridTop, unit)
		}
	}

	return c.finishHTML(b, sc, c.slots.TotalSlots(),
		fmt.Sprintf("Weekly Planner %s", start.Format("2006-01-02")),
		start, start.AddDate(0, 0, days), warnings)
}

func (c *Composer) finishHTML(b *htmlBuilder, sc render.UnitScale, totalSlots int, title string, rangeStart, rangeEnd time.Time, warnings []model.Warning) (*Document, error) {
	page := screenPage{
		Title:    title,
		WidthPx:  int(sc.TotalWidth()),
		HeightPx: int(sc.TotalHeight(totalSlots)),
		Divs:     b.divs,
	}

	var buf bytes.Buffer
	if err := screenTemplate.Execute(&buf, page); err != nil {
		return nil, &RenderTargetError{Target: string(render.TargetScreen), Warnings: warnings, Err: err}
	}
	return &Document{
		Bytes:       buf.Bytes(),
		PageCount:   1,
		GeneratedAt: time.Now(),
		RangeStart:  rangeStart,
		RangeEnd:    rangeEnd,
		Warnings:    warnings,
	}, nil
}

func (c *Composer) htmlLegend(b *htmlBuilder, sc render.UnitScale, y float64) float64 {
	swatch := sc.LegendHeight * 0.5
	x := sc.MarginX
	for _, entry := range c.styles.Legend() {
		st := entry.Style
		border := fmt.Sprintf("border:%.0fpx %s %s;", sc.BorderLight, borderStyle(st), st.Border.Hex())
		b.div(x, y+swatch*0.4, swatch, swatch, 1,
			fmt.Sprintf("background:%s;%s", st.Fill.Hex(), border), "")
		labelX := x + swatch*1.4
		b.text(labelX, y+swatch*0.3, sc.DayColWidth, 1,
			fmt.Sprintf("font-size:%.0fpx;white-space:nowrap;", sc.FontSmall), entry.Label)
		// Approximate label advance; the screen target has no text
		// metrics, so spacing is generous rather than measured.
		x = labelX + float64(len(entry.Label))*sc.FontSmall*0.62 + swatch*2
	}
	return y + sc.LegendHeight + sc.SectionGap
}

func (c *Composer) htmlStatsStrip(b *htmlBuilder, sc render.UnitScale, y float64, stats DayStats) float64 {
	w := sc.TotalWidth() - 2*sc.MarginX
	b.div(sc.MarginX, y, w, sc.StatsHeight, 1,
		fmt.Sprintf("background:%s;border:%.0fpx solid #000;", render.ColorHourRow.Hex(), sc.BorderLight), "")

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
	for i, cell := range cells {
		cx := sc.MarginX + float64(i)*cellW
		b.text(cx, y+sc.StatsHeight*0.15, cellW, 2,
			fmt.Sprintf("font-size:%.0fpx;font-weight:bold;text-align:center;", sc.FontBody*1.3), cell.value)
		b.text(cx, y+sc.StatsHeight*0.6, cellW, 2,
			fmt.Sprintf("font-size:%.0fpx;text-align:center;", sc.FontSmall), cell.label)
	}
	return y + sc.StatsHeight + sc.SectionGap
}

func (c *Composer) htmlAllDayBand(b *htmlBuilder, sc render.UnitScale, y float64, events []model.CalendarEvent) {
	w := sc.TotalWidth() - 2*sc.MarginX
	b.div(sc.MarginX, y, w, sc.AllDayBand, 1,
		fmt.Sprintf("border:%.0fpx solid #000;", sc.BorderLight), "")
	b.text(sc.MarginX+sc.EventInset*2, y+sc.AllDayBand*0.1, sc.TimeColWidth, 2,
		fmt.Sprintf("font-size:%.0fpx;font-weight:bold;", sc.FontSmall), "All Day")

	var line string
	for i, ev := range events {
		if i > 0 {
			line += "   |   "
		}
		line += ev.Title
	}
	b.text(sc.MarginX+sc.TimeColWidth*0.5, y+sc.AllDayBand*0.5, w-sc.TimeColWidth, 2,
		fmt.Sprintf("font-size:%.0fpx;white-space:nowrap;", sc.FontSmall), line)
}

func (c *Composer) htmlGridRows(b *htmlBuilder, sc render.UnitScale, gridTop float64, dayCount int) {
	total := c.slots.TotalSlots()
	gridW := sc.TimeColWidth + sc.DayColWidth*float64(dayCount)
	left := sc.MarginX

	for i := 0; i < total; i++ {
		rowY := gridTop + float64(i)*sc.SlotHeight

		if c.slots.TopOfHour(i) {
			b.div(left, rowY, gridW, sc.SlotHeight, 0,
				fmt.Sprintf("background:%s;", render.ColorHourRow.Hex()), "")
		}

		weight := ""
		size := sc.FontTimeHalf
		if c.slots.TopOfHour(i) {
			weight = "font-weight:bold;"
			size = sc.FontTimeHour
		}
		b.text(left, rowY+(sc.SlotHeight-size)/2, sc.TimeColWidth, 1,
			fmt.Sprintf("font-size:%.0fpx;text-align:center;%s", size, weight), c.slots.Label(i))

		b.div(left, rowY, gridW, 0, 1,
			fmt.Sprintf("border-top:1px solid %s;", render.ColorManualGrey.Hex()), "")
	}

	gridH := float64(total) * sc.SlotHeight
	b.div(left, gridTop, gridW, gridH, 1,
		fmt.Sprintf("border:%.0fpx solid #000;", sc.BorderLight), "")
	for d := 0; d <= dayCount; d++ {
		x := left + sc.TimeColWidth + float64(d)*sc.DayColWidth
		b.div(x, gridTop, 0, gridH, 1, "border-left:1px solid #000;", "")
	}
}

func (c *Composer) htmlEventBox(b *htmlBuilder, sc render.UnitScale, gridTop float64, unit render.RenderUnit) {
	ev := unit.Event
	st := unit.Style

	x := sc.MarginX + unit.Box.X + sc.EventInset
	y := gridTop + unit.Box.Y + sc.EventInset
	w := unit.Box.W - 2*sc.EventInset
	h := unit.Box.H - 2*sc.EventInset
	if w <= 0 || h <= 0 {
		return
	}

	style := fmt.Sprintf("background:%s;border:%.0fpx %s %s;",
		st.Fill.Hex(), sc.BorderLight, borderStyle(st), st.Border.Hex())
	if st.BorderLeftHeavy {
		style += fmt.Sprintf("border-left:%.0fpx solid %s;", sc.BorderHeavy, st.Border.Hex())
	}

	titleClass := ""
	if st.Strikethrough {
		titleClass = `class="strike" `
	}
	inner := fmt.Sprintf(`<div %sstyle="font-size:%.0fpx;font-weight:bold;padding:%.0fpx;white-space:nowrap;">%s</div>`,
		titleClass, sc.FontBody, sc.EventInset, template.HTMLEscapeString(ev.Title))

	if h > sc.FontBody*2.6 {
		inner += fmt.Sprintf(`<div style="font-size:%.0fpx;color:%s;padding:0 %.0fpx;">%s</div>`,
			sc.FontTiny, render.ColorMutedText.Hex(), sc.EventInset,
			template.HTMLEscapeString(sourceLabel(ev.SourceCategory)))
		inner += fmt.Sprintf(`<div style="font-size:%.0fpx;padding:0 %.0fpx;">%s</div>`,
			sc.FontSmall, sc.EventInset,
			ev.Start.Format("15:04")+"-"+ev.End.Format("15:04"))
	}
	if st.BadgeText != "" {
		inner += fmt.Sprintf(`<div style="position:absolute;top:%.0fpx;right:%.0fpx;font-size:%.0fpx;font-weight:bold;color:%s;">%s</div>`,
			sc.EventInset, sc.EventInset*2, sc.FontTiny, st.Border.Hex(),
			template.HTMLEscapeString(st.BadgeText))
	}

	b.div(x, y, w, h, 10+unit.Box.Z, style, inner)
}

func borderStyle(st render.Style) string {
	if st.BorderDashed {
		return "dashed"
	}
	return "solid"
}
