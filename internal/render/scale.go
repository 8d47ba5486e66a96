package render

// Unit conversion between the two physical coordinate systems. The screen
// target works in CSS pixels at 96 DPI; the PDF target works in
// millimeters. Both derive their geometry from the same base constants in
// pixels, so the targets can only drift apart if these factors change.
const (
	MMPerInch = 25.4
	PxPerInch = 96.0
	PtPerInch = 72.0

	MMPerPx = MMPerInch / PxPerInch
	PtPerPx = PtPerInch / PxPerInch
	PtPerMM = PtPerInch / MMPerInch
)

// US Letter in millimeters.
const (
	LetterWidthMM  = 215.9
	LetterHeightMM = 279.4
)

// Base layout constants in CSS pixels. These are the single source of
// truth for both render targets; the daily reference view uses a 40px slot
// row and an 80px time column.
const (
	BaseSlotHeightPx       = 40.0
	BaseWeeklySlotHeightPx = 20.0
	BaseTimeColWidthPx     = 80.0
	BaseDayColWidthPx      = 672.0
	BaseWeeklyDayColPx     = 160.0

	BaseMarginPx       = 24.0
	BaseHeaderPx       = 70.0
	BaseLegendPx       = 24.0
	BaseStatsPx        = 60.0
	BaseAllDayBandPx   = 40.0
	BaseFooterPx       = 20.0
	BaseSectionGapPx   = 10.0
	BaseEventInsetPx   = 2.0
	BaseBorderHeavyPx  = 3.0
	BaseBorderLightPx  = 1.0
	BaseDashLengthPx   = 8.0
	BaseDashGapPx      = 4.0
	BaseFontTitlePx    = 24.0
	BaseFontBodyPx     = 13.0
	BaseFontSmallPx    = 11.0
	BaseFontTinyPx     = 9.0
	BaseFontTimeHourPx = 12.0
	BaseFontTimeHalfPx = 10.0
)

// Target names the physical coordinate system a UnitScale speaks.
type Target string

const (
	TargetScreen Target = "screen"
	TargetPDF    Target = "pdf"
)

// UnitScale carries every physical dimension a render adapter needs,
// expressed in the target's own unit (CSS px for screen, mm for PDF).
// Font sizes are always in points; both targets agree on text sizing
// relative to geometry through the shared scale factor.
type UnitScale struct {
	Target Target

	// Factor converts base pixels into this scale's unit. Screen uses 1;
	// PDF uses MMPerPx times a page-fit factor. Keeping it a single number
	// is what guarantees proportionality between targets.
	Factor float64

	SlotHeight   float64
	TimeColWidth float64
	DayColWidth  float64
	DayCount     int

	MarginX      float64
	MarginY      float64
	HeaderHeight float64
	LegendHeight float64
	StatsHeight  float64
	AllDayBand   float64
	FooterHeight float64
	SectionGap   float64

	EventInset  float64
	BorderHeavy float64
	BorderLight float64
	DashLength  float64
	DashGap     float64

	// Font sizes are geometric heights in the scale's unit, like every
	// other dimension, so text shrinks with the page-fit factor. The PDF
	// target converts mm to points with PtPerMM when selecting a font.
	FontTitle    float64
	FontBody     float64
	FontSmall    float64
	FontTiny     float64
	FontTimeHour float64
	FontTimeHalf float64
}

// baseScale assembles the canonical pixel-space scale for either the daily
// (one day column, 40px slots) or weekly (seven 160px columns, 20px slots)
// composition.
func baseScale(weekly bool, dayCount int) UnitScale {
	s := UnitScale{
		Target:       TargetScreen,
		Factor:       1,
		SlotHeight:   BaseSlotHeightPx,
		TimeColWidth: BaseTimeColWidthPx,
		DayColWidth:  BaseDayColWidthPx,
		DayCount:     1,
		MarginX:      BaseMarginPx,
		MarginY:      BaseMarginPx,
		HeaderHeight: BaseHeaderPx,
		LegendHeight: BaseLegendPx,
		StatsHeight:  BaseStatsPx,
		AllDayBand:   BaseAllDayBandPx,
		FooterHeight: BaseFooterPx,
		SectionGap:   BaseSectionGapPx,
		EventInset:   BaseEventInsetPx,
		BorderHeavy:  BaseBorderHeavyPx,
		BorderLight:  BaseBorderLightPx,
		DashLength:   BaseDashLengthPx,
		DashGap:      BaseDashGapPx,
		FontTitle:    BaseFontTitlePx,
		FontBody:     BaseFontBodyPx,
		FontSmall:    BaseFontSmallPx,
		FontTiny:     BaseFontTinyPx,
		FontTimeHour: BaseFontTimeHourPx,
		FontTimeHalf: BaseFontTimeHalfPx,
	}
	if weekly {
		s.SlotHeight = BaseWeeklySlotHeightPx
		s.DayColWidth = BaseWeeklyDayColPx
		s.DayCount = dayCount
		s.StatsHeight = 0
	}
	return s
}

// scaledBy returns a copy with every geometric dimension multiplied by k.
// Font sizes scale by the same factor so text keeps its proportion to the
// grid.
func (s UnitScale) scaledBy(k float64, target Target) UnitScale {
	out := s
	out.Target = target
	out.Factor = s.Factor * k

	out.SlotHeight *= k
	out.TimeColWidth *= k
	out.DayColWidth *= k
	out.MarginX *= k
	out.MarginY *= k
	out.HeaderHeight *= k
	out.LegendHeight *= k
	out.StatsHeight *= k
	out.AllDayBand *= k
	out.FooterHeight *= k
	out.SectionGap *= k
	out.EventInset *= k
	out.BorderHeavy *= k
	out.BorderLight *= k
	out.DashLength *= k
	out.DashGap *= k
	out.FontTitle *= k
	out.FontBody *= k
	out.FontSmall *= k
	out.FontTiny *= k
	out.FontTimeHour *= k
	out.FontTimeHalf *= k
	return out
}

// TotalWidth is the full canvas width including margins.
func (s UnitScale) TotalWidth() float64 {
	return s.MarginX*2 + s.TimeColWidth + s.DayColWidth*float64(s.DayCount)
}

// TotalHeight is the full canvas height for a grid of totalSlots rows,
// including the fixed chrome above and below the grid.
func (s UnitScale) TotalHeight(totalSlots int) float64 {
	return s.MarginY*2 +
		s.HeaderHeight + s.LegendHeight + s.StatsHeight + s.AllDayBand +
		s.SectionGap*2 +
		s.SlotHeight*float64(totalSlots) +
		s.FooterHeight
}

// ScreenDailyScale returns the CSS-pixel scale for the daily view.
func ScreenDailyScale() UnitScale {
	return baseScale(false, 1)
}

// ScreenWeeklyScale returns the CSS-pixel scale for the weekly overview
// with dayCount day columns.
func ScreenWeeklyScale(dayCount int) UnitScale {
	return baseScale(true, dayCount)
}

// fitToPage converts a pixel-space scale to millimeters and uniformly
// shrinks it until the full composition fits the given page. A single
// factor keeps every ratio identical to the screen target.
func fitToPage(s UnitScale, totalSlots int, pageWMM, pageHMM float64) UnitScale {
	k := MMPerPx
	if kw := pageWMM / s.TotalWidth(); kw < k {
		k = kw
	}
	if kh := pageHMM / s.TotalHeight(totalSlots); kh < k {
		k = kh
	}
	return s.scaledBy(k, TargetPDF)
}

// PDFDailyScale returns the millimeter scale for a portrait US Letter
// daily page.
func PDFDailyScale(totalSlots int) UnitScale {
	return fitToPage(baseScale(false, 1), totalSlots, LetterWidthMM, LetterHeightMM)
}

// PDFWeeklyScale returns the millimeter scale for a landscape US Letter
// overview page with dayCount day columns.
func PDFWeeklyScale(totalSlots, dayCount int) UnitScale {
	return fitToPage(baseScale(true, dayCount), totalSlots, LetterHeightMM, LetterWidthMM)
}
