package render

import (
	"plannercal/internal/layout"
	"plannercal/internal/model"
)

// Box is an axis-aligned rectangle in the adapter's physical unit,
// relative to the top-left corner of the timed grid (inside the time
// column).
type Box struct {
	X, Y, W, H float64
	Z          int
}

// RenderUnit is one fully resolved event box: physical coordinates plus
// style. It carries no references back into the layout, so adapters for
// different targets never share mutable state.
type RenderUnit struct {
	Event model.CalendarEvent
	Box   Box
	Style Style
}

// Adapter translates target-independent grid geometry into one target's
// physical units. Both implementations are pure functions over the same
// GridPosition values; they differ only in their UnitScale.
type Adapter interface {
	Target() Target
	Scale() UnitScale
	// ToPhysical places a grid position in physical coordinates within
	// day column dayIndex (0 for the daily view).
	ToPhysical(pos layout.GridPosition, dayIndex int) Box
	// Render resolves geometry and style for one positioned event.
	Render(pe layout.PositionedEvent, dayIndex int) RenderUnit
}

// toPhysical is the single geometry mapping both adapters share. Every
// physical dimension comes from the UnitScale; the fractional horizontal
// placement comes from the overlap resolver via GridPosition.
func toPhysical(pos layout.GridPosition, dayIndex int, s UnitScale) Box {
	dayLeft := s.TimeColWidth + float64(dayIndex)*s.DayColWidth
	return Box{
		X: dayLeft + pos.FracLeft*s.DayColWidth,
		Y: float64(pos.RowStart) * s.SlotHeight,
		W: pos.FracWidth * s.DayColWidth,
		H: float64(pos.RowEnd-pos.RowStart) * s.SlotHeight,
		Z: pos.ZOrder,
	}
}

type adapter struct {
	target Target
	scale  UnitScale
	styles *StyleTable
}

func (a *adapter) Target() Target   { return a.target }
func (a *adapter) Scale() UnitScale { return a.scale }

func (a *adapter) ToPhysical(pos layout.GridPosition, dayIndex int) Box {
	return toPhysical(pos, dayIndex, a.scale)
}

func (a *adapter) Render(pe layout.PositionedEvent, dayIndex int) RenderUnit {
	return RenderUnit{
		Event: pe.Event,
		Box:   a.ToPhysical(pe.Pos, dayIndex),
		Style: a.styles.StyleFor(pe.Event.SourceCategory, pe.Event.Status),
	}
}

// NewScreenAdapter builds the CSS-pixel adapter.
func NewScreenAdapter(scale UnitScale, styles *StyleTable) Adapter {
	return &adapter{target: TargetScreen, scale: scale, styles: styles}
}

// NewPDFAdapter builds the millimeter adapter.
func NewPDFAdapter(scale UnitScale, styles *StyleTable) Adapter {
	return &adapter{target: TargetPDF, scale: scale, styles: styles}
}

// RenderAll maps a whole day layout through the adapter, preserving the
// layout's deterministic ordering.
func RenderAll(a Adapter, dl layout.DayLayout, dayIndex int) []RenderUnit {
	units := make([]RenderUnit, 0, len(dl.Timed))
	for _, pe := range dl.Timed {
		units = append(units, a.Render(pe, dayIndex))
	}
	return units
}
