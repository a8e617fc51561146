// Package viewport maps between screen pixels and world coordinates for a
// pannable, zoomable 2D canvas.
//
// Screen Y grows downward, world Y grows upward; the world origin sits at the
// canvas centre shifted by the pan offset.
package viewport

import "math"

// Zoom limits and the initial zoom, in pixels per world unit.
const (
	DefaultMinUnit float64 = 0.01
	DefaultMaxUnit float64 = 10000
	DefaultUnit    float64 = 40
)

// Point is a 2D point, either in screen pixels or world units depending on
// context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Offset is the pixel-space pan of the world origin.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorldToScreen converts a world point to screen pixels. unit must be > 0.
func WorldToScreen(p Point, unit float64, off Offset, width, height float64) Point {
	return Point{
		X: width/2 + off.X + p.X*unit,
		Y: height/2 + off.Y - p.Y*unit,
	}
}

// ScreenToWorld is the inverse of WorldToScreen.
func ScreenToWorld(p Point, unit float64, off Offset, width, height float64) Point {
	return Point{
		X: (p.X - width/2 - off.X) / unit,
		Y: (height/2 + off.Y - p.Y) / unit,
	}
}

// Rect is an axis-aligned world rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Viewport is the pan/zoom state of one canvas. The zero value is not usable;
// construct with New.
type Viewport struct {
	Unit    float64 `json:"unit"`
	Offset  Offset  `json:"offset"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	MinUnit float64 `json:"minUnit"`
	MaxUnit float64 `json:"maxUnit"`
}

// New returns a viewport of the given pixel size with default zoom limits.
func New(width, height float64) *Viewport {
	return &Viewport{
		Unit:    DefaultUnit,
		Width:   width,
		Height:  height,
		MinUnit: DefaultMinUnit,
		MaxUnit: DefaultMaxUnit,
	}
}

func (v *Viewport) clamp(u float64) float64 {
	lo, hi := v.MinUnit, v.MaxUnit
	if lo <= 0 {
		lo = DefaultMinUnit
	}
	if hi < lo {
		hi = lo
	}
	if math.IsNaN(u) {
		return v.Unit
	}
	return math.Min(math.Max(u, lo), hi)
}

// SetUnit sets the zoom, clamped to [MinUnit, MaxUnit].
func (v *Viewport) SetUnit(u float64) { v.Unit = v.clamp(u) }

// Pan moves the world origin by (dx, dy) pixels. Panning is unconstrained.
func (v *Viewport) Pan(dx, dy float64) {
	v.Offset.X += dx
	v.Offset.Y += dy
}

// ZoomAt multiplies the zoom by factor while keeping the world point under
// the screen anchor fixed.
func (v *Viewport) ZoomAt(factor float64, anchor Point) {
	before := v.ToWorld(anchor)
	v.SetUnit(v.Unit * factor)
	after := v.ToScreen(before)
	v.Offset.X += anchor.X - after.X
	v.Offset.Y += anchor.Y - after.Y
}

// Resize changes the canvas size in pixels.
func (v *Viewport) Resize(width, height float64) {
	v.Width, v.Height = width, height
}

// Reset restores the default zoom and removes any pan.
func (v *Viewport) Reset() {
	v.Unit = v.clamp(DefaultUnit)
	v.Offset = Offset{}
}

// ToScreen maps a world point to canvas pixels under the current pan and zoom.
func (v *Viewport) ToScreen(p Point) Point {
	return WorldToScreen(p, v.Unit, v.Offset, v.Width, v.Height)
}

// ToWorld maps canvas pixels back to world units.
func (v *Viewport) ToWorld(p Point) Point {
	return ScreenToWorld(p, v.Unit, v.Offset, v.Width, v.Height)
}

// Bounds returns the world rectangle currently visible on the canvas.
func (v *Viewport) Bounds() Rect {
	tl := v.ToWorld(Point{X: 0, Y: 0})
	br := v.ToWorld(Point{X: v.Width, Y: v.Height})
	return Rect{MinX: tl.X, MinY: br.Y, MaxX: br.X, MaxY: tl.Y}
}
