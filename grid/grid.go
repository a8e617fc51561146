// Package grid lays out the background grid of the 2D canvas: "nice" step
// sizes following the 1/2/5×10^n rule and the minor, major and axis lines
// visible in a viewport.
package grid

import (
	"math"
	"strconv"
	"strings"

	"github.com/CK6170/Linviz-go/viewport"
)

// DefaultPixelsPerMajor is the target on-screen spacing of major lines.
const DefaultPixelsPerMajor = 80

// minorPerMajor is the number of minor intervals per major interval.
const minorPerMajor = 5

// maxLinesPerAxis bounds the output for degenerate viewports.
const maxLinesPerAxis = 4096

// Step is the world-space spacing of major and minor grid lines.
type Step struct {
	Major float64 `json:"major"`
	Minor float64 `json:"minor"`
}

// NiceFraction maps fraction ∈ [1,10) to 1, 2, 5 or 10.
func NiceFraction(fraction float64) float64 {
	switch {
	case fraction < 1.5:
		return 1
	case fraction < 3:
		return 2
	case fraction < 7.5:
		return 5
	default:
		return 10
	}
}

// StepSizes picks the major step closest to pixelsPerMajor on screen at the
// given zoom. unit must be > 0; pixelsPerMajor <= 0 selects the default.
func StepSizes(unit, pixelsPerMajor float64) Step {
	if pixelsPerMajor <= 0 {
		pixelsPerMajor = DefaultPixelsPerMajor
	}
	raw := pixelsPerMajor / unit
	magnitude := math.Pow(10, math.Floor(math.Log10(raw)))
	major := NiceFraction(raw/magnitude) * magnitude
	return Step{Major: major, Minor: major / minorPerMajor}
}

// Kind classifies a grid line.
type Kind int

const (
	KindMinor Kind = iota
	KindMajor
	KindAxis
)

func (k Kind) String() string {
	switch k {
	case KindMinor:
		return "minor"
	case KindMajor:
		return "major"
	case KindAxis:
		return "axis"
	default:
		return "unknown"
	}
}

// Orientation tells whether a line is drawn at a constant x or constant y.
type Orientation int

const (
	Vertical   Orientation = iota // x = Value
	Horizontal                    // y = Value
)

// Line is one grid line. Pos is its screen coordinate (x for vertical lines,
// y for horizontal ones). Label is set on major non-axis lines only.
type Line struct {
	Orientation Orientation `json:"orientation"`
	Kind        Kind        `json:"kind"`
	Value       float64     `json:"value"`
	Pos         float64     `json:"pos"`
	Label       string      `json:"label,omitempty"`
}

// Lines returns the grid lines visible in vp: minor lines first, then major
// and axis lines, for the x axis followed by the y axis.
func Lines(vp *viewport.Viewport, pixelsPerMajor float64) []Line {
	step := StepSizes(vp.Unit, pixelsPerMajor)
	b := vp.Bounds()
	var out []Line
	out = appendAxis(out, vp, Vertical, b.MinX, b.MaxX, step)
	out = appendAxis(out, vp, Horizontal, b.MinY, b.MaxY, step)
	return out
}

func appendAxis(out []Line, vp *viewport.Viewport, o Orientation, lo, hi float64, step Step) []Line {
	pos := func(v float64) float64 {
		if o == Vertical {
			return vp.ToScreen(viewport.Point{X: v}).X
		}
		return vp.ToScreen(viewport.Point{Y: v}).Y
	}

	n := int64(math.Ceil(lo / step.Minor))
	for count := 0; float64(n)*step.Minor <= hi && count < maxLinesPerAxis; n, count = n+1, count+1 {
		if n%minorPerMajor == 0 {
			continue
		}
		v := float64(n) * step.Minor
		out = append(out, Line{Orientation: o, Kind: KindMinor, Value: v, Pos: pos(v)})
	}

	n = int64(math.Ceil(lo / step.Major))
	for count := 0; float64(n)*step.Major <= hi && count < maxLinesPerAxis; n, count = n+1, count+1 {
		v := float64(n) * step.Major
		l := Line{Orientation: o, Kind: KindMajor, Value: v, Pos: pos(v)}
		if math.Abs(v) < step.Major/10 {
			l.Kind = KindAxis
			l.Value = 0
		} else {
			l.Label = FormatLabel(v)
		}
		out = append(out, l)
	}
	return out
}

// FormatLabel renders a tick value. Very small and very large magnitudes use
// exponential notation; everything else is fixed-point with at most six
// decimals and no trailing zeros.
func FormatLabel(v float64) string {
	a := math.Abs(v)
	if a != 0 && (a < 1e-4 || a >= 1e5) {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + sign + digits
	}
	s := strconv.FormatFloat(v, 'f', 6, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		s = "0"
	}
	return s
}
