package ui

import (
	"fmt"
	"strings"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/grid"
	"github.com/CK6170/Linviz-go/insight"
	"github.com/CK6170/Linviz-go/matrix"
	"github.com/CK6170/Linviz-go/pca"
	"github.com/CK6170/Linviz-go/viewport"
)

// FormatReport renders an insight report as a framed text block.
func FormatReport(r *insight.Report) string {
	sb := &strings.Builder{}
	sb.WriteString(matrix.MatrixLine + "\n")
	fmt.Fprintf(sb, "%s matrix, order %d\n", r.Kind, r.Order)
	for _, in := range r.Insights {
		fmt.Fprintf(sb, "%-14s %s\n", in.Title+":", in.Description)
	}
	sb.WriteString(matrix.MatrixLine)
	return sb.String()
}

// FormatConvergence renders one row per iterate. Unavailable errors print
// as "-".
func FormatConvergence(stats []eigen.Stat) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "%5s %14s %14s %14s %14s\n", "iter", "eigenvalue", "d(lambda)", "d(vector)", "true error")
	for _, s := range stats {
		fmt.Fprintf(sb, "%5d %14.8f %14s %14s %14s\n",
			s.Iteration, s.Eigenvalue, optional(s.EigenvalueError), optional(s.EigenvectorError), optional(s.TrueError))
	}
	return sb.String()
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.3e", *v)
}

// FormatPCAView renders the variance summary of a PCA selection.
func FormatPCAView(v pca.View) string {
	sb := &strings.Builder{}
	for _, c := range v.Components {
		mark := " "
		if c.Component <= v.Selected {
			mark = "*"
		}
		fmt.Fprintf(sb, "%s %s\n", mark, c.Text)
	}
	fmt.Fprintf(sb, "Cumulative (%d PCs): %.1f%%, %s\n", v.Selected, v.Cumulative*100, v.Tier)
	plots := []string{}
	if v.Eligibility.Plot2D {
		plots = append(plots, "2D")
	}
	if v.Eligibility.Plot3D {
		plots = append(plots, "3D")
	}
	if len(plots) == 0 {
		plots = append(plots, "none")
	}
	fmt.Fprintf(sb, "Plots: %s", strings.Join(plots, ", "))
	return sb.String()
}

// FormatGrid draws the grid lines of vp as ASCII art, one character cell
// per cellW×cellH pixels. Axes are '#', major lines '+' and minor lines '.'.
func FormatGrid(vp *viewport.Viewport, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	cellW, cellH := vp.Width/float64(cols), vp.Height/float64(rows)
	canvas := make([][]byte, rows)
	for i := range canvas {
		canvas[i] = []byte(strings.Repeat(" ", cols))
	}
	mark := map[grid.Kind]byte{grid.KindMinor: '.', grid.KindMajor: '+', grid.KindAxis: '#'}
	all := grid.Lines(vp, grid.DefaultPixelsPerMajor)
	// Minor lines first so heavier strokes overwrite them.
	for _, kind := range []grid.Kind{grid.KindMinor, grid.KindMajor, grid.KindAxis} {
		for _, l := range all {
			if l.Kind != kind {
				continue
			}
			switch l.Orientation {
			case grid.Vertical:
				c := int(l.Pos / cellW)
				if c >= 0 && c < cols {
					for r := range canvas {
						canvas[r][c] = mark[kind]
					}
				}
			case grid.Horizontal:
				r := int(l.Pos / cellH)
				if r >= 0 && r < rows {
					for c := range canvas[r] {
						canvas[r][c] = mark[kind]
					}
				}
			}
		}
	}
	lines := make([]string, rows)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return strings.Join(lines, "\n")
}

// PrintMatrix prints m with a title.
func PrintMatrix(m *matrix.Matrix, title string) {
	fmt.Println(m.ToStrings(title, ""))
}

// PrintIterationLine prints a single in-place (carriage-return) line with
// the latest power-method iterate.
func PrintIterationLine(s eigen.Stat) {
	line := fmt.Sprintf("\r\033[96m[ITER %04d] lambda=%.10f d=%s\033[0m", s.Iteration, s.Eigenvalue, optional(s.EigenvalueError))
	line += "                    "
	fmt.Print(line)
}
