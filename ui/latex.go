package ui

import (
	"fmt"
	"strings"

	"github.com/CK6170/Linviz-go/insight"
	"github.com/CK6170/Linviz-go/matrix"
)

// latexCell prints cells with up to six decimals and no trailing zeros.
func latexCell(v float64) string {
	s := fmt.Sprintf("%0.6f", v)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// MatrixLaTeX renders m as a pmatrix.
func MatrixLaTeX(m *matrix.Matrix) string {
	return pmatrix(m.Values)
}

// VectorLaTeX renders v as a column pmatrix, or a row when row is set.
func VectorLaTeX(v *matrix.Vector, row bool) string {
	if row {
		return pmatrix([][]float64{v.Values})
	}
	rows := make([][]float64, v.Length)
	for i, x := range v.Values {
		rows[i] = []float64{x}
	}
	return pmatrix(rows)
}

func pmatrix(rows [][]float64) string {
	sb := &strings.Builder{}
	sb.WriteString("\\begin{pmatrix}")
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		for j, x := range r {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(latexCell(x))
		}
	}
	sb.WriteString("\\end{pmatrix}")
	return sb.String()
}

// ReportLaTeX renders the matrix, its determinant, trace, real eigenvalues
// and inverse (or pseudo-inverse) as an align* block.
func ReportLaTeX(m *matrix.Matrix, r *insight.Report) string {
	sb := &strings.Builder{}
	sb.WriteString("\\begin{align*}\n")
	fmt.Fprintf(sb, "A &= %s \\\\\n", MatrixLaTeX(m))
	fmt.Fprintf(sb, "\\det A &= %s \\\\\n", latexCell(r.Determinant))
	fmt.Fprintf(sb, "\\operatorname{tr} A &= %s", latexCell(r.Trace))
	if len(r.RealEigenvalues) > 0 {
		parts := make([]string, len(r.RealEigenvalues))
		for i, l := range r.RealEigenvalues {
			parts[i] = latexCell(l)
		}
		fmt.Fprintf(sb, " \\\\\n\\lambda &\\in \\{%s\\}", strings.Join(parts, ", "))
	}
	if r.Inverse != nil {
		fmt.Fprintf(sb, " \\\\\nA^{-1} &= %s", pmatrix(r.Inverse))
	}
	if r.PseudoInverse != nil {
		fmt.Fprintf(sb, " \\\\\nA^{+} &= %s", pmatrix(r.PseudoInverse))
	}
	sb.WriteString("\n\\end{align*}\n")
	return sb.String()
}
