// Package insight summarises what a small square matrix does to space:
// its structural type, determinant, trace, invertibility, where the basis
// vectors land and its real eigenvalues.
package insight

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/CK6170/Linviz-go/eigen"
	"github.com/CK6170/Linviz-go/matrix"
)

// ImagTolerance is the largest imaginary part an eigenvalue may have and
// still be reported as real.
const ImagTolerance = 1e-8

// ErrKind is returned when decoding an unknown matrix kind name.
var ErrKind = errors.New("insight: unknown matrix kind")

// Kind is the structural class of a matrix, most specific first.
type Kind int

const (
	General Kind = iota
	Symmetric
	Diagonal
	Identity
)

func (k Kind) String() string {
	switch k {
	case Identity:
		return "Identity"
	case Diagonal:
		return "Diagonal"
	case Symmetric:
		return "Symmetric"
	default:
		return "General"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{General, Symmetric, Diagonal, Identity} {
		if string(b) == c.String() {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("%w %q", ErrKind, b)
}

// Classify returns the most specific Kind of a square matrix using exact
// comparisons.
func Classify(m *matrix.Matrix) Kind {
	a := m.Values
	n := m.Rows
	offZero, unitDiag, symmetric := true, true, true
	for i := 0; i < n; i++ {
		if a[i][i] != 1 {
			unitDiag = false
		}
		for j := 0; j < n; j++ {
			if i != j && a[i][j] != 0 {
				offZero = false
			}
			if a[i][j] != a[j][i] {
				symmetric = false
			}
		}
	}
	switch {
	case offZero && unitDiag:
		return Identity
	case offZero:
		return Diagonal
	case symmetric:
		return Symmetric
	default:
		return General
	}
}

// ScalingLabel names the n-dimensional measure a determinant scales.
func ScalingLabel(n int) string {
	switch n {
	case 2:
		return "area"
	case 3:
		return "volume"
	default:
		return fmt.Sprintf("%dD hypervolume", n)
	}
}

// Insight is one titled observation about the matrix.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Report is the full analysis of one matrix. Inverse is nil for singular
// matrices, which carry the Moore-Penrose PseudoInverse instead.
// RealEigenvalues is nil when the decomposition failed.
type Report struct {
	Order           int         `json:"order"`
	Kind            Kind        `json:"kind"`
	Determinant     float64     `json:"determinant"`
	Trace           float64     `json:"trace"`
	Invertible      bool        `json:"invertible"`
	Scaling         string      `json:"scaling"`
	BasisImages     [][]float64 `json:"basis_images"`
	RealEigenvalues []float64   `json:"real_eigenvalues"`
	EigenAvailable  bool        `json:"eigen_available"`
	Inverse         [][]float64 `json:"inverse,omitempty"`
	PseudoInverse   [][]float64 `json:"pseudo_inverse,omitempty"`
	Insights        []Insight   `json:"insights"`
}

// Analyze builds the Report for a square matrix of order 2 to 4.
func Analyze(m *matrix.Matrix) (*Report, error) {
	n, err := m.Order()
	if err != nil {
		return nil, err
	}
	det, err := m.Det()
	if err != nil {
		return nil, err
	}
	r := &Report{
		Order:       n,
		Kind:        Classify(m),
		Determinant: det,
		Trace:       m.Trace(),
		Invertible:  math.Abs(det) > matrix.EPSILON,
		Scaling:     ScalingLabel(n),
	}
	for j := 0; j < n; j++ {
		r.BasisImages = append(r.BasisImages, m.GetCol(j).Values)
	}
	if r.Invertible {
		if inv, err := m.Inverse(); err == nil {
			r.Inverse = inv.Values
		}
	} else if pinv := m.PseudoInverse(); pinv != nil {
		r.PseudoInverse = pinv.Values
	}
	if values, err := eigen.Eigenvalues(m); err == nil {
		r.EigenAvailable = true
		r.RealEigenvalues = RealParts(values)
	}
	r.Insights = describe(r)
	return r, nil
}

// RealParts keeps the eigenvalues whose imaginary part is below
// ImagTolerance, rounded to 4 decimals and sorted in descending order.
func RealParts(values []complex128) []float64 {
	out := []float64{}
	for _, v := range values {
		if math.Abs(imag(v)) < ImagTolerance {
			out = append(out, Round4(real(v)))
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(out)))
	return out
}

// Round4 rounds to 4 decimal places and folds -0 into 0.
func Round4(v float64) float64 {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		return 0
	}
	return r
}

func describe(r *Report) []Insight {
	var out []Insight

	switch r.Kind {
	case Identity:
		out = append(out, Insight{"Matrix type", "Identity: every vector stays where it is."})
	case Diagonal:
		out = append(out, Insight{"Matrix type", "Diagonal: each axis is scaled independently."})
	case Symmetric:
		out = append(out, Insight{"Matrix type", "Symmetric: real eigenvalues with perpendicular eigenvectors."})
	default:
		out = append(out, Insight{"Matrix type", "General: no special structure."})
	}

	det := fmt.Sprintf("%.4f", r.Determinant)
	switch {
	case !r.Invertible:
		out = append(out, Insight{"Determinant", fmt.Sprintf("Determinant is %s: space collapses and %s becomes zero.", det, r.Scaling)})
	case r.Determinant < 0:
		out = append(out, Insight{"Determinant", fmt.Sprintf("Scales %s by %.4f and flips orientation.", r.Scaling, math.Abs(r.Determinant))})
	default:
		out = append(out, Insight{"Determinant", fmt.Sprintf("Scales %s by %s.", r.Scaling, det)})
	}

	out = append(out, Insight{"Trace", fmt.Sprintf("Trace is %.4f, the sum of the eigenvalues.", r.Trace)})

	if r.Invertible {
		out = append(out, Insight{"Invertibility", "Invertible: the transformation can be undone."})
	} else {
		out = append(out, Insight{"Invertibility", "Not invertible: information is lost."})
	}

	imgs := make([]string, len(r.BasisImages))
	for i, col := range r.BasisImages {
		imgs[i] = fmt.Sprintf("e%d -> %s", i+1, formatVector(col))
	}
	out = append(out, Insight{"Basis vectors", strings.Join(imgs, ", ")})

	switch {
	case !r.EigenAvailable:
		out = append(out, Insight{"Eigenvalues", "Eigenvalues not available."})
	case len(r.RealEigenvalues) == 0:
		out = append(out, Insight{"Eigenvalues", "No real eigenvalues: every direction is rotated."})
	default:
		vals := make([]string, len(r.RealEigenvalues))
		for i, v := range r.RealEigenvalues {
			vals[i] = formatNumber(v)
		}
		out = append(out, Insight{"Eigenvalues", "Real eigenvalues: " + strings.Join(vals, ", ")})
	}
	return out
}

func formatVector(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = formatNumber(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatNumber(v float64) string {
	s := strings.TrimRight(fmt.Sprintf("%.4f", Round4(v)), "0")
	return strings.TrimSuffix(s, ".")
}
