package matrix

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// EPSILON is the tolerance below which a determinant counts as zero.
const EPSILON = 1e-10

const MatrixLine = "------------------------------------------------------------------"

// Supported square orders for the visualizer core.
const (
	MinOrder = 2
	MaxOrder = 4
)

// Matrix is a dense row-major matrix. Rows are outer, columns inner.
type Matrix struct {
	Rows, Cols int
	Values     [][]float64
}

func NewMatrix(rows, cols int) *Matrix {
	values := make([][]float64, rows)
	for i := range values {
		values[i] = make([]float64, cols)
	}
	return &Matrix{Rows: rows, Cols: cols, Values: values}
}

// Identity returns the n×n identity matrix.
func Identity(n int) *Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m.Values[i][i] = 1
	}
	return m
}

// FromRows copies rows into a new Matrix. Every row must have the same,
// non-zero length and every value must be finite.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		if len(row) != m.Cols {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), m.Cols, ErrRagged)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("cell (%d,%d): %w", i, j, ErrNotFinite)
			}
		}
		copy(m.Values[i], row)
	}
	return m, nil
}

// Square is FromRows followed by an order check.
func Square(rows [][]float64) (*Matrix, error) {
	m, err := FromRows(rows)
	if err != nil {
		return nil, err
	}
	if _, err := m.Order(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Matrix) IsSquare() bool { return m.Rows == m.Cols }

// Order returns n for an n×n matrix with MinOrder <= n <= MaxOrder.
func (m *Matrix) Order() (int, error) {
	if m == nil || m.Rows == 0 {
		return 0, ErrEmpty
	}
	if !m.IsSquare() {
		return 0, fmt.Errorf("%dx%d: %w", m.Rows, m.Cols, ErrNonSquare)
	}
	if m.Rows < MinOrder || m.Rows > MaxOrder {
		return 0, fmt.Errorf("order %d: %w", m.Rows, ErrOrder)
	}
	return m.Rows, nil
}

func (m *Matrix) Clone() *Matrix {
	c := NewMatrix(m.Rows, m.Cols)
	for i := range m.Values {
		copy(c.Values[i], m.Values[i])
	}
	return c
}

// Slice returns a deep copy of the values, suitable for JSON encoding.
func (m *Matrix) Slice() [][]float64 {
	return m.Clone().Values
}

// Mul returns m·other.
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.Cols != other.Rows {
		return nil, fmt.Errorf("%dx%d · %dx%d: %w", m.Rows, m.Cols, other.Rows, other.Cols, ErrDimensionMismatch)
	}
	result := NewMatrix(m.Rows, other.Cols)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < other.Cols; j++ {
			for k := 0; k < m.Cols; k++ {
				result.Values[i][j] += m.Values[i][k] * other.Values[k][j]
			}
		}
	}
	return result, nil
}

// MulVector returns m·v, or nil when the dimensions do not agree.
func (m *Matrix) MulVector(v *Vector) *Vector {
	if m.Cols != v.Length {
		return nil
	}
	result := NewVector(m.Rows)
	for i := 0; i < m.Rows; i++ {
		for k := 0; k < m.Cols; k++ {
			result.Values[i] += m.Values[i][k] * v.Values[k]
		}
	}
	return result
}

func (m *Matrix) Transpose() *Matrix {
	t := NewMatrix(m.Cols, m.Rows)
	for i := range m.Values {
		for j := range m.Values[i] {
			t.Values[j][i] = m.Values[i][j]
		}
	}
	return t
}

// Trace sums the diagonal. Only meaningful for square matrices.
func (m *Matrix) Trace() float64 {
	sum := 0.0
	for i := 0; i < m.Rows && i < m.Cols; i++ {
		sum += m.Values[i][i]
	}
	return sum
}

// Det returns the determinant. Orders 2 and 3 use the closed forms; larger
// matrices go through a partially pivoted LU factorization.
func (m *Matrix) Det() (float64, error) {
	if !m.IsSquare() {
		return 0, ErrNonSquare
	}
	a := m.Values
	switch m.Rows {
	case 0:
		return 0, ErrEmpty
	case 1:
		return a[0][0], nil
	case 2:
		return a[0][0]*a[1][1] - a[0][1]*a[1][0], nil
	case 3:
		return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
			a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
			a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0]), nil
	}
	var lu mat.LU
	lu.Factorize(m.Dense())
	return lu.Det(), nil
}

// Inverse returns m⁻¹. It fails with ErrSingular when |det| <= EPSILON.
func (m *Matrix) Inverse() (*Matrix, error) {
	det, err := m.Det()
	if err != nil {
		return nil, err
	}
	if math.Abs(det) <= EPSILON {
		return nil, ErrSingular
	}
	var inv mat.Dense
	if err := inv.Inverse(m.Dense()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	return FromDense(&inv), nil
}

// PseudoInverse returns the Moore–Penrose pseudoinverse computed from a thin
// SVD. Singular values below a relative cutoff are treated as zero.
func (m *Matrix) PseudoInverse() *Matrix {
	var svd mat.SVD
	ok := svd.Factorize(m.Dense(), mat.SVDThin)
	if !ok {
		return nil
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	maxS := 0.0
	for _, si := range s {
		if si > maxS {
			maxS = si
		}
	}
	eps := 1e-12 * math.Max(float64(m.Rows), float64(m.Cols)) * maxS

	sp := mat.NewDense(len(s), len(s), nil)
	for i := range s {
		if s[i] > eps {
			sp.Set(i, i, 1.0/s[i])
		}
	}

	var vSp mat.Dense
	vSp.Mul(&v, sp)
	var pinv mat.Dense
	pinv.Mul(&vSp, u.T())
	return FromDense(&pinv)
}

// Dense converts m to a gonum matrix.
func (m *Matrix) Dense() *mat.Dense {
	d := mat.NewDense(m.Rows, m.Cols, nil)
	for i := 0; i < m.Rows; i++ {
		d.SetRow(i, m.Values[i])
	}
	return d
}

// FromDense copies a gonum matrix.
func FromDense(d mat.Matrix) *Matrix {
	r, c := d.Dims()
	m := NewMatrix(r, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Values[i][j] = d.At(i, j)
		}
	}
	return m
}

// EqualApprox reports whether m and other have the same shape and all
// entries within tol.
func (m *Matrix) EqualApprox(other *Matrix, tol float64) bool {
	if other == nil || m.Rows != other.Rows || m.Cols != other.Cols {
		return false
	}
	return mat.EqualApprox(m.Dense(), other.Dense(), tol)
}

func (m *Matrix) GetRow(i int) *Vector {
	v := NewVector(m.Cols)
	copy(v.Values, m.Values[i])
	return v
}

// GetCol returns column j, i.e. the image of the j-th standard basis vector.
func (m *Matrix) GetCol(j int) *Vector {
	v := NewVector(m.Rows)
	for i := 0; i < m.Rows; i++ {
		v.Values[i] = m.Values[i][j]
	}
	return v
}

func (m *Matrix) SetRow(i int, v *Vector) {
	copy(m.Values[i], v.Values)
}

// ToStrings renders the matrix as a framed text block. format is a fmt verb
// applied per cell; it defaults to "%10.4f".
func (m *Matrix) ToStrings(title, format string) string {
	if format == "" {
		format = "%10.4f"
	}
	sb := &strings.Builder{}
	sb.WriteString(MatrixLine + "\n")
	fmt.Fprintf(sb, "%s  ( %d x %d )\n", title, m.Rows, m.Cols)
	for i := range m.Values {
		fmt.Fprintf(sb, "[%02d]", i)
		for j := range m.Values[i] {
			fmt.Fprintf(sb, " "+format, m.Values[i][j])
		}
		sb.WriteString("\n")
	}
	sb.WriteString(MatrixLine)
	return sb.String()
}
