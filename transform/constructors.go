package transform

import (
	"fmt"
	"math"

	"github.com/CK6170/Linviz-go/matrix"
)

// Axis names a coordinate axis.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
	AxisW
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	case AxisW:
		return "w"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Plane names a 3D coordinate plane.
type Plane int

const (
	PlaneXY Plane = iota
	PlaneYZ
	PlaneXZ
)

// Normal returns the axis perpendicular to the plane.
func (p Plane) Normal() (Axis, error) {
	switch p {
	case PlaneXY:
		return AxisZ, nil
	case PlaneYZ:
		return AxisX, nil
	case PlaneXZ:
		return AxisY, nil
	default:
		return 0, fmt.Errorf("plane %d: %w", int(p), ErrAxis)
	}
}

// PlaneRotation rotates by deg in the (i, j) coordinate plane of an
// n-dimensional space, taking axis i towards axis j.
func PlaneRotation(n, i, j int, deg float64) (*matrix.Matrix, error) {
	if i < 0 || j < 0 || i >= n || j >= n || i == j {
		return nil, fmt.Errorf("plane (%d,%d) in %dD: %w", i, j, n, ErrAxis)
	}
	c, s := math.Cos(Radians(deg)), math.Sin(Radians(deg))
	m := matrix.Identity(n)
	m.Values[i][i], m.Values[i][j] = c, -s
	m.Values[j][i], m.Values[j][j] = s, c
	return m, nil
}

// Rotation2D returns [[cosθ, -sinθ], [sinθ, cosθ]].
func Rotation2D(deg float64) *matrix.Matrix {
	m, _ := PlaneRotation(2, 0, 1, deg)
	return m
}

// RotationX rotates about the x axis (y towards z).
func RotationX(deg float64) *matrix.Matrix {
	m, _ := PlaneRotation(3, 1, 2, deg)
	return m
}

// RotationY rotates about the y axis (z towards x).
func RotationY(deg float64) *matrix.Matrix {
	m, _ := PlaneRotation(3, 2, 0, deg)
	return m
}

// RotationZ rotates about the z axis (x towards y).
func RotationZ(deg float64) *matrix.Matrix {
	m, _ := PlaneRotation(3, 0, 1, deg)
	return m
}

// Rotation returns the 3D right-handed rotation about axis.
func Rotation(axis Axis, deg float64) (*matrix.Matrix, error) {
	switch axis {
	case AxisX:
		return RotationX(deg), nil
	case AxisY:
		return RotationY(deg), nil
	case AxisZ:
		return RotationZ(deg), nil
	default:
		return nil, fmt.Errorf("3D rotation about %s: %w", axis, ErrAxis)
	}
}

// Reflection2D reflects across the line through the origin at angle deg.
func Reflection2D(deg float64) *matrix.Matrix {
	c, s := math.Cos(2*Radians(deg)), math.Sin(2*Radians(deg))
	return &matrix.Matrix{Rows: 2, Cols: 2, Values: [][]float64{
		{c, s},
		{s, -c},
	}}
}

// ReflectionPlane reflects 3D space across a coordinate plane.
func ReflectionPlane(p Plane) (*matrix.Matrix, error) {
	axis, err := p.Normal()
	if err != nil {
		return nil, err
	}
	m := matrix.Identity(3)
	m.Values[axis][axis] = -1
	return m, nil
}

// Scaling returns diag(factors...). Between two and four factors are accepted.
func Scaling(factors ...float64) (*matrix.Matrix, error) {
	n := len(factors)
	if n < matrix.MinOrder || n > matrix.MaxOrder {
		return nil, fmt.Errorf("scaling with %d factors: %w", n, matrix.ErrOrder)
	}
	m := matrix.NewMatrix(n, n)
	for i, f := range factors {
		m.Values[i][i] = f
	}
	return m, nil
}

// Entry is one off-diagonal shear coefficient.
type Entry struct {
	Row, Col int
	Value    float64
}

// Shear returns the n×n identity with the given off-diagonal entries set.
func Shear(n int, entries ...Entry) (*matrix.Matrix, error) {
	if n < matrix.MinOrder || n > matrix.MaxOrder {
		return nil, fmt.Errorf("shear order %d: %w", n, matrix.ErrOrder)
	}
	m := matrix.Identity(n)
	for _, e := range entries {
		if e.Row < 0 || e.Col < 0 || e.Row >= n || e.Col >= n {
			return nil, fmt.Errorf("shear entry (%d,%d): %w", e.Row, e.Col, ErrAxis)
		}
		if e.Row == e.Col {
			return nil, fmt.Errorf("shear entry (%d,%d): %w", e.Row, e.Col, ErrDiagonalShear)
		}
		m.Values[e.Row][e.Col] = e.Value
	}
	return m, nil
}

// ProjectionLine2D projects the plane orthogonally onto the line through the
// origin at angle deg.
func ProjectionLine2D(deg float64) *matrix.Matrix {
	c, s := math.Cos(Radians(deg)), math.Sin(Radians(deg))
	return &matrix.Matrix{Rows: 2, Cols: 2, Values: [][]float64{
		{c * c, c * s},
		{c * s, s * s},
	}}
}

// ProjectionAxis projects n-dimensional space onto one coordinate axis.
func ProjectionAxis(n int, axis Axis) (*matrix.Matrix, error) {
	if n < matrix.MinOrder || n > matrix.MaxOrder {
		return nil, fmt.Errorf("projection order %d: %w", n, matrix.ErrOrder)
	}
	if int(axis) < 0 || int(axis) >= n {
		return nil, fmt.Errorf("projection onto %s in %dD: %w", axis, n, ErrAxis)
	}
	m := matrix.NewMatrix(n, n)
	m.Values[axis][axis] = 1
	return m, nil
}

// ProjectionPlane projects 3D space onto a coordinate plane.
func ProjectionPlane(p Plane) (*matrix.Matrix, error) {
	axis, err := p.Normal()
	if err != nil {
		return nil, err
	}
	m := matrix.Identity(3)
	m.Values[axis][axis] = 0
	return m, nil
}

// Permutation swaps coordinates i and j of n-dimensional space.
func Permutation(n, i, j int) (*matrix.Matrix, error) {
	if n < matrix.MinOrder || n > matrix.MaxOrder {
		return nil, fmt.Errorf("permutation order %d: %w", n, matrix.ErrOrder)
	}
	if i < 0 || j < 0 || i >= n || j >= n {
		return nil, fmt.Errorf("swap (%d,%d) in %dD: %w", i, j, n, ErrAxis)
	}
	m := matrix.Identity(n)
	m.Values[i][i], m.Values[j][j] = 0, 0
	m.Values[i][j], m.Values[j][i] = 1, 1
	if i == j {
		m.Values[i][i] = 1
	}
	return m, nil
}

// Householder returns I - 2·n·nᵀ/(nᵀn), the reflection across the hyperplane
// orthogonal to normal.
func Householder(normal *matrix.Vector) (*matrix.Matrix, error) {
	n := normal.Length
	if n < matrix.MinOrder || n > matrix.MaxOrder {
		return nil, fmt.Errorf("householder order %d: %w", n, matrix.ErrOrder)
	}
	nn, _ := normal.Dot(normal)
	if nn == 0 {
		return nil, matrix.ErrZeroVector
	}
	m := matrix.Identity(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Values[i][j] -= 2 * normal.Values[i] * normal.Values[j] / nn
		}
	}
	return m, nil
}
