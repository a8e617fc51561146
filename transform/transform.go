// Package transform applies square matrices to point sets and builds the
// parametric matrices used by the visualizer: rotations, reflections,
// scalings, shears, projections and orthogonal permutations.
//
// All angles are in degrees.
package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/CK6170/Linviz-go/matrix"
)

var (
	// ErrAxis is returned for an axis or plane that does not exist in the
	// requested dimension.
	ErrAxis = errors.New("transform: invalid axis")

	// ErrDiagonalShear is returned when a shear entry targets the diagonal.
	ErrDiagonalShear = errors.New("transform: shear entry on the diagonal")

	// ErrSampling is returned for a non-positive sample step or negative extent.
	ErrSampling = errors.New("transform: invalid sample grid")

	// ErrPointSet is returned when a point set is empty or not 3D.
	ErrPointSet = errors.New("transform: point set must be N×3")
)

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Apply multiplies every vector by m. The matrix must be square with a
// supported order and every vector must match it.
func Apply(m *matrix.Matrix, vectors []*matrix.Vector) ([]*matrix.Vector, error) {
	n, err := m.Order()
	if err != nil {
		return nil, err
	}
	out := make([]*matrix.Vector, len(vectors))
	for i, v := range vectors {
		if v == nil || v.Length != n {
			return nil, fmt.Errorf("vector %d: %w", i, matrix.ErrDimensionMismatch)
		}
		out[i] = m.MulVector(v)
	}
	return out, nil
}

// Basis returns e1..en.
func Basis(n int) []*matrix.Vector {
	out := make([]*matrix.Vector, n)
	for i := range out {
		out[i] = matrix.Basis(n, i)
	}
	return out
}

// BasisImages returns m·e1..m·en, i.e. the columns of m.
func BasisImages(m *matrix.Matrix) ([]*matrix.Vector, error) {
	n, err := m.Order()
	if err != nil {
		return nil, err
	}
	return Apply(m, Basis(n))
}

// SampleGrid returns the lattice points with coordinates in
// {-extent, -extent+step, ..., extent} for dimension n (2 or 3). The points
// feed the grid-warp view.
func SampleGrid(n int, extent, step float64) ([]*matrix.Vector, error) {
	if n != 2 && n != 3 {
		return nil, fmt.Errorf("sample grid dimension %d: %w", n, matrix.ErrOrder)
	}
	if step <= 0 || extent < 0 {
		return nil, fmt.Errorf("extent %v step %v: %w", extent, step, ErrSampling)
	}
	k := int(math.Floor(extent/step + 1e-9))
	var coords []float64
	for i := -k; i <= k; i++ {
		coords = append(coords, float64(i)*step)
	}
	var out []*matrix.Vector
	if n == 2 {
		for _, x := range coords {
			for _, y := range coords {
				out = append(out, matrix.VectorOf(x, y))
			}
		}
		return out, nil
	}
	for _, x := range coords {
		for _, y := range coords {
			for _, z := range coords {
				out = append(out, matrix.VectorOf(x, y, z))
			}
		}
	}
	return out, nil
}

// Compose returns ms[0]·ms[1]·…·ms[k-1], so the last matrix acts first.
func Compose(ms ...*matrix.Matrix) (*matrix.Matrix, error) {
	if len(ms) == 0 {
		return nil, matrix.ErrEmpty
	}
	out := ms[0].Clone()
	for _, m := range ms[1:] {
		var err error
		if out, err = out.Mul(m); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Interpolate blends linearly from the identity (t=0) to m (t=1). It drives
// the animated transition of the basis vectors.
func Interpolate(m *matrix.Matrix, t float64) (*matrix.Matrix, error) {
	n, err := m.Order()
	if err != nil {
		return nil, err
	}
	out := matrix.Identity(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out.Values[i][j] = (1-t)*out.Values[i][j] + t*m.Values[i][j]
		}
	}
	return out, nil
}
