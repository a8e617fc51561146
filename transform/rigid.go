package transform

import (
	"fmt"

	"github.com/CK6170/Linviz-go/matrix"
)

// Vec3 is a 3D triple. For rotations the components are angles in degrees
// about x, y and z.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EulerRotation returns Rz·Ry·Rx, i.e. x is applied first.
func EulerRotation(rot Vec3) *matrix.Matrix {
	r, _ := Compose(RotationZ(rot.Z), RotationY(rot.Y), RotationX(rot.X))
	return r
}

// RotateTranslate rotates every row of points (an N×3 point set) by the Euler
// angles and then adds the translation.
func RotateTranslate(points *matrix.Matrix, rot, trans Vec3) (*matrix.Matrix, error) {
	if points == nil || points.Rows == 0 || points.Cols != 3 {
		return nil, ErrPointSet
	}
	r := EulerRotation(rot)
	t := [3]float64{trans.X, trans.Y, trans.Z}
	out := matrix.NewMatrix(points.Rows, 3)
	for i := 0; i < points.Rows; i++ {
		p := r.MulVector(points.GetRow(i))
		if p == nil {
			return nil, fmt.Errorf("point %d: %w", i, matrix.ErrDimensionMismatch)
		}
		for k := 0; k < 3; k++ {
			out.Values[i][k] = p.Values[k] + t[k]
		}
	}
	return out, nil
}
