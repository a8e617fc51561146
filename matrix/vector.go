package matrix

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Vector is a dense length-N vector of float64 values.
type Vector struct {
	Length int
	Values []float64
}

// NewVector allocates a vector of the given length initialized with zeros.
func NewVector(length int) *Vector {
	return &Vector{Length: length, Values: make([]float64, length)}
}

// VectorOf copies values into a new Vector.
func VectorOf(values ...float64) *Vector {
	v := NewVector(len(values))
	copy(v.Values, values)
	return v
}

// Basis returns the i-th standard basis vector of dimension n.
func Basis(n, i int) *Vector {
	v := NewVector(n)
	v.Values[i] = 1
	return v
}

func (v *Vector) Clone() *Vector { return VectorOf(v.Values...) }

// Norm returns the Euclidean norm of v.
func (v *Vector) Norm() float64 {
	return floats.Norm(v.Values, 2)
}

// Sub returns v - other (element-wise subtraction).
//
// The caller must ensure both vectors have the same Length.
func (v *Vector) Sub(other *Vector) *Vector {
	result := NewVector(v.Length)
	floats.SubTo(result.Values, v.Values, other.Values)
	return result
}

// Dot returns the inner product of v and other.
func (v *Vector) Dot(other *Vector) (float64, error) {
	if v.Length != other.Length {
		return 0, fmt.Errorf("dot %d·%d: %w", v.Length, other.Length, ErrDimensionMismatch)
	}
	return floats.Dot(v.Values, other.Values), nil
}

// Distance returns ‖v - other‖₂.
func (v *Vector) Distance(other *Vector) (float64, error) {
	if v.Length != other.Length {
		return 0, fmt.Errorf("distance %d/%d: %w", v.Length, other.Length, ErrDimensionMismatch)
	}
	return floats.Distance(v.Values, other.Values, 2), nil
}

// Normalize returns v/‖v‖. A zero vector yields ErrZeroVector instead of NaNs.
func (v *Vector) Normalize() (*Vector, error) {
	n := v.Norm()
	if n == 0 {
		return nil, ErrZeroVector
	}
	out := v.Clone()
	floats.Scale(1/n, out.Values)
	return out, nil
}

// ToStrings formats the vector as a framed column for terminal output.
func (v *Vector) ToStrings(title, format string) string {
	sb := &strings.Builder{}
	sb.WriteString(MatrixLine + "\n")
	sb.WriteString(title + "\n")
	fmtStr := "%10.4f"
	if format != "" {
		fmtStr = format
	}
	for i, val := range v.Values {
		fmt.Fprintf(sb, "[%02d] "+fmtStr+"\n", i, val)
	}
	sb.WriteString(MatrixLine)
	return sb.String()
}
