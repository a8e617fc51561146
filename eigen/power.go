// Package eigen implements the power method for the dominant eigenpair of a
// small square matrix, the reference dominant eigenvalue used to measure its
// error, and the per-iteration convergence statistics shown next to the
// iteration plot.
package eigen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/CK6170/Linviz-go/matrix"
)

const (
	DefaultMaxIter = 20
	DefaultTol     = 1e-8
)

var (
	ErrMaxIter       = errors.New("eigen: max_iter must be a positive integer")
	ErrTol           = errors.New("eigen: tol must be a positive number")
	ErrInitialVector = errors.New("eigen: initial vector dimension does not match matrix order")
	ErrFactorize     = errors.New("eigen: eigen decomposition failed")
)

// Options configures PowerMethod. Zero values select the defaults.
type Options struct {
	MaxIter       int
	Tol           float64
	InitialVector []float64
	// Random starts from a seeded random vector instead of all ones when no
	// InitialVector is given.
	Random bool
	Seed   int64
}

func (o Options) withDefaults() Options {
	if o.MaxIter == 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Tol == 0 {
		o.Tol = DefaultTol
	}
	return o
}

// Validate checks m and o without running anything. It is the synchronous
// gate used before a solve request leaves the client.
func Validate(m *matrix.Matrix, o Options) error {
	n, err := m.Order()
	if err != nil {
		return err
	}
	if o.MaxIter < 0 {
		return ErrMaxIter
	}
	if o.Tol < 0 || math.IsNaN(o.Tol) || math.IsInf(o.Tol, 0) {
		return ErrTol
	}
	if o.InitialVector != nil && len(o.InitialVector) != n {
		return fmt.Errorf("%w: got %d, want %d", ErrInitialVector, len(o.InitialVector), n)
	}
	return nil
}

// Record is one power-method iterate. Iteration starts at 1.
type Record struct {
	Iteration   int       `json:"iteration"`
	Eigenvalue  float64   `json:"eigenvalue"`
	Eigenvector []float64 `json:"eigenvector"`
}

// PowerMethod runs Iterate without cancellation or streaming.
func PowerMethod(m *matrix.Matrix, o Options) ([]Record, error) {
	return Iterate(context.Background(), m, o, nil)
}

// Iterate runs the power method: x ← A·x/‖A·x‖, λ = xᵀAx. It stops after
// MaxIter iterates or once two consecutive eigenvalue estimates differ by
// less than Tol. emit, when non-nil, sees every record as it is produced;
// an emit error aborts the run.
func Iterate(ctx context.Context, m *matrix.Matrix, o Options, emit func(Record) error) ([]Record, error) {
	if err := Validate(m, o); err != nil {
		return nil, err
	}
	o = o.withDefaults()
	n := m.Rows
	a := m.Dense()

	x := mat.NewVecDense(n, startVector(n, o))
	norm := mat.Norm(x, 2)
	if norm == 0 {
		return nil, fmt.Errorf("initial vector: %w", matrix.ErrZeroVector)
	}
	x.ScaleVec(1/norm, x)

	records := make([]Record, 0, o.MaxIter)
	var y, ay mat.VecDense
	for k := 1; k <= o.MaxIter; k++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		y.MulVec(a, x)
		norm = mat.Norm(&y, 2)
		if norm == 0 {
			return records, fmt.Errorf("iteration %d: A·x vanished: %w", k, matrix.ErrZeroVector)
		}
		y.ScaleVec(1/norm, &y)
		ay.MulVec(a, &y)
		rec := Record{
			Iteration:   k,
			Eigenvalue:  mat.Dot(&y, &ay),
			Eigenvector: append([]float64(nil), y.RawVector().Data...),
		}
		records = append(records, rec)
		if emit != nil {
			if err := emit(rec); err != nil {
				return records, err
			}
		}
		if k > 1 && math.Abs(rec.Eigenvalue-records[k-2].Eigenvalue) < o.Tol {
			break
		}
		x.CopyVec(&y)
	}
	return records, nil
}

func startVector(n int, o Options) []float64 {
	x := make([]float64, n)
	switch {
	case o.InitialVector != nil:
		copy(x, o.InitialVector)
	case o.Random:
		r := rand.New(rand.NewSource(o.Seed))
		for i := range x {
			x[i] = r.Float64()*2 - 1
		}
	default:
		for i := range x {
			x[i] = 1
		}
	}
	return x
}

// Eigenvalues returns all eigenvalues of m in the order gonum reports them.
func Eigenvalues(m *matrix.Matrix) ([]complex128, error) {
	if _, err := m.Order(); err != nil {
		return nil, err
	}
	var eig mat.Eigen
	if ok := eig.Factorize(m.Dense(), mat.EigenNone); !ok {
		return nil, ErrFactorize
	}
	return eig.Values(nil), nil
}

// DominantEigenvalue returns the real part of the eigenvalue of largest
// modulus. Ties prefer the larger real part.
func DominantEigenvalue(m *matrix.Matrix) (float64, error) {
	values, err := Eigenvalues(m)
	if err != nil {
		return 0, err
	}
	best := values[0]
	for _, v := range values[1:] {
		ab, av := cmplx.Abs(best), cmplx.Abs(v)
		if av > ab+1e-12 || (math.Abs(av-ab) <= 1e-12 && real(v) > real(best)) {
			best = v
		}
	}
	return real(best), nil
}
