package eigen

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/CK6170/Linviz-go/matrix"
)

// ErrRecords is returned when eigenvectors change dimension between iterates.
var ErrRecords = errors.New("eigen: inconsistent iteration records")

// Stat holds the convergence errors of one iterate. A nil error means the
// value is unavailable, which is distinct from a zero error.
type Stat struct {
	Iteration        int      `json:"iteration"`
	Eigenvalue       float64  `json:"eigenvalue"`
	EigenvalueError  *float64 `json:"eigenvalue_error"`
	EigenvectorError *float64 `json:"eigenvector_error"`
	TrueError        *float64 `json:"true_error"`
}

// Convergence derives one Stat per record. EigenvalueError and
// EigenvectorError compare against the previous iterate and are nil for the
// first one. TrueError compares against trueMax and is nil everywhere when no
// reference is given.
func Convergence(records []Record, trueMax *float64) ([]Stat, error) {
	out := make([]Stat, len(records))
	for i, r := range records {
		var prev *Record
		if i > 0 {
			prev = &records[i-1]
		}
		s, err := Step(prev, r, trueMax)
		if err != nil {
			return nil, fmt.Errorf("iterate %d: %w", i, err)
		}
		if s.Iteration == 0 {
			s.Iteration = i + 1
		}
		out[i] = s
	}
	return out, nil
}

// Step computes the Stat of cur given the previous iterate, which is nil for
// the first one. Streaming consumers call it once per record.
func Step(prev *Record, cur Record, trueMax *float64) (Stat, error) {
	s := Stat{Iteration: cur.Iteration, Eigenvalue: cur.Eigenvalue}
	if prev != nil {
		if len(prev.Eigenvector) != len(cur.Eigenvector) {
			return Stat{}, ErrRecords
		}
		s.EigenvalueError = ptr(math.Abs(cur.Eigenvalue - prev.Eigenvalue))
		s.EigenvectorError = ptr(floats.Distance(cur.Eigenvector, prev.Eigenvector, 2))
	}
	if trueMax != nil {
		s.TrueError = ptr(math.Abs(cur.Eigenvalue - *trueMax))
	}
	return s, nil
}

// Records zips parallel eigenvalue and eigenvector series, as returned by
// the backend, into records numbered from 1.
func Records(eigenvalues []float64, vectors [][]float64) ([]Record, error) {
	if len(eigenvalues) != len(vectors) {
		return nil, fmt.Errorf("%d eigenvalues vs %d vectors: %w", len(eigenvalues), len(vectors), ErrRecords)
	}
	out := make([]Record, len(eigenvalues))
	for i := range eigenvalues {
		out[i] = Record{Iteration: i + 1, Eigenvalue: eigenvalues[i], Eigenvector: vectors[i]}
	}
	return out, nil
}

// Verification compares a reported dominant eigenvalue with a local solve.
type Verification struct {
	Reported float64 `json:"reported"`
	Local    float64 `json:"local"`
	Agrees   bool    `json:"agrees"`
}

// Verify recomputes the dominant eigenvalue of m and checks that reported is
// within tol of it, relative to max(1, |local|).
func Verify(m *matrix.Matrix, reported, tol float64) (Verification, error) {
	local, err := DominantEigenvalue(m)
	if err != nil {
		return Verification{}, err
	}
	scale := math.Max(1, math.Abs(local))
	return Verification{
		Reported: reported,
		Local:    local,
		Agrees:   math.Abs(reported-local) <= tol*scale,
	}, nil
}

func ptr(v float64) *float64 { return &v }
