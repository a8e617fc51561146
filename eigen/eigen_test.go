package eigen

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CK6170/Linviz-go/matrix"
)

func mustMatrix(t *testing.T, rows [][]float64) *matrix.Matrix {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	return m
}

func TestPowerMethodConverges(t *testing.T) {
	m := mustMatrix(t, [][]float64{{2, 1}, {1, 3}})
	recs, err := PowerMethod(m, Options{MaxIter: 100, Tol: 1e-12})
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	require.Less(t, len(recs), 100)

	want := (5 + math.Sqrt(5)) / 2
	last := recs[len(recs)-1]
	require.InDelta(t, want, last.Eigenvalue, 1e-9)
	require.Equal(t, len(recs), last.Iteration)
	require.InDelta(t, 1, matrix.VectorOf(last.Eigenvector...).Norm(), 1e-12)

	// A·v ≈ λ·v
	av := m.MulVector(matrix.VectorOf(last.Eigenvector...))
	for i := range av.Values {
		require.InDelta(t, want*last.Eigenvector[i], av.Values[i], 1e-5)
	}
}

func TestPowerMethodDefaults(t *testing.T) {
	m := mustMatrix(t, [][]float64{{1, 0, 0}, {0, 0.5, 0}, {0, 0, 0.25}})
	recs, err := PowerMethod(m, Options{})
	require.NoError(t, err)
	require.LessOrEqual(t, len(recs), DefaultMaxIter)
	require.Equal(t, 1, recs[0].Iteration)
}

func TestPowerMethodInitialVector(t *testing.T) {
	m := mustMatrix(t, [][]float64{{3, 0}, {0, 1}})
	recs, err := PowerMethod(m, Options{InitialVector: []float64{0, 1}, MaxIter: 5})
	require.NoError(t, err)
	// Started in the eigenspace of 1, so it never leaves it.
	require.InDelta(t, 1, recs[0].Eigenvalue, 1e-12)

	_, err = PowerMethod(m, Options{InitialVector: []float64{1, 1, 1}})
	require.ErrorIs(t, err, ErrInitialVector)

	_, err = PowerMethod(m, Options{InitialVector: []float64{0, 0}})
	require.ErrorIs(t, err, matrix.ErrZeroVector)

	a, err := PowerMethod(m, Options{Random: true, Seed: 42, MaxIter: 3})
	require.NoError(t, err)
	b, err := PowerMethod(m, Options{Random: true, Seed: 42, MaxIter: 3})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestPowerMethodNilpotent(t *testing.T) {
	m := mustMatrix(t, [][]float64{{0, 1}, {0, 0}})
	recs, err := PowerMethod(m, Options{MaxIter: 10})
	require.ErrorIs(t, err, matrix.ErrZeroVector)
	require.Len(t, recs, 1)
}

func TestValidate(t *testing.T) {
	require.ErrorIs(t, Validate(mustMatrix(t, [][]float64{{1, 2, 3}, {4, 5, 6}}), Options{}), matrix.ErrNonSquare)
	require.ErrorIs(t, Validate(matrix.Identity(2), Options{MaxIter: -1}), ErrMaxIter)
	require.ErrorIs(t, Validate(matrix.Identity(2), Options{Tol: -1}), ErrTol)
	require.NoError(t, Validate(matrix.Identity(4), Options{InitialVector: []float64{1, 2, 3, 4}}))
}

func TestIterateStreamsAndCancels(t *testing.T) {
	m := mustMatrix(t, [][]float64{{2, 0}, {0, 1}})
	var seen []int
	recs, err := Iterate(context.Background(), m, Options{MaxIter: 4, Tol: 1e-300}, func(r Record) error {
		seen = append(seen, r.Iteration)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4}, seen)
	require.Len(t, recs, 4)

	stop := errors.New("stop")
	recs, err = Iterate(context.Background(), m, Options{MaxIter: 4}, func(r Record) error {
		if r.Iteration == 2 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	require.Len(t, recs, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Iterate(ctx, m, Options{}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDominantEigenvalue(t *testing.T) {
	for _, tc := range []struct {
		name string
		rows [][]float64
		want float64
	}{
		{"diagonal", [][]float64{{1, 0, 0}, {0, -4, 0}, {0, 0, 3}}, -4},
		{"symmetric", [][]float64{{2, 1}, {1, 3}}, (5 + math.Sqrt(5)) / 2},
		{"tie prefers positive", [][]float64{{2, 0}, {0, -2}}, 2},
		{"4x4", [][]float64{{4, 1, 0, 0}, {1, 3, 0, 0}, {0, 0, 2, 0}, {0, 0, 0, 1}}, (7 + math.Sqrt(5)) / 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DominantEigenvalue(mustMatrix(t, tc.rows))
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-10)
		})
	}
}

func TestConvergence(t *testing.T) {
	vals := []float64{2.0, 2.5, 2.49, 2.4999}
	vecs := [][]float64{{1, 0}, {0.6, 0.8}, {0.6, 0.8}, {0, 1}}
	recs, err := Records(vals, vecs)
	require.NoError(t, err)

	trueMax := 2.5
	stats, err := Convergence(recs, &trueMax)
	require.NoError(t, err)
	require.Len(t, stats, 4)

	require.Nil(t, stats[0].EigenvalueError)
	require.Nil(t, stats[0].EigenvectorError)

	for i, want := range []float64{0.5, 0.01, 0.0099} {
		require.InDelta(t, want, *stats[i+1].EigenvalueError, 1e-12)
	}
	for i, want := range []float64{0.5, 0, 0.01, 0.0001} {
		require.NotNil(t, stats[i].TrueError)
		require.InDelta(t, want, *stats[i].TrueError, 1e-12)
	}
	require.Equal(t, 0.0, *stats[1].TrueError, "an exact hit is zero, not unavailable")

	require.InDelta(t, math.Sqrt(0.16+0.64), *stats[1].EigenvectorError, 1e-12)
	require.Equal(t, 0.0, *stats[2].EigenvectorError)
	require.Equal(t, 4, stats[3].Iteration)
}

func TestConvergenceWithoutReference(t *testing.T) {
	recs, err := Records([]float64{1, 2}, [][]float64{{1}, {1}})
	require.NoError(t, err)
	stats, err := Convergence(recs, nil)
	require.NoError(t, err)
	for _, s := range stats {
		require.Nil(t, s.TrueError)
	}
	require.NotNil(t, stats[1].EigenvalueError)

	_, err = Records([]float64{1}, nil)
	require.ErrorIs(t, err, ErrRecords)

	_, err = Convergence([]Record{{Eigenvector: []float64{1}}, {Eigenvector: []float64{1, 2}}}, nil)
	require.ErrorIs(t, err, ErrRecords)
}

func TestVerify(t *testing.T) {
	m := mustMatrix(t, [][]float64{{2, 1}, {1, 3}})
	want := (5 + math.Sqrt(5)) / 2

	v, err := Verify(m, want+1e-10, 1e-6)
	require.NoError(t, err)
	require.True(t, v.Agrees)

	v, err = Verify(m, 10, 1e-6)
	require.NoError(t, err)
	require.False(t, v.Agrees)
	require.InDelta(t, want, v.Local, 1e-10)
}

func TestStepMatchesConvergence(t *testing.T) {
	recs, err := Records([]float64{3, 2.5, 2.25}, [][]float64{{1, 0}, {0.8, 0.6}, {0.6, 0.8}})
	require.NoError(t, err)
	ref := 2.0
	all, err := Convergence(recs, &ref)
	require.NoError(t, err)

	var prev *Record
	for i := range recs {
		s, err := Step(prev, recs[i], &ref)
		require.NoError(t, err)
		require.Equal(t, all[i], s)
		prev = &recs[i]
	}
}
