package matrix_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CK6170/Linviz-go/matrix"
)

func TestFromRowsValidation(t *testing.T) {
	_, err := matrix.FromRows(nil)
	require.ErrorIs(t, err, matrix.ErrEmpty)

	_, err = matrix.FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrRagged)

	_, err = matrix.FromRows([][]float64{{1, math.NaN()}})
	require.ErrorIs(t, err, matrix.ErrNotFinite)

	src := [][]float64{{1, 2}, {3, 4}}
	m, err := matrix.FromRows(src)
	require.NoError(t, err)
	src[0][0] = 99
	require.Equal(t, 1.0, m.Values[0][0], "FromRows must copy its input")
}

func TestOrder(t *testing.T) {
	for _, tc := range []struct {
		name string
		rows [][]float64
		want int
		err  error
	}{
		{"2x2", [][]float64{{1, 0}, {0, 1}}, 2, nil},
		{"4x4", matrix.Identity(4).Values, 4, nil},
		{"non-square", [][]float64{{1, 2, 3}, {4, 5, 6}}, 0, matrix.ErrNonSquare},
		{"1x1", [][]float64{{7}}, 0, matrix.ErrOrder},
		{"5x5", matrix.Identity(5).Values, 0, matrix.ErrOrder},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := matrix.FromRows(tc.rows)
			require.NoError(t, err)
			n, err := m.Order()
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, n)
		})
	}
}

func TestDet(t *testing.T) {
	for _, tc := range []struct {
		name string
		rows [][]float64
		want float64
	}{
		{"2x2", [][]float64{{3, 8}, {4, 6}}, -14},
		{"3x3", [][]float64{{6, 1, 1}, {4, -2, 5}, {2, 8, 7}}, -306},
		{"4x4 identity", matrix.Identity(4).Values, 1},
		{"4x4", [][]float64{{1, 0, 2, -1}, {3, 0, 0, 5}, {2, 1, 4, -3}, {1, 0, 5, 0}}, 30},
		{"4x4 singular", [][]float64{{1, 2, 3, 4}, {2, 4, 6, 8}, {0, 1, 0, 1}, {1, 1, 1, 1}}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := matrix.FromRows(tc.rows)
			require.NoError(t, err)
			d, err := m.Det()
			require.NoError(t, err)
			require.InDelta(t, tc.want, d, 1e-9)
		})
	}
}

func TestInverse(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{4, 7}, {2, 6}})
	require.NoError(t, err)
	inv, err := m.Inverse()
	require.NoError(t, err)
	prod, err := m.Mul(inv)
	require.NoError(t, err)
	require.True(t, prod.EqualApprox(matrix.Identity(2), 1e-12))

	singular, err := matrix.FromRows([][]float64{{1, 2}, {2, 4}})
	require.NoError(t, err)
	_, err = singular.Inverse()
	require.True(t, errors.Is(err, matrix.ErrSingular))
}

func TestPseudoInverseOfSingular(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{1, 0}, {0, 0}})
	require.NoError(t, err)
	pinv := m.PseudoInverse()
	require.NotNil(t, pinv)
	require.InDelta(t, 1.0, pinv.Values[0][0], 1e-12)
	require.InDelta(t, 0.0, pinv.Values[1][1], 1e-12)
}

func TestMulVectorAndColumns(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{0, -1}, {1, 0}})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1}, m.MulVector(matrix.VectorOf(1, 0)).Values)
	require.Equal(t, []float64{-1, 0}, m.MulVector(matrix.VectorOf(0, 1)).Values)
	require.Nil(t, m.MulVector(matrix.VectorOf(1, 2, 3)))
	require.Equal(t, []float64{-1, 0}, m.GetCol(1).Values)
	require.Equal(t, 0.0, m.Trace())
	require.Equal(t, [][]float64{{0, 1}, {-1, 0}}, m.Transpose().Values)
}

func TestVectorNormalize(t *testing.T) {
	v, err := matrix.VectorOf(3, 4).Normalize()
	require.NoError(t, err)
	require.InDeltaSlice(t, []float64{0.6, 0.8}, v.Values, 1e-15)

	_, err = matrix.NewVector(3).Normalize()
	require.ErrorIs(t, err, matrix.ErrZeroVector)

	d, err := matrix.VectorOf(1, 1).Distance(matrix.VectorOf(4, 5))
	require.NoError(t, err)
	require.Equal(t, 5.0, d)

	_, err = matrix.VectorOf(1).Dot(matrix.VectorOf(1, 2))
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestParseGrid(t *testing.T) {
	m, errs := matrix.ParseGrid([][]string{{"1", " 2.5 "}, {"-3", "4e1"}})
	require.Empty(t, errs)
	require.Equal(t, [][]float64{{1, 2.5}, {-3, 40}}, m.Values)

	m, errs = matrix.ParseGrid([][]string{{"1", "x"}, {"", "4"}})
	require.Nil(t, m)
	require.Len(t, errs, 2)
	require.Equal(t, 0, errs[0].Row)
	require.Equal(t, 1, errs[0].Col)
	require.ErrorIs(t, errs[0], matrix.ErrInvalidCell)
	require.Equal(t, 1, errs[1].Row)
	require.Equal(t, 0, errs[1].Col)

	_, errs = matrix.ParseGrid([][]string{{"1", "NaN"}})
	require.ErrorIs(t, errs[0], matrix.ErrNotFinite)

	lenient, err := matrix.CoerceGrid([][]string{{"1", "x"}, {"", "4"}})
	require.NoError(t, err)
	require.Equal(t, [][]float64{{1, 0}, {0, 4}}, lenient.Values)
}
