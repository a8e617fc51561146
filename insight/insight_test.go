package insight

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CK6170/Linviz-go/matrix"
)

func analyze(t *testing.T, rows [][]float64) *Report {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)
	r, err := Analyze(m)
	require.NoError(t, err)
	return r
}

func TestIdentityOrder3(t *testing.T) {
	r := analyze(t, matrix.Identity(3).Values)
	require.Equal(t, Identity, r.Kind)
	require.Equal(t, "Identity", r.Kind.String())
	require.Equal(t, 1.0, r.Determinant)
	require.Equal(t, 3.0, r.Trace)
	require.True(t, r.Invertible)
	require.Equal(t, []float64{1, 0, 0}, r.BasisImages[0])
	require.Equal(t, "volume", r.Scaling)
	require.Equal(t, []float64{1, 1, 1}, r.RealEigenvalues)
	require.Equal(t, matrix.Identity(3).Values, r.Inverse)
}

func TestClassify(t *testing.T) {
	for _, tc := range []struct {
		name string
		rows [][]float64
		want Kind
	}{
		{"identity", [][]float64{{1, 0}, {0, 1}}, Identity},
		{"diagonal", [][]float64{{2, 0}, {0, 1}}, Diagonal},
		{"zero is diagonal", [][]float64{{0, 0}, {0, 0}}, Diagonal},
		{"symmetric", [][]float64{{1, 2}, {2, 1}}, Symmetric},
		{"general", [][]float64{{1, 2}, {3, 4}}, General},
		{"nearly symmetric", [][]float64{{1, 2}, {2.0000001, 1}}, General},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, err := matrix.FromRows(tc.rows)
			require.NoError(t, err)
			require.Equal(t, tc.want, Classify(m))
		})
	}
}

func TestSingular(t *testing.T) {
	r := analyze(t, [][]float64{{1, 2}, {2, 4}})
	require.False(t, r.Invertible)
	require.Nil(t, r.Inverse)
	pinv, err := matrix.FromRows(r.PseudoInverse)
	require.NoError(t, err)
	want, err := matrix.FromRows([][]float64{{0.04, 0.08}, {0.08, 0.16}})
	require.NoError(t, err)
	require.True(t, pinv.EqualApprox(want, 1e-12))
	require.Equal(t, 0.0, r.Determinant)
	require.Equal(t, []float64{5, 0}, r.RealEigenvalues)
	require.Contains(t, r.Insights[1].Description, "collapses")
	require.Equal(t, "Not invertible: information is lost.", r.Insights[3].Description)

	tiny := analyze(t, [][]float64{{1e-6, 0}, {0, 1e-6}})
	require.False(t, tiny.Invertible, "determinant 1e-12 is below tolerance")
}

func TestRotationHasNoRealEigenvalues(t *testing.T) {
	r := analyze(t, [][]float64{{0, -1}, {1, 0}})
	require.True(t, r.EigenAvailable)
	require.Empty(t, r.RealEigenvalues)
	require.Equal(t, [][]float64{{0, 1}, {-1, 0}}, r.BasisImages)
	require.Equal(t, "No real eigenvalues: every direction is rotated.", r.Insights[5].Description)
	require.Equal(t, "e1 -> [0, 1], e2 -> [-1, 0]", r.Insights[4].Description)
}

func TestOrder4(t *testing.T) {
	r := analyze(t, [][]float64{
		{2, 0, 0, 0},
		{0, 3, 0, 0},
		{0, 0, -1, 0},
		{0, 0, 0, 0.5},
	})
	require.Equal(t, Diagonal, r.Kind)
	require.InDelta(t, -3, r.Determinant, 1e-12)
	require.Equal(t, "4D hypervolume", r.Scaling)
	require.Equal(t, []float64{3, 2, 0.5, -1}, r.RealEigenvalues)
	require.Contains(t, r.Insights[1].Description, "flips orientation")
}

func TestAnalyzeRejectsBadOrder(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	require.NoError(t, err)
	_, err = Analyze(m)
	require.ErrorIs(t, err, matrix.ErrNonSquare)

	m, err = matrix.FromRows([][]float64{{1}})
	require.NoError(t, err)
	_, err = Analyze(m)
	require.ErrorIs(t, err, matrix.ErrOrder)
}

func TestRealParts(t *testing.T) {
	got := RealParts([]complex128{complex(1.23456, 0), complex(2, 1e-9), complex(0, 1), complex(-0.00001, 0)})
	require.Equal(t, []float64{2, 1.2346, 0}, got)
	require.False(t, math.Signbit(got[2]))
}

func TestReportJSON(t *testing.T) {
	b, err := json.Marshal(analyze(t, [][]float64{{1, 0}, {0, 1}}))
	require.NoError(t, err)
	require.Contains(t, string(b), `"kind":"Identity"`)
}

func TestKindTextRoundTrip(t *testing.T) {
	for _, k := range []Kind{General, Symmetric, Diagonal, Identity} {
		b, err := k.MarshalText()
		require.NoError(t, err)
		var got Kind
		require.NoError(t, got.UnmarshalText(b))
		require.Equal(t, k, got)
	}
	var k Kind
	require.ErrorIs(t, k.UnmarshalText([]byte("Orthogonal")), ErrKind)

	rep := analyze(t, [][]float64{{2, 1}, {1, 2}})
	b, err := json.Marshal(rep)
	require.NoError(t, err)
	var back Report
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, Symmetric, back.Kind)
	require.Equal(t, rep.Insights, back.Insights)
}
