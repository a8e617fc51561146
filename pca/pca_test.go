package pca

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDecomposeLine(t *testing.T) {
	res, err := Decompose([][]float64{{1, 2}, {2, 4}, {3, 6}})
	require.NoError(t, err)
	require.NoError(t, res.Check())

	require.Len(t, res.ExplainedVarianceRatio, 2)
	require.InDelta(t, 1, res.ExplainedVarianceRatio[0], 1e-12)
	require.InDelta(t, 0, res.ExplainedVarianceRatio[1], 1e-12)
	require.InDelta(t, 5, res.ExplainedVariance[0], 1e-9)

	// First component is ±(1,2)/√5, stored as a column.
	c0 := []float64{res.PrincipalComponents[0][0], res.PrincipalComponents[1][0]}
	require.InDelta(t, 1/math.Sqrt(5), math.Abs(c0[0]), 1e-9)
	require.InDelta(t, 2/math.Sqrt(5), math.Abs(c0[1]), 1e-9)

	require.Len(t, res.ProjectedData, 3)
	require.InDelta(t, math.Sqrt(5), math.Abs(res.ProjectedData[0][0]), 1e-9)
	require.InDelta(t, 0, res.ProjectedData[1][0], 1e-9)
	for _, row := range res.ProjectedData {
		require.InDelta(t, 0, row[1], 1e-9)
	}
}

func TestDecomposeRatiosSumToOne(t *testing.T) {
	data := [][]float64{
		{2.5, 2.4, 0.5},
		{0.5, 0.7, 1.9},
		{2.2, 2.9, 0.1},
		{1.9, 2.2, 1.4},
		{3.1, 3.0, 0.3},
		{2.3, 2.7, 0.8},
	}
	res, err := Decompose(data)
	require.NoError(t, err)
	var sum float64
	for i, r := range res.ExplainedVarianceRatio {
		require.GreaterOrEqual(t, r, 0.0)
		require.LessOrEqual(t, r, 1.0)
		if i > 0 {
			require.LessOrEqual(t, r, res.ExplainedVarianceRatio[i-1]+1e-12)
		}
		sum += r
	}
	require.InDelta(t, 1, sum, 1e-12)
	require.Equal(t, 3, res.Features())
}

func TestDecomposeEdgeCases(t *testing.T) {
	res, err := Decompose([][]float64{{1, 2, 3}})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0}, res.ExplainedVarianceRatio)
	require.Equal(t, [][]float64{{0, 0, 0}}, res.ProjectedData)

	res, err = Decompose([][]float64{{4, 4}, {4, 4}})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0}, res.ExplainedVarianceRatio)

	_, err = Decompose(nil)
	require.ErrorIs(t, err, ErrEmptyData)
	_, err = Decompose([][]float64{{}})
	require.ErrorIs(t, err, ErrEmptyData)
	_, err = Decompose([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrRagged)
	_, err = Decompose([][]float64{{1, math.NaN()}})
	require.ErrorIs(t, err, ErrNotFinite)
}

func TestDecomposeFewerObservationsThanFeatures(t *testing.T) {
	res, err := Decompose([][]float64{{1, 2, 3}, {4, 0, 7}})
	require.NoError(t, err)
	require.Len(t, res.PrincipalComponents, 3)

	v := mat.NewDense(3, 3, nil)
	for i, row := range res.PrincipalComponents {
		require.Len(t, row, 3)
		v.SetRow(i, row)
	}
	var vtv mat.Dense
	vtv.Mul(v.T(), v)
	require.True(t, mat.EqualApprox(&vtv, eye(3), 1e-9), "components are not orthonormal:\n%v", mat.Formatted(&vtv))

	require.InDeltaSlice(t, []float64{1, 0, 0}, res.ExplainedVarianceRatio, 1e-12)
	for _, row := range res.ProjectedData {
		require.InDelta(t, 0, row[1], 1e-9)
		require.InDelta(t, 0, row[2], 1e-9)
	}
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func TestCumulativeAndTier(t *testing.T) {
	ratios := []float64{0.6, 0.25, 0.15}
	cum := Cumulative(ratios, []int{0, 1})
	require.InDelta(t, 0.85, cum, 1e-12)
	require.Equal(t, GoodPortion, TierFor(cum))
	require.Equal(t, "good portion, consider more", TierFor(cum).String())

	for _, tc := range []struct {
		cum  float64
		want Tier
	}{
		{1, AlmostAll},
		{0.9, AlmostAll},
		{0.8999, GoodPortion},
		{0.75, GoodPortion},
		{0.7499, Partial},
		{0, Partial},
	} {
		require.Equal(t, tc.want, TierFor(tc.cum), "cum=%v", tc.cum)
	}
	require.Equal(t, 0.6, Cumulative(ratios, []int{0, 7, -1}))

	// 0.7+0.2 sums to 0.8999999999999999.
	require.Equal(t, AlmostAll, TierFor(Cumulative([]float64{0.7, 0.2}, []int{0, 1})))
	require.Equal(t, GoodPortion, TierFor(Cumulative([]float64{0.5, 0.25}, []int{0, 1})))
}

func TestEligibility(t *testing.T) {
	require.Equal(t, Eligibility{Plot2D: true}, EligibilityFor(2, 5))
	require.Equal(t, Eligibility{Plot3D: true}, EligibilityFor(3, 3))
	require.Equal(t, Eligibility{}, EligibilityFor(3, 2))
	require.Equal(t, Eligibility{}, EligibilityFor(1, 4))
}

func TestTruncateAndInsights(t *testing.T) {
	got := Truncate([][]float64{{1, 2, 3}, {4, 5}}, 3)
	require.Equal(t, [][]float64{{1, 2, 3}, {4, 5, 0}}, got)
	require.Equal(t, [][]float64{{1}, {4}}, Truncate([][]float64{{1, 2, 3}, {4, 5}}, 1))

	ins := ComponentInsights([]float64{0.6, 0.25})
	require.Equal(t, "PC1 explains 60.0% of the variance", ins[0].Text)
	require.Equal(t, 2, ins[1].Component)
}

func TestDerive(t *testing.T) {
	r := &Result{
		ExplainedVarianceRatio: []float64{0.6, 0.25, 0.15},
		ProjectedData:          [][]float64{{1, 2, 3}, {4, 5, 6}},
	}
	v, err := Derive(r, 2)
	require.NoError(t, err)
	require.InDelta(t, 0.85, v.Cumulative, 1e-12)
	require.Equal(t, "good portion, consider more", v.Tier)
	require.True(t, v.Eligibility.Plot2D)
	require.Equal(t, [][]float64{{1, 2}, {4, 5}}, v.Projected)
	require.InDeltaSlice(t, []float64{0.6, 0.85, 1}, v.CumulativeBy, 1e-12)

	v, err = Derive(r, 3)
	require.NoError(t, err)
	require.True(t, v.Eligibility.Plot3D)
	require.Equal(t, "captures almost all structure", v.Tier)

	_, err = Derive(r, 0)
	require.ErrorIs(t, err, ErrSelection)
	_, err = Derive(r, 4)
	require.ErrorIs(t, err, ErrSelection)
}
