// Package pca decomposes tabular data into principal components and derives
// the variance summaries shown next to a PCA projection.
package pca

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyData = errors.New("pca: data needs at least one row and one column")
	ErrRagged    = errors.New("pca: rows have different lengths")
	ErrNotFinite = errors.New("pca: data contains NaN or Inf")
	ErrFactorize = errors.New("pca: decomposition failed")
	ErrSelection = errors.New("pca: selected component count out of range")
)

// Result mirrors the decomposition returned by POST /pca.
// PrincipalComponents holds one component direction per column.
type Result struct {
	PrincipalComponents    [][]float64 `json:"principal_components"`
	ExplainedVariance      []float64   `json:"explained_variance"`
	ExplainedVarianceRatio []float64   `json:"explained_variance_ratio"`
	ProjectedData          [][]float64 `json:"projected_data"`
}

// Features is the number of original features, taken from the ratios.
func (r *Result) Features() int { return len(r.ExplainedVarianceRatio) }

// Check reports ErrRagged unless every projected row has one coordinate per
// explained variance ratio.
func (r *Result) Check() error {
	for i, row := range r.ProjectedData {
		if len(row) != len(r.ExplainedVarianceRatio) {
			return fmt.Errorf("projected row %d has %d coordinates, want %d: %w", i, len(row), len(r.ExplainedVarianceRatio), ErrRagged)
		}
	}
	return nil
}

// Validate checks that data is a non-empty rectangle of finite numbers and
// returns its dimensions.
func Validate(data [][]float64) (rows, cols int, err error) {
	if len(data) == 0 || len(data[0]) == 0 {
		return 0, 0, ErrEmptyData
	}
	rows, cols = len(data), len(data[0])
	for i, row := range data {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("row %d has %d values, want %d: %w", i, len(row), cols, ErrRagged)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return 0, 0, fmt.Errorf("row %d: %w", i, ErrNotFinite)
			}
		}
	}
	return rows, cols, nil
}

// Decompose runs a principal component analysis of data, rows being
// observations. Variances use the n-1 divisor. A single observation has no
// variance, so its ratios are all zero and every projection is the origin.
// With fewer observations than features the trailing components are unit
// directions orthogonal to the leading ones, each with zero variance.
func Decompose(data [][]float64) (*Result, error) {
	n, d, err := Validate(data)
	if err != nil {
		return nil, err
	}

	x := mat.NewDense(n, d, nil)
	for i, row := range data {
		x.SetRow(i, row)
	}

	vecs := mat.NewDense(d, d, nil)
	vars := make([]float64, d)
	if n > 1 {
		var pc stat.PC
		if ok := pc.PrincipalComponents(x, nil); !ok {
			return nil, ErrFactorize
		}
		var v mat.Dense
		pc.VectorsTo(&v)
		vecs.Copy(&v)
		copy(vars, pc.VarsTo(nil))
		if _, k := v.Dims(); k < d {
			completeBasis(vecs, k)
		}
	} else {
		for i := 0; i < d; i++ {
			vecs.Set(i, i, 1)
		}
	}

	// Centre columns so projections are scores around the mean.
	centred := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		mean := stat.Mean(col, nil)
		floats.AddConst(-mean, col)
		centred.SetCol(j, col)
	}
	var proj mat.Dense
	proj.Mul(centred, vecs)

	ratios := make([]float64, d)
	if total := floats.Sum(vars); total > 0 {
		floats.ScaleTo(ratios, 1/total, vars)
	}

	return &Result{
		PrincipalComponents:    rowsOf(vecs),
		ExplainedVariance:      vars,
		ExplainedVarianceRatio: ratios,
		ProjectedData:          rowsOf(&proj),
	}, nil
}

func rowsOf(m *mat.Dense) [][]float64 {
	r, c := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = make([]float64, c)
		mat.Row(out[i], i, m)
	}
	return out
}

// completeBasis fills columns k.. of the d×d matrix vecs with unit vectors
// orthogonal to every earlier column, drawn from the standard basis by
// Gram-Schmidt.
func completeBasis(vecs *mat.Dense, k int) {
	d, _ := vecs.Dims()
	col := make([]float64, d)
	prev := make([]float64, d)
	for e := 0; e < d && k < d; e++ {
		for i := range col {
			col[i] = 0
		}
		col[e] = 1
		for j := 0; j < k; j++ {
			mat.Col(prev, j, vecs)
			floats.AddScaled(col, -floats.Dot(col, prev), prev)
		}
		norm := floats.Norm(col, 2)
		if norm < 1e-8 {
			continue
		}
		floats.Scale(1/norm, col)
		vecs.SetCol(k, col)
		k++
	}
}
