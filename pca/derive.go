package pca

import "fmt"

// Tier is the qualitative verdict on how much variance a selection keeps.
type Tier int

const (
	Partial Tier = iota
	GoodPortion
	AlmostAll
)

const (
	AlmostAllThreshold   = 0.90
	GoodPortionThreshold = 0.75

	// tierSlack absorbs rounding in summed ratios such as 0.7+0.2.
	tierSlack = 1e-12
)

func (t Tier) String() string {
	switch t {
	case AlmostAll:
		return "captures almost all structure"
	case GoodPortion:
		return "good portion, consider more"
	default:
		return "may not represent full structure"
	}
}

// TierFor classifies a cumulative explained variance ratio.
func TierFor(cumulative float64) Tier {
	switch {
	case cumulative >= AlmostAllThreshold-tierSlack:
		return AlmostAll
	case cumulative >= GoodPortionThreshold-tierSlack:
		return GoodPortion
	default:
		return Partial
	}
}

// Cumulative sums the ratios of the selected component indices. Indices out
// of range are ignored.
func Cumulative(ratios []float64, selected []int) float64 {
	var sum float64
	for _, i := range selected {
		if i >= 0 && i < len(ratios) {
			sum += ratios[i]
		}
	}
	return sum
}

// Leading returns the indices 0..k-1.
func Leading(k int) []int {
	out := make([]int, k)
	for i := range out {
		out[i] = i
	}
	return out
}

// Eligibility says which projection plots a selection can be drawn in.
type Eligibility struct {
	Plot2D bool `json:"plot2d"`
	Plot3D bool `json:"plot3d"`
}

// EligibilityFor allows a 2D plot for exactly two components and a 3D plot
// for three or more components of data with at least three features.
func EligibilityFor(selected, features int) Eligibility {
	return Eligibility{
		Plot2D: selected == 2,
		Plot3D: selected >= 3 && features >= 3,
	}
}

// Truncate keeps the first k coordinates of every projected row, padding
// with zeros when a row is shorter than k.
func Truncate(projected [][]float64, k int) [][]float64 {
	if k < 0 {
		k = 0
	}
	out := make([][]float64, len(projected))
	for i, row := range projected {
		r := make([]float64, k)
		copy(r, row)
		out[i] = r
	}
	return out
}

// ComponentInsight describes the share of variance one component explains.
type ComponentInsight struct {
	Component int     `json:"component"`
	Ratio     float64 `json:"ratio"`
	Text      string  `json:"text"`
}

// ComponentInsights returns one sentence per component, numbered from PC1.
func ComponentInsights(ratios []float64) []ComponentInsight {
	out := make([]ComponentInsight, len(ratios))
	for i, r := range ratios {
		out[i] = ComponentInsight{
			Component: i + 1,
			Ratio:     r,
			Text:      fmt.Sprintf("PC%d explains %.1f%% of the variance", i+1, r*100),
		}
	}
	return out
}

// View is everything derived from a Result for one selection count.
type View struct {
	Selected     int                `json:"selected"`
	Cumulative   float64            `json:"cumulative"`
	Tier         string             `json:"tier"`
	Eligibility  Eligibility        `json:"eligibility"`
	Projected    [][]float64        `json:"projected"`
	Components   []ComponentInsight `json:"components"`
	CumulativeBy []float64          `json:"cumulative_by"`
}

// Derive builds the View for the first k components of r.
func Derive(r *Result, k int) (View, error) {
	features := r.Features()
	if k < 1 || k > features {
		return View{}, fmt.Errorf("%w: %d not in 1..%d", ErrSelection, k, features)
	}
	cum := Cumulative(r.ExplainedVarianceRatio, Leading(k))
	running := make([]float64, features)
	var s float64
	for i, v := range r.ExplainedVarianceRatio {
		s += v
		running[i] = s
	}
	return View{
		Selected:     k,
		Cumulative:   cum,
		Tier:         TierFor(cum).String(),
		Eligibility:  EligibilityFor(k, features),
		Projected:    Truncate(r.ProjectedData, k),
		Components:   ComponentInsights(r.ExplainedVarianceRatio),
		CumulativeBy: running,
	}, nil
}
