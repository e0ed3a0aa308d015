package pic

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics over a set of standardized contrasts.
// Under the Brownian-motion model the standardized contrasts should look like
// independent draws with mean near zero and standard deviation near one;
// large deviations suggest the branch lengths poorly fit the trait. This is a
// diagnostic readout, not a statistical test.
type Summary struct {
	N      int     `json:"n" bson:"n"`
	Mean   float64 `json:"mean" bson:"mean"`
	StdDev float64 `json:"std_dev" bson:"std_dev"`
	Min    float64 `json:"min" bson:"min"`
	Max    float64 `json:"max" bson:"max"`
}

// Summarize computes descriptive statistics of the standardized contrasts.
// When the set was not computed with Options.Standardize, each contrast is
// standardized on the fly from its reported variance. Returns the zero
// Summary for an empty set.
func (cs *ContrastSet) Summarize() Summary {
	if cs.Len() == 0 {
		return Summary{}
	}

	xs := make([]float64, 0, cs.Len())
	for _, c := range cs.Sorted() {
		if c.Standardized != nil {
			xs = append(xs, *c.Standardized)
			continue
		}
		xs = append(xs, c.Value/math.Sqrt(c.Variance))
	}

	s := Summary{
		N:    len(xs),
		Mean: stat.Mean(xs, nil),
		Min:  xs[0],
		Max:  xs[0],
	}
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	for _, x := range xs[1:] {
		s.Min = math.Min(s.Min, x)
		s.Max = math.Max(s.Max, x)
	}
	return s
}
