package manifold

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

func sortedCopy(x []float64) []float64 {
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	return s
}

func absAll(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Abs(v)
	}
	return out
}

// quantile returns the linearly interpolated p-quantile, p in [0,1].
func quantile(x []float64, p float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.LinInterp, sortedCopy(x), nil)
}

func median(x []float64) float64 { return quantile(x, 0.5) }

// mad is the median absolute deviation around m.
func mad(x []float64, m float64) float64 {
	dev := make([]float64, len(x))
	for i, v := range x {
		dev[i] = math.Abs(v - m)
	}
	return median(dev)
}
