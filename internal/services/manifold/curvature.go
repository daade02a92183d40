package manifold

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"Manifold/internal/domain"
)

// Curvature returns the discrete second difference of prices over index,
// aligned to the input. The two boundary indices repeat their interior
// neighbour.
func Curvature(prices []float64, cfg CurvatureConfig) ([]float64, error) {
	n := len(prices)
	if n < 3 {
		return nil, fmt.Errorf("%w: curvature needs at least 3 points, got %d", domain.ErrInsufficientData, n)
	}

	out := make([]float64, n)
	for i := 1; i < n-1; i++ {
		out[i] = prices[i+1] - 2*prices[i] + prices[i-1]
	}
	out[0] = out[1]
	out[n-1] = out[n-2]

	if !cfg.RawScale {
		if scale := stat.Mean(prices, nil); scale > 0 {
			floats.Scale(1/scale, out)
		}
	}
	return out, nil
}
