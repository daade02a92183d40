package features

import (
	"fmt"
	"math"
	"time"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
)

// Series is a validated price series split into aligned columns.
type Series struct {
	Timestamps []time.Time
	Prices     []float64
	Volumes    []float64
	// HasVolume is false when every point reported zero volume.
	HasVolume bool
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.Prices) }

// Normalize validates raw points and returns them as a Series. Points must be
// strictly increasing in time with finite positive prices and finite
// non-negative volumes; anything else is rejected, never reordered or patched.
func Normalize(points []models.PricePoint) (Series, error) {
	if len(points) == 0 {
		return Series{}, fmt.Errorf("%w: empty series", domain.ErrInsufficientData)
	}

	s := Series{
		Timestamps: make([]time.Time, len(points)),
		Prices:     make([]float64, len(points)),
		Volumes:    make([]float64, len(points)),
	}
	for i, p := range points {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			return Series{}, fmt.Errorf("%w: price %v at index %d", domain.ErrMalformedInput, p.Price, i)
		}
		if math.IsNaN(p.Volume) || math.IsInf(p.Volume, 0) || p.Volume < 0 {
			return Series{}, fmt.Errorf("%w: volume %v at index %d", domain.ErrMalformedInput, p.Volume, i)
		}
		if i > 0 && !p.Timestamp.After(points[i-1].Timestamp) {
			return Series{}, fmt.Errorf("%w: timestamp at index %d is not after index %d", domain.ErrMalformedInput, i, i-1)
		}
		s.Timestamps[i] = p.Timestamp
		s.Prices[i] = p.Price
		s.Volumes[i] = p.Volume
		if p.Volume > 0 {
			s.HasVolume = true
		}
	}
	return s, nil
}
