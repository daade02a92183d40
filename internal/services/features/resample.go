package features

import (
	"time"

	"Manifold/internal/domain/models"
)

// Resample aggregates ordered points into buckets of the given granularity.
// A bucket keeps the last price, the summed volume and the bucket start time.
// Buckets with no points are skipped rather than filled.
func Resample(points []models.PricePoint, granularity time.Duration) []models.PricePoint {
	if granularity <= 0 || len(points) == 0 {
		out := make([]models.PricePoint, len(points))
		copy(out, points)
		return out
	}

	out := make([]models.PricePoint, 0, len(points))
	for _, p := range points {
		bucket := AlignToBucket(p.Timestamp, granularity)
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(bucket) {
			out[n-1].Price = p.Price
			out[n-1].Volume += p.Volume
			continue
		}
		out = append(out, models.PricePoint{Timestamp: bucket, Price: p.Price, Volume: p.Volume})
	}
	return out
}

// AlignToBucket rounds t down to the bucket boundary, in UTC.
func AlignToBucket(t time.Time, granularity time.Duration) time.Time {
	return t.UTC().Truncate(granularity)
}
