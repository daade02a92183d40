package features

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
)

var t0 = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func pts(prices ...float64) []models.PricePoint {
	out := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		out[i] = models.PricePoint{Timestamp: t0.Add(time.Duration(i) * time.Minute), Price: p}
	}
	return out
}

func TestNormalizeAcceptsOrderedSeries(t *testing.T) {
	in := pts(10, 11, 12)
	in[1].Volume = 5

	s, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []float64{10, 11, 12}, s.Prices)
	assert.Equal(t, []float64{0, 5, 0}, s.Volumes)
	assert.True(t, s.HasVolume)
}

func TestNormalizeRejects(t *testing.T) {
	dup := pts(1, 2, 3)
	dup[2].Timestamp = dup[1].Timestamp

	back := pts(1, 2, 3)
	back[2].Timestamp = t0.Add(-time.Minute)

	badVol := pts(1, 2)
	badVol[0].Volume = -1

	cases := []struct {
		name string
		in   []models.PricePoint
		want error
	}{
		{"empty", nil, domain.ErrInsufficientData},
		{"nan price", pts(1, math.NaN(), 3), domain.ErrMalformedInput},
		{"negative price", pts(1, -2, 3), domain.ErrMalformedInput},
		{"zero price", pts(1, 0, 3), domain.ErrMalformedInput},
		{"inf price", pts(1, math.Inf(1)), domain.ErrMalformedInput},
		{"equal timestamps", dup, domain.ErrMalformedInput},
		{"backwards timestamps", back, domain.ErrMalformedInput},
		{"negative volume", badVol, domain.ErrMalformedInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Normalize(tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSimpleReturns(t *testing.T) {
	assert.Nil(t, SimpleReturns([]float64{1}))
	got := SimpleReturns([]float64{100, 110, 99})
	require.Len(t, got, 2)
	assert.InDelta(t, 0.1, got[0], 1e-12)
	assert.InDelta(t, -0.1, got[1], 1e-12)
}

func TestSign(t *testing.T) {
	assert.Equal(t, 1, Sign(0.3))
	assert.Equal(t, -1, Sign(-2))
	assert.Equal(t, 0, Sign(0))
}

func TestResampleAggregatesBuckets(t *testing.T) {
	in := []models.PricePoint{
		{Timestamp: t0, Price: 10, Volume: 1},
		{Timestamp: t0.Add(2 * time.Minute), Price: 11, Volume: 2},
		{Timestamp: t0.Add(4 * time.Minute), Price: 12, Volume: 3},
		{Timestamp: t0.Add(5 * time.Minute), Price: 13, Volume: 4},
		{Timestamp: t0.Add(21 * time.Minute), Price: 14, Volume: 5},
	}

	out := Resample(in, 5*time.Minute)
	require.Len(t, out, 3)

	assert.Equal(t, t0, out[0].Timestamp)
	assert.Equal(t, 12.0, out[0].Price)
	assert.Equal(t, 6.0, out[0].Volume)

	assert.Equal(t, t0.Add(5*time.Minute), out[1].Timestamp)
	assert.Equal(t, 13.0, out[1].Price)

	assert.Equal(t, t0.Add(20*time.Minute), out[2].Timestamp)
	assert.Equal(t, 14.0, out[2].Price)
}

func TestResampleIdentityWhenGranularityMatches(t *testing.T) {
	in := pts(1, 2, 3, 4)
	out := Resample(in, time.Minute)
	assert.Equal(t, in, out)

	out[0].Price = 99
	assert.Equal(t, 1.0, in[0].Price, "resample must not alias its input")
}
