package multiscale

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	"Manifold/internal/services/interpreter"
	"Manifold/internal/services/manifold"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// lengthAnalyzer enforces horizon minimum lengths and nothing else.
type lengthAnalyzer struct{}

func (lengthAnalyzer) Analyze(symbol string, h models.Horizon, points []models.PricePoint) (*models.MetricsSnapshot, error) {
	spec, _ := h.Spec()
	if len(points) < spec.MinLength {
		return nil, fmt.Errorf("%w: %d points", domain.ErrInsufficientData, len(points))
	}
	return &models.MetricsSnapshot{Symbol: symbol, Horizon: h}, nil
}

// fixedPhases answers a preset phase per horizon.
type fixedPhases map[models.Horizon]models.Phase

func (f fixedPhases) Interpret(snap *models.MetricsSnapshot) (models.Interpretation, error) {
	return models.Interpretation{Symbol: snap.Symbol, Horizon: snap.Horizon, Phase: f[snap.Horizon]}, nil
}

func bars(n int, step time.Duration) []models.PricePoint {
	out := make([]models.PricePoint, n)
	for i := range out {
		out[i] = models.PricePoint{Timestamp: t0.Add(time.Duration(i) * step), Price: 100 + 0.01*float64(i)}
	}
	return out
}

func perHorizon(n int) map[models.Horizon][]models.PricePoint {
	series := make(map[models.Horizon][]models.PricePoint)
	for _, h := range models.AllHorizons() {
		spec, _ := h.Spec()
		series[h] = bars(n, spec.Granularity)
	}
	return series
}

func uniform(p models.Phase) fixedPhases {
	f := fixedPhases{}
	for _, h := range models.AllHorizons() {
		f[h] = p
	}
	return f
}

func TestFullAgreementIsFullyConsistent(t *testing.T) {
	o, err := New(lengthAnalyzer{}, uniform(models.PhaseImpulse), Config{})
	require.NoError(t, err)

	res, err := o.AnalyzeMultiscale("AAPL", perHorizon(40))
	require.NoError(t, err)
	assert.Equal(t, models.PhaseImpulse, res.DominantPhase)
	assert.Equal(t, 100.0, res.FractalConsistency)
	assert.Equal(t, 5, res.Scored)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Horizons, 5)
}

func TestShortHorizonIsOmittedFromScoring(t *testing.T) {
	o, err := New(lengthAnalyzer{}, uniform(models.PhaseEquilibrium), Config{})
	require.NoError(t, err)

	series := perHorizon(40)
	series[models.HorizonMacro] = series[models.HorizonMacro][:5]
	res, err := o.AnalyzeMultiscale("AAPL", series)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Scored)
	assert.Equal(t, 100.0, res.FractalConsistency)
	assert.Contains(t, res.Errors, models.HorizonMacro)
	for _, hr := range res.Horizons {
		assert.NotEqual(t, models.HorizonMacro, hr.Horizon)
	}
}

func TestMissingSeriesCountsAsInsufficient(t *testing.T) {
	o, err := New(lengthAnalyzer{}, uniform(models.PhaseEquilibrium), Config{})
	require.NoError(t, err)

	series := perHorizon(40)
	delete(series, models.HorizonMicro)
	res, err := o.AnalyzeMultiscale("AAPL", series)
	require.NoError(t, err)
	assert.Contains(t, res.Errors, models.HorizonMicro)
	assert.Equal(t, 4, res.Scored)
}

func TestVoteTieBreaks(t *testing.T) {
	cases := []struct {
		name        string
		phases      fixedPhases
		dominant    models.Phase
		consistency float64
	}{
		{
			name: "majority wins",
			phases: fixedPhases{
				models.HorizonMicro: models.PhaseImpulse, models.HorizonShort: models.PhaseImpulse,
				models.HorizonMedium: models.PhaseImpulse, models.HorizonLong: models.PhaseEquilibrium,
				models.HorizonMacro: models.PhaseEquilibrium,
			},
			dominant:    models.PhaseImpulse,
			consistency: 60,
		},
		{
			name: "longer horizons break count ties",
			phases: fixedPhases{
				models.HorizonMicro: models.PhaseImpulse, models.HorizonShort: models.PhaseImpulse,
				models.HorizonMedium: models.PhaseTransitional, models.HorizonLong: models.PhaseEquilibrium,
				models.HorizonMacro: models.PhaseEquilibrium,
			},
			dominant:    models.PhaseEquilibrium,
			consistency: 40,
		},
		{
			name: "severity breaks weight ties",
			phases: fixedPhases{
				models.HorizonMicro: models.PhaseImpulse, models.HorizonMacro: models.PhaseImpulse,
				models.HorizonShort: models.PhaseCorrection, models.HorizonLong: models.PhaseCorrection,
				models.HorizonMedium: models.PhaseEquilibrium,
			},
			dominant:    models.PhaseCorrection,
			consistency: 40,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o, err := New(lengthAnalyzer{}, tc.phases, Config{})
			require.NoError(t, err)
			res, err := o.AnalyzeMultiscale("X", perHorizon(40))
			require.NoError(t, err)
			assert.Equal(t, tc.dominant, res.DominantPhase)
			assert.Equal(t, tc.consistency, res.FractalConsistency)
		})
	}
}

func TestMalformedInputFailsWholeRequest(t *testing.T) {
	o, err := New(lengthAnalyzer{}, uniform(models.PhaseImpulse), Config{})
	require.NoError(t, err)

	series := perHorizon(40)
	series[models.HorizonShort][10].Timestamp = series[models.HorizonShort][9].Timestamp
	_, err = o.AnalyzeMultiscale("X", series)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestNothingScoredIsInsufficient(t *testing.T) {
	o, err := New(lengthAnalyzer{}, uniform(models.PhaseImpulse), Config{})
	require.NoError(t, err)
	_, err = o.AnalyzeMultiscale("X", perHorizon(3))
	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestNewRejectsBadHorizons(t *testing.T) {
	_, err := New(lengthAnalyzer{}, uniform(models.PhaseImpulse), Config{Horizons: []models.Horizon{"hourly"}})
	assert.ErrorIs(t, err, domain.ErrThresholdConfig)

	_, err = New(lengthAnalyzer{}, uniform(models.PhaseImpulse), Config{Horizons: []models.Horizon{models.HorizonShort, models.HorizonShort}})
	assert.ErrorIs(t, err, domain.ErrThresholdConfig)
}

func TestAnalyzeBaseResamplesPerHorizon(t *testing.T) {
	engine, err := manifold.NewEngine(manifold.DefaultConfig())
	require.NoError(t, err)
	interp, err := interpreter.New(interpreter.DefaultThresholds())
	require.NoError(t, err)
	o, err := New(engine, interp, Config{Horizons: []models.Horizon{
		models.HorizonMicro, models.HorizonShort, models.HorizonMedium, models.HorizonLong,
	}})
	require.NoError(t, err)

	// 2000 one-minute bars: enough for micro, short and medium but not long.
	res, err := o.AnalyzeBase("BTC", bars(2000, time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Scored)
	assert.Contains(t, res.Errors, models.HorizonLong)
	require.Len(t, res.Horizons, 3)
	assert.Equal(t, 2000, res.Horizons[0].Points)
	assert.Equal(t, 400, res.Horizons[1].Points)
	assert.Equal(t, 34, res.Horizons[2].Points)

	var votes int
	for _, v := range res.Votes {
		votes += v
	}
	assert.Equal(t, res.Scored, votes)
	assert.NotEmpty(t, res.DominantPhase)
	assert.GreaterOrEqual(t, res.FractalConsistency, 100.0/3-0.01)
	assert.LessOrEqual(t, res.FractalConsistency, 100.0)
}
