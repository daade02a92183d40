package manifold

import (
	"fmt"
	"time"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	"Manifold/internal/services/features"
)

// Engine runs the single-scale pipeline. It is stateless and safe for
// concurrent use; every call recomputes from its input.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and returns an engine. Invalid thresholds fail
// here with domain.ErrThresholdConfig, never per call.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the validated configuration.
func (e *Engine) Config() Config { return e.cfg }

// Analyze computes the metrics snapshot of points at the given horizon.
func (e *Engine) Analyze(symbol string, horizon models.Horizon, points []models.PricePoint) (*models.MetricsSnapshot, error) {
	spec, ok := horizon.Spec()
	if !ok {
		return nil, fmt.Errorf("%w: unknown horizon %q", domain.ErrMalformedInput, horizon)
	}

	series, err := features.Normalize(points)
	if err != nil {
		return nil, err
	}
	n := series.Len()
	if n < spec.MinLength {
		return nil, fmt.Errorf("%w: horizon %s needs %d points, got %d", domain.ErrInsufficientData, horizon, spec.MinLength, n)
	}

	curvature, err := Curvature(series.Prices, e.cfg.Curvature)
	if err != nil {
		return nil, err
	}

	returns := features.SimpleReturns(series.Prices)
	window := e.cfg.Entropy.Window
	if window == 0 {
		window = spec.EntropyWindow
	}
	entropy := ShannonEntropy(returns, e.cfg.Entropy.Bins, e.cfg.Entropy.MinSpan)
	local := LocalEntropy(returns, n, window, e.cfg.Entropy.Bins, e.cfg.Entropy.MinSpan)

	decay := e.cfg.Tension.Decay
	if decay == 0 {
		decay = spec.TensionDecay
	}
	raw := accumulateTension(returns, n, decay, e.cfg.Tension.PersistenceBonus, nil, 0)

	// Detection runs on the unrelaxed series. Flow events then relax the
	// accumulator and the reported tension is replayed with them, so a
	// reported value after an event can sit below TensionThreshold even
	// though its bar was gated on the raw value.
	flagged, gates := DetectSingularities(curvature, raw, e.cfg.Singularity, e.cfg.Curvature.MinMagnitude)

	hits := DetectRicciFlow(flagged, raw, e.cfg.Ricci)
	tension := raw
	if len(hits) > 0 {
		relaxAt := make([]bool, n)
		for _, h := range hits {
			relaxAt[h.index] = true
		}
		tension = accumulateTension(returns, n, decay, e.cfg.Tension.PersistenceBonus, relaxAt, e.cfg.Ricci.ResetFraction)
	}

	snap := &models.MetricsSnapshot{
		Symbol:             symbol,
		Horizon:            horizon,
		Timestamps:         append([]time.Time(nil), series.Timestamps...),
		Prices:             append([]float64(nil), series.Prices...),
		Curvature:          curvature,
		CurvatureThreshold: gates.curvature,
		Entropy:            entropy,
		LocalEntropy:       local,
		EntropyBins:        e.cfg.Entropy.Bins,
		EntropyWindow:      window,
		Tension:            tension,
		TensionThreshold:   gates.tension,
		Singularities:      make([]models.Singularity, 0, len(flagged)),
		RicciEvents:        make([]models.RicciEvent, 0, len(hits)),
	}

	for _, i := range flagged {
		snap.Singularities = append(snap.Singularities, models.Singularity{
			Index:     i,
			Timestamp: series.Timestamps[i],
			Price:     series.Prices[i],
			Curvature: curvature[i],
			Tension:   tension[i],
			Entropy:   local[i],
		})
	}
	for _, h := range hits {
		snap.RicciEvents = append(snap.RicciEvents, models.RicciEvent{
			Index:            h.index,
			Timestamp:        series.Timestamps[h.index],
			SingularityIndex: h.singularity,
			TensionBefore:    h.before,
			TensionAfter:     tension[h.index],
		})
	}
	snap.Attractors = LocateAttractors(series.Prices, series.Volumes, series.HasVolume, e.cfg.Attractor)

	return snap, nil
}
