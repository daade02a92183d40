package multiscale

import (
	"errors"
	"fmt"
	"math"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	domsvc "Manifold/internal/domain/service"
	"Manifold/internal/services/features"
)

// Config selects the horizons a multi-scale request evaluates.
type Config struct {
	// Horizons are evaluated in this order; empty means every horizon.
	Horizons []models.Horizon `yaml:"horizons"`
}

// Orchestrator runs the single-scale pipeline once per horizon and
// reconciles the phases into one reading.
type Orchestrator struct {
	analyzer domsvc.Analyzer
	interp   domsvc.Interpreter
	horizons []models.Horizon
}

// New returns an orchestrator over cfg.Horizons. Unknown or repeated
// horizons fail with domain.ErrThresholdConfig.
func New(analyzer domsvc.Analyzer, interp domsvc.Interpreter, cfg Config) (*Orchestrator, error) {
	horizons := cfg.Horizons
	if len(horizons) == 0 {
		horizons = models.AllHorizons()
	}
	seen := make(map[models.Horizon]bool, len(horizons))
	for _, h := range horizons {
		if !models.IsValidHorizon(h) {
			return nil, fmt.Errorf("%w: unknown horizon %q", domain.ErrThresholdConfig, h)
		}
		if seen[h] {
			return nil, fmt.Errorf("%w: horizon %q listed twice", domain.ErrThresholdConfig, h)
		}
		seen[h] = true
	}
	return &Orchestrator{
		analyzer: analyzer,
		interp:   interp,
		horizons: append([]models.Horizon(nil), horizons...),
	}, nil
}

// Horizons returns the configured horizons in evaluation order.
func (o *Orchestrator) Horizons() []models.Horizon {
	return append([]models.Horizon(nil), o.horizons...)
}

// AnalyzeBase resamples one base series to every configured horizon and
// reconciles the results.
func (o *Orchestrator) AnalyzeBase(symbol string, base []models.PricePoint) (*models.MultiscaleResult, error) {
	series := make(map[models.Horizon][]models.PricePoint, len(o.horizons))
	for _, h := range o.horizons {
		series[h] = base
	}
	return o.AnalyzeMultiscale(symbol, series)
}

// AnalyzeMultiscale evaluates each configured horizon on its own series.
// A horizon with too little data is recorded in Errors and left out of the
// vote; malformed input fails the whole request.
func (o *Orchestrator) AnalyzeMultiscale(symbol string, series map[models.Horizon][]models.PricePoint) (*models.MultiscaleResult, error) {
	res := &models.MultiscaleResult{
		Symbol:   symbol,
		Horizons: make([]models.HorizonResult, 0, len(o.horizons)),
		Votes:    make(map[models.Phase]int),
		Errors:   make(map[models.Horizon]string),
	}

	for _, h := range o.horizons {
		hr, err := o.evaluate(symbol, h, series[h])
		if errors.Is(err, domain.ErrInsufficientData) {
			res.Errors[h] = err.Error()
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("horizon %s: %w", h, err)
		}
		res.Horizons = append(res.Horizons, hr)
	}

	if len(res.Horizons) == 0 {
		return nil, fmt.Errorf("%w: no horizon of %s had enough data", domain.ErrInsufficientData, symbol)
	}
	vote(res)
	return res, nil
}

func (o *Orchestrator) evaluate(symbol string, h models.Horizon, points []models.PricePoint) (models.HorizonResult, error) {
	spec, _ := h.Spec()
	if _, err := features.Normalize(points); err != nil {
		return models.HorizonResult{}, err
	}
	resampled := features.Resample(points, spec.Granularity)

	snap, err := o.analyzer.Analyze(symbol, h, resampled)
	if err != nil {
		return models.HorizonResult{}, err
	}
	interp, err := o.interp.Interpret(snap)
	if err != nil {
		return models.HorizonResult{}, err
	}
	return models.HorizonResult{
		Horizon:        h,
		Points:         len(resampled),
		Snapshot:       snap,
		Interpretation: &interp,
	}, nil
}

// vote picks the dominant phase by count. Ties go to the larger summed
// horizon weight, then to the more severe phase.
func vote(res *models.MultiscaleResult) {
	weights := make(map[models.Phase]int)
	for _, hr := range res.Horizons {
		p := hr.Interpretation.Phase
		spec, _ := hr.Horizon.Spec()
		res.Votes[p]++
		weights[p] += spec.Weight
	}

	var best models.Phase
	for _, p := range models.Phases() {
		if res.Votes[p] == 0 {
			continue
		}
		if best == "" || beats(p, best, res.Votes, weights) {
			best = p
		}
	}

	res.Scored = len(res.Horizons)
	res.DominantPhase = best
	c := 100 * float64(res.Votes[best]) / float64(res.Scored)
	res.FractalConsistency = math.Round(c*100) / 100
}

func beats(p, q models.Phase, votes, weights map[models.Phase]int) bool {
	if votes[p] != votes[q] {
		return votes[p] > votes[q]
	}
	if weights[p] != weights[q] {
		return weights[p] > weights[q]
	}
	return p.Severity() < q.Severity()
}

// WithHorizons returns an orchestrator sharing this one's pipeline but
// evaluating only horizons.
func (o *Orchestrator) WithHorizons(horizons []models.Horizon) (*Orchestrator, error) {
	return New(o.analyzer, o.interp, Config{Horizons: horizons})
}
