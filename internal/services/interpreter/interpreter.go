package interpreter

import (
	"fmt"
	"math"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	domsvc "Manifold/internal/domain/service"
)

// Interpreter maps a metrics snapshot onto a phase by walking an ordered rule
// table. It holds only its thresholds; Interpret has no side effects.
type Interpreter struct {
	th    Thresholds
	rules []Rule
}

// New validates th and returns an interpreter with the default rule order.
func New(th Thresholds) (*Interpreter, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return &Interpreter{th: th, rules: defaultRules()}, nil
}

// Thresholds returns the validated thresholds.
func (i *Interpreter) Thresholds() Thresholds { return i.th }

// RuleNames lists the rules in evaluation order.
func (i *Interpreter) RuleNames() []string {
	names := make([]string, len(i.rules))
	for k, r := range i.rules {
		names[k] = r.Name
	}
	return names
}

// Interpret reads the phase of snap at its last index.
func (i *Interpreter) Interpret(snap *models.MetricsSnapshot) (models.Interpretation, error) {
	if err := check(snap); err != nil {
		return models.Interpretation{}, err
	}

	r, window := i.read(snap)
	var (
		v    verdict
		rule string
	)
	for _, candidate := range i.rules {
		if candidate.When(r, i.th) {
			v = candidate.Build(r, i.th)
			rule = candidate.Name
			break
		}
	}

	return models.Interpretation{
		Symbol:              snap.Symbol,
		Horizon:             snap.Horizon,
		Phase:               v.phase,
		Rule:                rule,
		Confidence:          confidence(v.margin),
		CurvatureState:      describeCurvature(r, i.th),
		TensionState:        describeTension(r, i.th),
		EntropyState:        describeEntropy(r, i.th),
		Flow:                r.flow,
		CurvatureRatio:      r.curvatureRatio,
		TensionLevel:        r.tensionLevel,
		EntropyLevel:        r.entropyLevel,
		RecentSingularities: r.recentSing,
		RecentRicciEvents:   r.recentRicci,
		NearestAttractor:    r.nearest,
		Warning:             warn(v.phase, r, snap, window, i.th),
		Narrative:           narrate(v.phase, r, snap),
	}, nil
}

func check(snap *models.MetricsSnapshot) error {
	if snap == nil || snap.Len() == 0 {
		return fmt.Errorf("%w: empty snapshot", domain.ErrInsufficientData)
	}
	n := snap.Len()
	if len(snap.Curvature) != n || len(snap.Tension) != n || len(snap.LocalEntropy) != n {
		return fmt.Errorf("%w: snapshot arrays are not aligned to %d points", domain.ErrMalformedInput, n)
	}
	if snap.CurvatureThreshold <= 0 || snap.EntropyBins < 2 {
		return fmt.Errorf("%w: snapshot carries no curvature threshold or entropy bins", domain.ErrMalformedInput)
	}
	if p := snap.LastPrice(); p <= 0 || math.IsNaN(p) {
		return fmt.Errorf("%w: last price %v", domain.ErrMalformedInput, p)
	}
	return nil
}

// read extracts the rule inputs at the last index; window is the number of
// trailing bars counted as recent.
func (i *Interpreter) read(snap *models.MetricsSnapshot) (reading, int) {
	n := snap.Len()
	last := n - 1
	window := int(math.Ceil(i.th.RecentFraction * float64(n)))
	cutoff := n - window

	r := reading{
		curvature:      snap.Curvature[last],
		curvatureRatio: math.Abs(snap.Curvature[last]) / snap.CurvatureThreshold,
		tension:        snap.Tension[last],
		tensionLevel:   math.Abs(snap.Tension[last]),
		entropyLevel:   snap.LocalEntropy[last] / math.Log2(float64(snap.EntropyBins)),
		nearest:        nearestAttractor(snap.Attractors, snap.LastPrice()),
		flow:           readFlow(snap.Tension, i.th),
	}
	for _, s := range snap.Singularities {
		if s.Index >= cutoff {
			r.recentSing++
		}
	}
	for _, e := range snap.RicciEvents {
		if e.Index >= cutoff {
			r.recentRicci++
		}
	}
	return r, window
}

// nearestAttractor returns the closest attractor to price; equal distances
// keep the earlier, stronger one.
func nearestAttractor(attractors []models.Attractor, price float64) *models.AttractorTarget {
	var best *models.AttractorTarget
	for _, a := range attractors {
		t := Target(a, price)
		if best != nil && t.DistancePct >= best.DistancePct {
			continue
		}
		best = &t
	}
	return best
}

// Target views attractor a from price. DistancePct is unsigned; Direction
// carries the side.
func Target(a models.Attractor, price float64) models.AttractorTarget {
	dist := math.Abs(a.Price-price) / price * 100
	dir := models.DirectionAt
	switch {
	case a.Price > price:
		dir = models.DirectionAbove
	case a.Price < price:
		dir = models.DirectionBelow
	}
	return models.AttractorTarget{
		Price:       a.Price,
		Strength:    a.Strength,
		DistancePct: dist,
		Direction:   dir,
		Pull:        a.Strength / (1 + dist),
	}
}

var _ domsvc.Interpreter = (*Interpreter)(nil)
