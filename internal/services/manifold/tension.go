package manifold

import "Manifold/internal/services/features"

// TensionAccumulator keeps a signed, exponentially decayed sum of
// directional pressure. Each step adds the return, boosted when it keeps the
// sign of the previous return.
type TensionAccumulator struct {
	decay float64
	bonus float64
	value float64
	prev  float64
}

// NewTensionAccumulator returns an accumulator at rest.
func NewTensionAccumulator(decay, persistenceBonus float64) *TensionAccumulator {
	return &TensionAccumulator{decay: decay, bonus: persistenceBonus}
}

// Step folds one return into the state and returns the new tension.
func (a *TensionAccumulator) Step(r float64) float64 {
	weight := 1.0
	if s := features.Sign(r); s != 0 && s == features.Sign(a.prev) {
		weight += a.bonus
	}
	a.value = a.decay*a.value + r*weight
	a.prev = r
	return a.value
}

// Relax pulls the state toward zero by fraction (1 means a full reset).
func (a *TensionAccumulator) Relax(fraction float64) float64 {
	a.value *= 1 - fraction
	return a.value
}

// Value returns the current tension.
func (a *TensionAccumulator) Value() float64 { return a.value }

// accumulateTension runs an accumulator over returns and returns n values
// aligned to prices; index 0 has no return and stays at zero. relaxAt marks
// indices where a flow event relaxes the state after that step.
func accumulateTension(returns []float64, n int, decay, bonus float64, relaxAt []bool, fraction float64) []float64 {
	out := make([]float64, n)
	acc := NewTensionAccumulator(decay, bonus)
	for i := 1; i < n && i-1 < len(returns); i++ {
		out[i] = acc.Step(returns[i-1])
		if relaxAt != nil && relaxAt[i] {
			out[i] = acc.Relax(fraction)
		}
	}
	return out
}
