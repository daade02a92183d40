package models

// Phase is the categorical reading of a snapshot.
type Phase string

const (
	PhaseSingularityAlert    Phase = "SingularityAlert"
	PhaseCorrection          Phase = "Correction"
	PhaseImpulse             Phase = "Impulse"
	PhaseCompressionBuilding Phase = "CompressionBuilding"
	PhaseEquilibrium         Phase = "Equilibrium"
	PhaseConvergence         Phase = "Convergence"
	PhaseTransitional        Phase = "Transitional"
)

// Phases lists every phase from most severe to most generic. The order is the
// interpreter's rule order and the last tie-breaker in multi-scale voting.
func Phases() []Phase {
	return []Phase{
		PhaseSingularityAlert,
		PhaseCorrection,
		PhaseImpulse,
		PhaseCompressionBuilding,
		PhaseEquilibrium,
		PhaseConvergence,
		PhaseTransitional,
	}
}

// Severity ranks p; lower is more severe. Unknown phases rank last.
func (p Phase) Severity() int {
	for i, q := range Phases() {
		if q == p {
			return i
		}
	}
	return len(Phases())
}
