package interpreter

import (
	"math"

	"Manifold/internal/domain/models"
	"Manifold/internal/services/features"
)

// reading is what the rules see of a snapshot.
type reading struct {
	curvature      float64 // last value, signed
	curvatureRatio float64
	tension        float64 // last value, signed
	tensionLevel   float64
	entropyLevel   float64
	recentSing     int
	recentRicci    int
	nearest        *models.AttractorTarget
	flow           string
}

// verdict is what a matching rule builds.
type verdict struct {
	phase models.Phase
	// margin measures how far the deciding thresholds were exceeded; zero
	// means the reading sits on the boundary.
	margin float64
}

// Rule pairs a predicate with the verdict it produces. Rules are evaluated in
// order and the first match wins.
type Rule struct {
	Name  string
	When  func(r reading, th Thresholds) bool
	Build func(r reading, th Thresholds) verdict
}

// fallbackConfidence is reported when no rule but the fallback matched.
const fallbackConfidence = 30

func defaultRules() []Rule {
	return []Rule{
		{
			Name: "singularity",
			When: func(r reading, th Thresholds) bool {
				return r.recentSing > 0 ||
					(r.curvatureRatio >= th.SingularityCurvature && r.tensionLevel >= th.HighTension)
			},
			Build: func(r reading, th Thresholds) verdict {
				m := float64(r.recentSing) + excess(r.curvatureRatio, th.SingularityCurvature) + excess(r.tensionLevel, th.HighTension)
				return verdict{phase: models.PhaseSingularityAlert, margin: m}
			},
		},
		{
			Name: "correction",
			When: func(r reading, th Thresholds) bool {
				if r.recentRicci > 0 {
					return true
				}
				cs, ts := features.Sign(r.curvature), features.Sign(r.tension)
				return r.curvatureRatio >= th.ImpulseCurvature && cs != 0 && ts != 0 && cs != ts &&
					r.tensionLevel >= th.CompressionTension
			},
			Build: func(r reading, th Thresholds) verdict {
				m := float64(r.recentRicci) + excess(r.curvatureRatio, th.ImpulseCurvature) + excess(r.tensionLevel, th.CompressionTension)
				return verdict{phase: models.PhaseCorrection, margin: m}
			},
		},
		{
			Name: "impulse",
			When: func(r reading, th Thresholds) bool {
				cs := features.Sign(r.curvature)
				return r.curvatureRatio >= th.ImpulseCurvature && r.tensionLevel >= th.CompressionTension &&
					cs != 0 && cs == features.Sign(r.tension)
			},
			Build: func(r reading, th Thresholds) verdict {
				m := excess(r.curvatureRatio, th.ImpulseCurvature) + excess(r.tensionLevel, th.CompressionTension)
				return verdict{phase: models.PhaseImpulse, margin: m}
			},
		},
		{
			Name: "compression",
			When: func(r reading, th Thresholds) bool {
				return r.tensionLevel >= th.CompressionTension && r.curvatureRatio < th.ImpulseCurvature
			},
			Build: func(r reading, th Thresholds) verdict {
				m := excess(r.tensionLevel, th.CompressionTension) + shortfall(r.curvatureRatio, th.ImpulseCurvature)
				return verdict{phase: models.PhaseCompressionBuilding, margin: m}
			},
		},
		{
			Name: "equilibrium",
			When: func(r reading, th Thresholds) bool {
				return r.curvatureRatio < th.CalmCurvature && r.tensionLevel < th.CompressionTension &&
					r.entropyLevel < th.LowEntropy
			},
			Build: func(r reading, th Thresholds) verdict {
				m := shortfall(r.curvatureRatio, th.CalmCurvature) + shortfall(r.tensionLevel, th.CompressionTension) +
					shortfall(r.entropyLevel, th.LowEntropy)
				return verdict{phase: models.PhaseEquilibrium, margin: m}
			},
		},
		{
			Name: "convergence",
			When: func(r reading, th Thresholds) bool {
				return r.nearest != nil && r.nearest.DistancePct <= th.ConvergencePct && r.tensionLevel < th.HighTension
			},
			Build: func(r reading, th Thresholds) verdict {
				m := shortfall(r.nearest.DistancePct, th.ConvergencePct) + r.nearest.Strength
				return verdict{phase: models.PhaseConvergence, margin: m}
			},
		},
		{
			Name: "transitional",
			When: func(reading, Thresholds) bool { return true },
			Build: func(reading, Thresholds) verdict {
				return verdict{phase: models.PhaseTransitional, margin: -1}
			},
		},
	}
}

// excess is how far v exceeds t, relative to t.
func excess(v, t float64) float64 {
	if t <= 0 || v <= t {
		return 0
	}
	return v/t - 1
}

// shortfall is how far v stays below t, relative to t, in [0,1].
func shortfall(v, t float64) float64 {
	if t <= 0 || v >= t {
		return 0
	}
	return 1 - v/t
}

// confidence maps a non-negative margin onto [50,100). A negative margin
// marks the fallback rule.
func confidence(margin float64) float64 {
	if margin < 0 {
		return fallbackConfidence
	}
	c := 50 + 50*margin/(1+margin)
	return math.Round(c*100) / 100
}
