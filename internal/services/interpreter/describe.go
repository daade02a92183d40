package interpreter

import (
	"fmt"
	"math"
	"strings"

	"Manifold/internal/domain/models"
	"Manifold/internal/services/features"
)

// Flow readings of the recent tension trend.
const (
	FlowCrescendo    = "crescendo"
	FlowDecrescendo  = "decrescendo"
	FlowSustained    = "sustained"
	FlowRest         = "rest"
	FlowTransitional = "transitional"
)

func describeCurvature(r reading, th Thresholds) string {
	switch {
	case r.curvatureRatio >= th.SingularityCurvature:
		return "acute - structure at breaking point"
	case r.curvatureRatio >= th.ImpulseCurvature:
		if features.Sign(r.curvature) == features.Sign(r.tension) {
			return "accelerating - move sharpening"
		}
		return "decelerating - move losing momentum"
	case r.curvatureRatio >= th.CalmCurvature:
		return "bending - normal flow"
	default:
		return "flat - calm surface"
	}
}

func describeTension(r reading, th Thresholds) string {
	switch {
	case r.tensionLevel >= th.TensionHardLimit:
		return "extreme - structure cannot hold"
	case r.tensionLevel >= th.HighTension:
		return "high - pressure stretched"
	case r.tensionLevel >= th.CompressionTension:
		return "building - directional pressure"
	case r.tensionLevel >= th.CompressionTension/2:
		return "moderate - some pressure"
	default:
		return "slack - relaxed"
	}
}

func describeEntropy(r reading, th Thresholds) string {
	switch {
	case r.entropyLevel >= th.EntropySpike:
		return "chaotic - disorderly returns"
	case r.entropyLevel >= th.LowEntropy:
		return "elevated - active movement"
	case r.entropyLevel >= th.LowEntropy/2:
		return "ordered - stable belief"
	default:
		return "crystalline - locked structure"
	}
}

// readFlow compares the mean |tension| of the older and newer halves of the
// last th.FlowBars values.
func readFlow(tension []float64, th Thresholds) string {
	bars := th.FlowBars
	if len(tension) < bars {
		bars = len(tension)
	}
	if bars < 2 {
		return FlowRest
	}
	tail := tension[len(tension)-bars:]
	half := bars / 2

	var older, newer, peak float64
	for i, v := range tail {
		a := math.Abs(v)
		peak = math.Max(peak, a)
		if i < half {
			older += a
		} else {
			newer += a
		}
	}
	older /= float64(half)
	newer /= float64(bars - half)

	switch {
	case peak < th.CompressionTension/2:
		return FlowRest
	case newer > older*1.2:
		return FlowCrescendo
	case newer < older*0.8:
		return FlowDecrescendo
	case newer >= th.CompressionTension:
		return FlowSustained
	default:
		return FlowTransitional
	}
}

// warn joins every hard-limit breach into one message; empty means none.
func warn(phase models.Phase, r reading, snap *models.MetricsSnapshot, window int, th Thresholds) string {
	var msgs []string
	if phase == models.PhaseSingularityAlert {
		if s, ok := lastSingularity(snap); ok && r.recentSing > 0 {
			msgs = append(msgs, fmt.Sprintf("singularity forming at %.4f: expect tension to redistribute", s.Price))
		} else {
			msgs = append(msgs, fmt.Sprintf("curvature at %.2fx threshold under high tension", r.curvatureRatio))
		}
	}
	if r.tensionLevel >= th.TensionHardLimit {
		msgs = append(msgs, fmt.Sprintf("tension %.4f exceeds hard limit %.4f", r.tensionLevel, th.TensionHardLimit))
	}
	if r.recentSing >= th.SingularityCountLimit {
		msgs = append(msgs, fmt.Sprintf("%d singularities in the last %d bars", r.recentSing, window))
	}
	return strings.Join(msgs, "; ")
}

func lastSingularity(snap *models.MetricsSnapshot) (models.Singularity, bool) {
	if len(snap.Singularities) == 0 {
		return models.Singularity{}, false
	}
	return snap.Singularities[len(snap.Singularities)-1], true
}

func narrate(phase models.Phase, r reading, snap *models.MetricsSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: ", snap.Symbol, snap.Horizon)
	switch phase {
	case models.PhaseSingularityAlert:
		b.WriteString("the price path has folded sharply and curvature cannot be sustained.")
	case models.PhaseCorrection:
		b.WriteString("the move is bending against its own pressure and the structure is smoothing out.")
	case models.PhaseImpulse:
		b.WriteString("curvature and tension point the same way; the move is feeding itself.")
	case models.PhaseCompressionBuilding:
		b.WriteString("pressure is accumulating while price stays straight; energy is being stored.")
	case models.PhaseEquilibrium:
		b.WriteString("curvature is flat, tension is slack and returns are ordered.")
	case models.PhaseConvergence:
		b.WriteString("price is settling onto a dense level.")
	default:
		b.WriteString("no single structure dominates; the reading sits between regimes.")
	}
	if r.recentRicci > 0 {
		b.WriteString(" Tension redistributing after the last break.")
	}
	if r.nearest != nil {
		fmt.Fprintf(&b, " Nearest attractor %.4f lies %.2f%% %s.", r.nearest.Price, r.nearest.DistancePct, r.nearest.Direction)
	}
	return b.String()
}
