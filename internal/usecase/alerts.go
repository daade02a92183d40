package usecase

import (
	"fmt"
	"math"
	"time"

	"Manifold/internal/domain/models"
)

// DetectorConfig holds the bands the transition detector watches.
type DetectorConfig struct {
	// HighTension is the |tension| level at which the high band starts.
	HighTension float64
	// EntropySpike is the normalized local entropy level of a spike.
	EntropySpike float64
	// ProximityPct is how close, in percent of price, counts as at an attractor.
	ProximityPct float64
	// MatchPct is how far an attractor may drift between polls and still be
	// the same attractor.
	MatchPct float64
	// PhaseAlerts enables phase_change events.
	PhaseAlerts bool
}

// TransitionDetector decides which alerts a new reading warrants compared to
// the previous one. It is stateless; callers supply both readings.
type TransitionDetector struct {
	cfg DetectorConfig
}

func NewTransitionDetector(cfg DetectorConfig) *TransitionDetector {
	return &TransitionDetector{cfg: cfg}
}

// Detect returns one event per state transition between prev and the
// current reading. A nil prev behaves as an empty baseline. Identical
// readings yield no events. Events carry kind, level, price and message only.
func (d *TransitionDetector) Detect(prev *models.MonitorState, snap *models.MetricsSnapshot, cur models.Interpretation) []models.AlertEvent {
	var (
		prevSnap   *models.MetricsSnapshot
		prevInterp *models.Interpretation
	)
	if prev != nil {
		prevSnap, prevInterp = prev.Snapshot, prev.Interpretation
	}
	price := snap.LastPrice()
	var out []models.AlertEvent
	emit := func(kind models.AlertKind, level models.AlertLevel, msg string) {
		out = append(out, models.AlertEvent{Kind: kind, Level: level, Symbol: snap.Symbol, Horizon: snap.Horizon, Price: price, Message: msg})
	}

	seenSing := singularityTimes(prevSnap)
	for _, s := range snap.Singularities {
		if !seenSing[s.Timestamp.UnixNano()] {
			emit(models.AlertSingularity, models.LevelCritical,
				fmt.Sprintf("singularity at %.4f (%s), curvature %.4g, tension %.4g", s.Price, s.Timestamp.Format(time.RFC3339), s.Curvature, s.Tension))
		}
	}

	seenFlow := ricciTimes(prevSnap)
	for _, e := range snap.RicciEvents {
		if !seenFlow[e.Timestamp.UnixNano()] {
			emit(models.AlertRicciFlow, models.LevelInfo,
				fmt.Sprintf("tension redistributing: %.4g to %.4g", e.TensionBefore, e.TensionAfter))
		}
	}

	wasHigh := prevInterp != nil && prevInterp.TensionLevel >= d.cfg.HighTension
	isHigh := cur.TensionLevel >= d.cfg.HighTension
	switch {
	case isHigh && !wasHigh:
		emit(models.AlertTensionHigh, models.LevelWarning,
			fmt.Sprintf("tension %.4f entered the high band (%.4f)", cur.TensionLevel, d.cfg.HighTension))
	case wasHigh && !isHigh:
		emit(models.AlertTensionReleased, models.LevelInfo,
			fmt.Sprintf("tension %.4f left the high band (%.4f)", cur.TensionLevel, d.cfg.HighTension))
	}

	wasSpike := prevInterp != nil && prevInterp.EntropyLevel >= d.cfg.EntropySpike
	if cur.EntropyLevel >= d.cfg.EntropySpike && !wasSpike {
		emit(models.AlertEntropySpike, models.LevelWarning,
			fmt.Sprintf("entropy %.2f crossed the spike level %.2f", cur.EntropyLevel, d.cfg.EntropySpike))
	}

	for _, a := range snap.Attractors {
		dist := distancePct(a.Price, price)
		if dist > d.cfg.ProximityPct {
			continue
		}
		if d.previousDistance(prevSnap, a.Price) > d.cfg.ProximityPct {
			emit(models.AlertAttractor, models.LevelInfo,
				fmt.Sprintf("price %.4f within %.2f%% of attractor %.4f (strength %.2f)", price, dist, a.Price, a.Strength))
		}
	}

	if d.cfg.PhaseAlerts && prevInterp != nil && prevInterp.Phase != cur.Phase {
		emit(models.AlertPhaseChange, models.LevelInfo,
			fmt.Sprintf("phase %s -> %s", prevInterp.Phase, cur.Phase))
	}
	return out
}

// previousDistance is the distance of the previous price from the previous
// attractor matching level; +Inf when there was none.
func (d *TransitionDetector) previousDistance(prev *models.MetricsSnapshot, level float64) float64 {
	if prev == nil || prev.Len() == 0 {
		return math.Inf(1)
	}
	best := math.Inf(1)
	for _, a := range prev.Attractors {
		if distancePct(level, a.Price) <= d.cfg.MatchPct {
			best = math.Min(best, distancePct(a.Price, prev.LastPrice()))
		}
	}
	return best
}

func distancePct(level, price float64) float64 {
	if price == 0 {
		return math.Inf(1)
	}
	return math.Abs(level-price) / price * 100
}

func singularityTimes(s *models.MetricsSnapshot) map[int64]bool {
	out := make(map[int64]bool)
	if s == nil {
		return out
	}
	for _, x := range s.Singularities {
		out[x.Timestamp.UnixNano()] = true
	}
	return out
}

func ricciTimes(s *models.MetricsSnapshot) map[int64]bool {
	out := make(map[int64]bool)
	if s == nil {
		return out
	}
	for _, x := range s.RicciEvents {
		out[x.Timestamp.UnixNano()] = true
	}
	return out
}
