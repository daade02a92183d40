package api

import (
	"time"

	"Manifold/internal/domain/models"
	"Manifold/internal/services/interpreter"
)

// reading is one analyzed and interpreted window, the unit the single-horizon
// endpoints project from. It is also what the response cache stores.
type reading struct {
	Snapshot       *models.MetricsSnapshot `json:"snapshot"`
	Interpretation models.Interpretation   `json:"interpretation"`
}

type PulseResponse struct {
	Symbol         string         `json:"symbol"`
	Horizon        models.Horizon `json:"horizon"`
	Timestamp      time.Time      `json:"timestamp"`
	Price          float64        `json:"price"`
	Phase          models.Phase   `json:"phase"`
	Confidence     float64        `json:"confidence"`
	Flow           string         `json:"flow"`
	CurvatureRatio float64        `json:"curvature_ratio"`
	TensionLevel   float64        `json:"tension_level"`
	EntropyLevel   float64        `json:"entropy_level"`
	Warning        string         `json:"warning,omitempty"`
	Narrative      string         `json:"narrative"`
}

type AttractorsResponse struct {
	Symbol     string                   `json:"symbol"`
	Horizon    models.Horizon           `json:"horizon"`
	Price      float64                  `json:"price"`
	Attractors []models.AttractorTarget `json:"attractors"`
	Nearest    *models.AttractorTarget  `json:"nearest,omitempty"`
}

type SingularitiesResponse struct {
	Symbol             string               `json:"symbol"`
	Horizon            models.Horizon       `json:"horizon"`
	CurvatureThreshold float64              `json:"curvature_threshold"`
	TensionThreshold   float64              `json:"tension_threshold"`
	Singularities      []models.Singularity `json:"singularities"`
	RicciEvents        []models.RicciEvent  `json:"ricci_events"`
}

type InterpretResponse struct {
	models.Interpretation
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

func toPulse(r reading) PulseResponse {
	in := r.Interpretation
	return PulseResponse{
		Symbol:         r.Snapshot.Symbol,
		Horizon:        r.Snapshot.Horizon,
		Timestamp:      r.Snapshot.LastTimestamp(),
		Price:          r.Snapshot.LastPrice(),
		Phase:          in.Phase,
		Confidence:     in.Confidence,
		Flow:           in.Flow,
		CurvatureRatio: in.CurvatureRatio,
		TensionLevel:   in.TensionLevel,
		EntropyLevel:   in.EntropyLevel,
		Warning:        in.Warning,
		Narrative:      in.Narrative,
	}
}

// toAttractors views every attractor from the last price, in snapshot order.
func toAttractors(r reading) AttractorsResponse {
	price := r.Snapshot.LastPrice()
	out := AttractorsResponse{
		Symbol:     r.Snapshot.Symbol,
		Horizon:    r.Snapshot.Horizon,
		Price:      price,
		Attractors: make([]models.AttractorTarget, 0, len(r.Snapshot.Attractors)),
		Nearest:    r.Interpretation.NearestAttractor,
	}
	if price <= 0 {
		return out
	}
	for _, a := range r.Snapshot.Attractors {
		out.Attractors = append(out.Attractors, interpreter.Target(a, price))
	}
	return out
}

func toSingularities(r reading) SingularitiesResponse {
	s := r.Snapshot
	out := SingularitiesResponse{
		Symbol:             s.Symbol,
		Horizon:            s.Horizon,
		CurvatureThreshold: s.CurvatureThreshold,
		TensionThreshold:   s.TensionThreshold,
		Singularities:      s.Singularities,
		RicciEvents:        s.RicciEvents,
	}
	if out.Singularities == nil {
		out.Singularities = []models.Singularity{}
	}
	if out.RicciEvents == nil {
		out.RicciEvents = []models.RicciEvent{}
	}
	return out
}
