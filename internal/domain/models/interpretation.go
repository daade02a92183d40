package models

// Attractor directions relative to the current price.
const (
	DirectionAbove = "above"
	DirectionBelow = "below"
	DirectionAt    = "at"
)

// AttractorTarget is an attractor seen from the current price.
type AttractorTarget struct {
	Price       float64 `json:"price"`
	Strength    float64 `json:"strength"`
	DistancePct float64 `json:"distance_pct"`
	Direction   string  `json:"direction"`
	Pull        float64 `json:"pull"`
}

// Interpretation is the phase reading of one snapshot.
type Interpretation struct {
	Symbol     string  `json:"symbol"`
	Horizon    Horizon `json:"horizon"`
	Phase      Phase   `json:"phase"`
	Rule       string  `json:"rule"`
	Confidence float64 `json:"confidence"`

	CurvatureState string `json:"curvature_state"`
	TensionState   string `json:"tension_state"`
	EntropyState   string `json:"entropy_state"`
	Flow           string `json:"flow"`

	// Levels the rules were evaluated on.
	CurvatureRatio float64 `json:"curvature_ratio"`
	TensionLevel   float64 `json:"tension_level"`
	EntropyLevel   float64 `json:"entropy_level"`

	RecentSingularities int `json:"recent_singularities"`
	RecentRicciEvents   int `json:"recent_ricci_events"`

	NearestAttractor *AttractorTarget `json:"nearest_attractor,omitempty"`

	Warning   string `json:"warning,omitempty"`
	Narrative string `json:"narrative"`
}
