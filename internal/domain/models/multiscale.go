package models

// HorizonResult is the pipeline output for one horizon.
type HorizonResult struct {
	Horizon        Horizon          `json:"horizon"`
	Points         int              `json:"points"`
	Snapshot       *MetricsSnapshot `json:"snapshot"`
	Interpretation *Interpretation  `json:"interpretation"`
}

// MultiscaleResult reconciles per-horizon readings.
// Note: Errors holds horizons omitted from scoring and why.
type MultiscaleResult struct {
	Symbol             string             `json:"symbol"`
	Horizons           []HorizonResult    `json:"horizons"`
	DominantPhase      Phase              `json:"dominant_phase"`
	FractalConsistency float64            `json:"fractal_consistency"`
	Scored             int                `json:"scored"`
	Votes              map[Phase]int      `json:"votes"`
	Errors             map[Horizon]string `json:"errors,omitempty"`
}
