package models

import "time"

// Singularity is a flagged index with the metric values attached at that index.
// Tension is the reported, relaxed value.
type Singularity struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Curvature float64   `json:"curvature"`
	Tension   float64   `json:"tension"`
	Entropy   float64   `json:"entropy"`
}

// Attractor is a price level acting as a density center. Strength is the
// cluster's share of total weighted mass, so strengths of one snapshot sum to 1.
type Attractor struct {
	Price    float64 `json:"price"`
	Strength float64 `json:"strength"`
	Members  int     `json:"members"`
}

// RicciEvent records tension redistributing right after a singularity.
type RicciEvent struct {
	Index            int       `json:"index"`
	Timestamp        time.Time `json:"timestamp"`
	SingularityIndex int       `json:"singularity_index"`
	TensionBefore    float64   `json:"tension_before"`
	TensionAfter     float64   `json:"tension_after"`
}

// MetricsSnapshot is the output of one single-scale analysis. Every slice
// except Singularities, Attractors and RicciEvents has one entry per input point.
type MetricsSnapshot struct {
	Symbol  string  `json:"symbol"`
	Horizon Horizon `json:"horizon"`

	Timestamps []time.Time `json:"timestamps"`
	Prices     []float64   `json:"prices"`

	Curvature          []float64 `json:"curvature"`
	CurvatureThreshold float64   `json:"curvature_threshold"`

	Entropy       float64   `json:"entropy"`
	LocalEntropy  []float64 `json:"local_entropy"`
	EntropyBins   int       `json:"entropy_bins"`
	EntropyWindow int       `json:"entropy_window"`

	// Tension is relaxed at each RicciEvent index. TensionThreshold and the
	// singularity gate are computed on the unrelaxed accumulation, because
	// relaxations only exist once singularities are known.
	Tension          []float64 `json:"tension"`
	TensionThreshold float64   `json:"tension_threshold"`

	Singularities []Singularity `json:"singularities"`
	Attractors    []Attractor   `json:"attractors"`
	RicciEvents   []RicciEvent  `json:"ricci_events"`
}

// Len returns the number of points the snapshot covers.
func (s *MetricsSnapshot) Len() int { return len(s.Prices) }

// LastPrice returns the most recent price, or 0 for an empty snapshot.
func (s *MetricsSnapshot) LastPrice() float64 {
	if len(s.Prices) == 0 {
		return 0
	}
	return s.Prices[len(s.Prices)-1]
}

// LastTimestamp returns the most recent timestamp.
func (s *MetricsSnapshot) LastTimestamp() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[len(s.Timestamps)-1]
}
