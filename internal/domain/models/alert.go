package models

import "time"

// AlertKind names the state transition that produced an alert.
type AlertKind string

const (
	AlertSingularity     AlertKind = "singularity_detected"
	AlertTensionHigh     AlertKind = "tension_high"
	AlertTensionReleased AlertKind = "tension_released"
	AlertEntropySpike    AlertKind = "entropy_spike"
	AlertAttractor       AlertKind = "attractor_approach"
	AlertRicciFlow       AlertKind = "ricci_flow"
	AlertPhaseChange     AlertKind = "phase_change"
	AlertFeedStale       AlertKind = "feed_stale"
	AlertFeedRecovered   AlertKind = "feed_recovered"
)

// AlertLevel is the severity attached to an alert.
type AlertLevel string

const (
	LevelInfo     AlertLevel = "info"
	LevelWarning  AlertLevel = "warning"
	LevelCritical AlertLevel = "critical"
)

// AlertEvent is emitted at most once per detected state transition.
type AlertEvent struct {
	ID          string     `json:"id"`
	Kind        AlertKind  `json:"kind"`
	Level       AlertLevel `json:"level"`
	Symbol      string     `json:"symbol"`
	Horizon     Horizon    `json:"horizon"`
	SnapshotRef string     `json:"snapshot_ref,omitempty"`
	Price       float64    `json:"price,omitempty"`
	Message     string     `json:"message"`
	EmittedAt   time.Time  `json:"emitted_at"`
}

// MonitorState is what a monitor remembers about a key between polls.
type MonitorState struct {
	SnapshotRef    string           `json:"snapshot_ref"`
	Snapshot       *MetricsSnapshot `json:"snapshot"`
	Interpretation *Interpretation  `json:"interpretation"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
