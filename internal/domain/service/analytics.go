package service

import "Manifold/internal/domain/models"

// Analyzer runs the single-scale pipeline over a price series.
type Analyzer interface {
	Analyze(symbol string, horizon models.Horizon, points []models.PricePoint) (*models.MetricsSnapshot, error)
}

// Interpreter maps a snapshot to a phase reading. It must be a pure function
// of the snapshot and its own thresholds.
type Interpreter interface {
	Interpret(snap *models.MetricsSnapshot) (models.Interpretation, error)
}
