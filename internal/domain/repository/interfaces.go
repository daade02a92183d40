package repository

import (
	"context"

	"Manifold/internal/domain/models"
)

// PriceFeed is the data-feed collaborator. Fetch returns up to limit of the
// most recent points in ascending time order; it may fail with
// domain.ErrNoData or domain.ErrRateLimited.
type PriceFeed interface {
	Fetch(ctx context.Context, symbol string, horizon models.Horizon, limit int) ([]models.PricePoint, error)
}

// SnapshotStore keeps the last known monitor state per key. Load reports
// ok=false for a key that was never saved.
type SnapshotStore interface {
	Load(ctx context.Context, key models.MonitorKey) (state *models.MonitorState, ok bool, err error)
	Save(ctx context.Context, key models.MonitorKey, state *models.MonitorState) error
	Delete(ctx context.Context, key models.MonitorKey) error
}

// AlertSink receives alerts emitted by a monitor.
type AlertSink interface {
	Publish(ctx context.Context, evt models.AlertEvent) error
}

type Metrics interface {
	RecordPoll(symbol string, horizon models.Horizon, result string)
	RecordAlert(kind models.AlertKind, level models.AlertLevel)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
