package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	pkgch "Manifold/pkg/clickhouse"
	applogger "Manifold/pkg/logger"
)

// CHPriceFeed implements PriceFeed over the candle tables in ClickHouse.
// Each horizon reads its own pre-aggregated table.
type CHPriceFeed struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHPriceFeed(ch *pkgch.Client, database string) *CHPriceFeed {
	if database == "" {
		database = "manifold"
	}
	return &CHPriceFeed{db: ch.DB(), database: database, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHPriceFeed) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// Fetch returns up to limit of the latest closes for symbol, oldest first.
func (s *CHPriceFeed) Fetch(ctx context.Context, symbol string, horizon models.Horizon, limit int) ([]models.PricePoint, error) {
	start := time.Now()
	table, err := tableForHorizon(s.database, horizon)
	if err != nil {
		return nil, err
	}
	const qtpl = `
        SELECT bucket, close, vol
        FROM %s
        WHERE symbol = ?
        ORDER BY bucket DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, table)
	rows, err := s.db.QueryContext(ctx, q, symbol, limit)
	if err != nil {
		s.l.Error("clickhouse fetch query error",
			applogger.String("table", table),
			applogger.String("symbol", symbol),
			applogger.Int("limit", limit),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	defer rows.Close()

	tmp := make([]models.PricePoint, 0, limit)
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Timestamp, &p.Price, &p.Volume); err != nil {
			s.l.Error("clickhouse fetch scan error",
				applogger.String("table", table),
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
			return nil, fmt.Errorf("scan price: %w", err)
		}
		tmp = append(tmp, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if len(tmp) == 0 {
		return nil, fmt.Errorf("%w: %s in %s", domain.ErrNoData, symbol, table)
	}
	reverse(tmp)
	s.l.Debug("clickhouse fetch ok",
		applogger.String("table", table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(tmp)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return tmp, nil
}

func reverse(points []models.PricePoint) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}

func tableForHorizon(database string, h models.Horizon) (string, error) {
	switch h {
	case models.HorizonMicro:
		return database + ".candles_1m", nil
	case models.HorizonShort:
		return database + ".candles_5m", nil
	case models.HorizonMedium:
		return database + ".candles_1h", nil
	case models.HorizonLong:
		return database + ".candles_1d", nil
	case models.HorizonMacro:
		return database + ".candles_1w", nil
	default:
		return "", fmt.Errorf("%w: unsupported horizon %q", domain.ErrMalformedInput, h)
	}
}
