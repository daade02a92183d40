package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	domrepo "Manifold/internal/domain/repository"
	domsvc "Manifold/internal/domain/service"
	"Manifold/internal/services/multiscale"
	"Manifold/pkg/logger"
)

// AnalysisUseCase serves one-shot requests: fetch the window, then analyze
// and interpret it. Feed failures surface immediately as
// domain.ErrUpstreamUnavailable.
type AnalysisUseCase struct {
	feed     domrepo.PriceFeed
	analyzer domsvc.Analyzer
	interp   domsvc.Interpreter
	ms       *multiscale.Orchestrator
	metrics  domrepo.Metrics
	log      *logger.Logger

	window  int
	timeout time.Duration
}

// NewAnalysisUseCase creates a new AnalysisUseCase. window is the number of
// points fetched per horizon.
func NewAnalysisUseCase(
	feed domrepo.PriceFeed,
	analyzer domsvc.Analyzer,
	interp domsvc.Interpreter,
	ms *multiscale.Orchestrator,
	metrics domrepo.Metrics,
	log *logger.Logger,
	window int,
	timeout time.Duration,
) *AnalysisUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AnalysisUseCase{
		feed:     feed,
		analyzer: analyzer,
		interp:   interp,
		ms:       ms,
		metrics:  metricsOrNop(metrics),
		log:      log.With(logger.String("component", "analysis")),
		window:   window,
		timeout:  timeout,
	}
}

// Analyze fetches the latest window for symbol at horizon and returns its snapshot.
func (u *AnalysisUseCase) Analyze(ctx context.Context, symbol string, h models.Horizon) (*models.MetricsSnapshot, error) {
	points, err := u.fetch(ctx, symbol, h)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	snap, err := u.analyzer.Analyze(symbol, h, points)
	u.metrics.RecordLatency("analyze_"+string(h), time.Since(start).Seconds())
	if err != nil {
		u.metrics.RecordError("analyze")
		return nil, err
	}
	u.metrics.RecordLastPrice(symbol, snap.LastPrice())
	return snap, nil
}

// Interpret analyzes the latest window and reads its phase.
func (u *AnalysisUseCase) Interpret(ctx context.Context, symbol string, h models.Horizon) (*models.MetricsSnapshot, models.Interpretation, error) {
	snap, err := u.Analyze(ctx, symbol, h)
	if err != nil {
		return nil, models.Interpretation{}, err
	}
	in, err := u.interp.Interpret(snap)
	if err != nil {
		u.metrics.RecordError("interpret")
		return nil, models.Interpretation{}, err
	}
	return snap, in, nil
}

// Multiscale fetches every requested horizon concurrently and reconciles them.
// An empty horizons list uses the orchestrator's configured set. A horizon
// the feed has no data for is scored as insufficient rather than failing the
// request.
func (u *AnalysisUseCase) Multiscale(ctx context.Context, symbol string, horizons []models.Horizon) (*models.MultiscaleResult, error) {
	ms := u.ms
	if len(horizons) > 0 {
		var err error
		if ms, err = u.ms.WithHorizons(horizons); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedInput, err)
		}
	}

	var (
		mu     sync.Mutex
		series = make(map[models.Horizon][]models.PricePoint, len(ms.Horizons()))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, h := range ms.Horizons() {
		h := h
		g.Go(func() error {
			points, err := u.fetch(gctx, symbol, h)
			if errors.Is(err, domain.ErrNoData) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			series[h] = points
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := ms.AnalyzeMultiscale(symbol, series)
	u.metrics.RecordLatency("multiscale", time.Since(start).Seconds())
	if err != nil {
		u.metrics.RecordError("multiscale")
		return nil, err
	}
	return res, nil
}

func (u *AnalysisUseCase) fetch(ctx context.Context, symbol string, h models.Horizon) ([]models.PricePoint, error) {
	if !models.IsValidHorizon(h) {
		return nil, fmt.Errorf("%w: unknown horizon %q", domain.ErrMalformedInput, h)
	}
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}
	start := time.Now()
	points, err := u.feed.Fetch(ctx, symbol, h, u.window)
	u.metrics.RecordLatency("fetch", time.Since(start).Seconds())
	if err != nil {
		u.metrics.RecordError("fetch")
		u.log.Warn("fetch failed", logger.String("symbol", symbol), logger.String("horizon", string(h)), logger.Error(err))
		return nil, fmt.Errorf("%w: fetch %s/%s: %w", domain.ErrUpstreamUnavailable, symbol, h, err)
	}
	return points, nil
}
