package api

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"Manifold/internal/domain/models"
	"Manifold/pkg/cache"
	xhttp "Manifold/pkg/http"
	xlogger "Manifold/pkg/logger"
)

// Analysis is the use case behind the analysis endpoints.
type Analysis interface {
	Interpret(ctx context.Context, symbol string, h models.Horizon) (*models.MetricsSnapshot, models.Interpretation, error)
	Multiscale(ctx context.Context, symbol string, horizons []models.Horizon) (*models.MultiscaleResult, error)
}

// AlertLog answers alert history queries.
type AlertLog interface {
	Recent(symbol string, limit int) []models.AlertEvent
}

// Watchers lists the running monitor loops.
type Watchers interface {
	Active() []models.MonitorKey
}

// ManifoldEchoHandler exposes the analysis pipeline over HTTP.
type ManifoldEchoHandler struct {
	logger   *xlogger.Logger
	analysis Analysis
	history  AlertLog
	watchers Watchers

	cache    cache.Service
	cacheTTL time.Duration
}

func NewManifoldEchoHandler(logger *xlogger.Logger, analysis Analysis, history AlertLog, watchers Watchers) *ManifoldEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &ManifoldEchoHandler{logger: logger, analysis: analysis, history: history, watchers: watchers}
}

// SetCache enables short-lived caching of single-horizon readings.
func (h *ManifoldEchoHandler) SetCache(c cache.Service, ttl time.Duration) {
	h.cache = c
	h.cacheTTL = ttl
}

func (h *ManifoldEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/analyze", h.Analyze)
	g.GET("/interpret", h.Interpret)
	g.GET("/pulse", h.Pulse)
	g.GET("/attractors", h.Attractors)
	g.GET("/singularities", h.Singularities)
	g.GET("/multiscale", h.Multiscale)
	g.GET("/alerts", h.Alerts)
	g.GET("/monitors", h.Monitors)
}

func (h *ManifoldEchoHandler) Analyze(c echo.Context) error {
	r, ok, err := h.readRequest(c)
	if !ok {
		return err
	}
	return xhttp.SuccessResponse(c, r.Snapshot)
}

func (h *ManifoldEchoHandler) Interpret(c echo.Context) error {
	r, ok, err := h.readRequest(c)
	if !ok {
		return err
	}
	return xhttp.SuccessResponse(c, InterpretResponse{
		Interpretation: r.Interpretation,
		Timestamp:      r.Snapshot.LastTimestamp(),
		Price:          r.Snapshot.LastPrice(),
	})
}

func (h *ManifoldEchoHandler) Pulse(c echo.Context) error {
	r, ok, err := h.readRequest(c)
	if !ok {
		return err
	}
	return xhttp.SuccessResponse(c, toPulse(*r))
}

func (h *ManifoldEchoHandler) Attractors(c echo.Context) error {
	r, ok, err := h.readRequest(c)
	if !ok {
		return err
	}
	return xhttp.SuccessResponse(c, toAttractors(*r))
}

func (h *ManifoldEchoHandler) Singularities(c echo.Context) error {
	r, ok, err := h.readRequest(c)
	if !ok {
		return err
	}
	return xhttp.SuccessResponse(c, toSingularities(*r))
}

func (h *ManifoldEchoHandler) Multiscale(c echo.Context) error {
	req := &models.MultiscaleRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	var horizons []models.Horizon
	for _, s := range xhttp.SplitList(req.Horizons) {
		if !models.IsValidHorizon(models.Horizon(s)) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown horizon %q", s).WithParam("horizon", s))
		}
		horizons = append(horizons, models.Horizon(s))
	}

	res, err := h.analysis.Multiscale(c.Request().Context(), req.Symbol, horizons)
	if err != nil {
		h.logger.Error("multiscale usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, appError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *ManifoldEchoHandler) Alerts(c echo.Context) error {
	req := &models.AlertsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	events := h.history.Recent(req.Symbol, req.Limit)
	if since, ok := xhttp.ParseTime(c.QueryParam("since")); ok {
		kept := events[:0]
		for _, evt := range events {
			if evt.EmittedAt.After(since) {
				kept = append(kept, evt)
			}
		}
		events = kept
	}
	if events == nil {
		events = []models.AlertEvent{}
	}
	return xhttp.ListResponse(c, events, int64(len(events)))
}

func (h *ManifoldEchoHandler) Monitors(c echo.Context) error {
	keys := []models.MonitorKey{}
	if h.watchers != nil {
		keys = h.watchers.Active()
	}
	out := make([]map[string]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]string{"symbol": k.Symbol, "horizon": string(k.Horizon)})
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

// readRequest validates a symbol/horizon query and returns its reading. When
// ok is false the error response has been written and err is the write result.
func (h *ManifoldEchoHandler) readRequest(c echo.Context) (r *reading, ok bool, err error) {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return nil, false, xhttp.BadRequestResponse(c, verr)
	}
	horizon := models.Horizon(req.Horizon)
	if !models.IsValidHorizon(horizon) {
		return nil, false, xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unknown horizon %q", req.Horizon).WithParam("horizon", req.Horizon))
	}

	r, err = h.reading(c.Request().Context(), req.Symbol, horizon)
	if err != nil {
		h.logger.Error("analysis usecase error",
			xlogger.String("path", c.Path()),
			xlogger.String("symbol", req.Symbol),
			xlogger.String("horizon", string(horizon)),
			xlogger.Error(err),
		)
		return nil, false, xhttp.AppErrorResponse(c, appError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return r, true, nil
}

func (h *ManifoldEchoHandler) reading(ctx context.Context, symbol string, horizon models.Horizon) (*reading, error) {
	key := cache.GenerateKeyWithParams("reading", symbol, horizon)
	if h.cache != nil {
		var cached reading
		if err := h.cache.Get(ctx, key, &cached); err == nil && cached.Snapshot != nil {
			h.logger.Debug("reading cache_hit", xlogger.String("key", key))
			return &cached, nil
		}
	}

	snap, in, err := h.analysis.Interpret(ctx, symbol, horizon)
	if err != nil {
		return nil, err
	}
	r := &reading{Snapshot: snap, Interpretation: in}
	if h.cache != nil {
		if err := h.cache.Set(ctx, key, r, h.cacheTTL); err != nil {
			h.logger.Warn("reading cache_set_error", xlogger.String("key", key), xlogger.Error(err))
		}
	}
	return r, nil
}
