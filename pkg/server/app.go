package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"Manifold/internal/domain/models"
	"Manifold/internal/usecase"
	"Manifold/pkg/config"
	xhttp "Manifold/pkg/http"
	applogger "Manifold/pkg/logger"
)

// Closers are infrastructure clients released on shutdown, in order.
type Closers []io.Closer

// Hub is the websocket side that must be disconnected before the HTTP server
// can drain.
type Hub interface {
	Close()
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	monitor    *usecase.Monitor
	hub        Hub
	closers    Closers
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	monitor *usecase.Monitor,
	hub Hub,
	closers Closers,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		httpServer: httpServer,
		monitor:    monitor,
		hub:        hub,
		closers:    closers,
	}
}

// Run starts the HTTP server and one monitor loop per configured
// (symbol, horizon), then blocks until SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	watched := a.startMonitors(ctx)
	a.l.Info("monitors started",
		applogger.Strings("symbols", a.cfg.Monitor.Symbols),
		applogger.Int("loops", watched),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) startMonitors(ctx context.Context) int {
	n := 0
	for _, symbol := range a.cfg.Monitor.Symbols {
		for _, h := range a.cfg.Monitor.Horizons {
			_, err := a.monitor.Watch(ctx, symbol, h, nil)
			if errors.Is(err, usecase.ErrAlreadyWatching) {
				continue
			}
			if err != nil {
				a.l.Error("watch failed",
					applogger.String("symbol", symbol),
					applogger.String("horizon", string(h)),
					applogger.Error(err),
				)
				continue
			}
			n++
		}
	}
	return n
}

// Watching lists the running loops.
func (a *App) Watching() []models.MonitorKey { return a.monitor.Active() }

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")

	a.monitor.StopAll()
	if a.hub != nil {
		a.hub.Close()
	}

	var firstErr error
	if err := a.httpServer.Stop(context.Background()); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	for _, c := range a.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return firstErr
}
