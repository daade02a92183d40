package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"Manifold/internal/domain"
	"Manifold/internal/domain/models"
	domrepo "Manifold/internal/domain/repository"
	applogger "Manifold/pkg/logger"
)

// ResilientConfig tunes the rate limit and retry policy around a feed.
type ResilientConfig struct {
	RequestsPerSec  float64       `yaml:"requests_per_sec" default:"5" validate:"gt=0"`
	Burst           int           `yaml:"burst" default:"5" validate:"gte=1"`
	MaxRetries      uint64        `yaml:"max_retries" default:"3"`
	InitialInterval time.Duration `yaml:"initial_interval" default:"200ms"`
	MaxInterval     time.Duration `yaml:"max_interval" default:"5s"`
}

// ResilientFeed decorates a PriceFeed with a shared token bucket and
// exponential retry of transient failures. ErrNoData and ErrRateLimited are
// never retried.
type ResilientFeed struct {
	next    domrepo.PriceFeed
	limiter *rate.Limiter
	cfg     ResilientConfig
	l       *applogger.Logger
}

func NewResilientFeed(next domrepo.PriceFeed, cfg ResilientConfig, l *applogger.Logger) *ResilientFeed {
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 5
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval < cfg.InitialInterval {
		cfg.MaxInterval = cfg.InitialInterval
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &ResilientFeed{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		cfg:     cfg,
		l:       l.With(applogger.String("component", "resilient_feed")),
	}
}

func (f *ResilientFeed) Fetch(ctx context.Context, symbol string, horizon models.Horizon, limit int) ([]models.PricePoint, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}

	var points []models.PricePoint
	attempt := 0
	operation := func() error {
		attempt++
		var err error
		points, err = f.next.Fetch(ctx, symbol, horizon, limit)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrNoData) || errors.Is(err, domain.ErrRateLimited) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		f.l.Warn("feed fetch retry",
			applogger.String("symbol", symbol),
			applogger.String("horizon", string(horizon)),
			applogger.Int("attempt", attempt),
			applogger.Duration("wait", wait),
			applogger.Error(err),
		)
	}

	backoffStrategy := backoff.NewExponentialBackOff()
	backoffStrategy.InitialInterval = f.cfg.InitialInterval
	backoffStrategy.MaxInterval = f.cfg.MaxInterval
	backoffStrategy.MaxElapsedTime = 0

	b := backoff.WithContext(backoff.WithMaxRetries(backoffStrategy, f.cfg.MaxRetries), ctx)
	if err := backoff.RetryNotify(operation, b, notify); err != nil {
		return nil, err
	}
	return points, nil
}
