package di

import (
	"fmt"

	"Manifold/internal/domain/repository"
	"Manifold/internal/handler/api"
	internalrepo "Manifold/internal/repository"
	"Manifold/internal/services/interpreter"
	"Manifold/internal/services/manifold"
	"Manifold/internal/services/multiscale"
	"Manifold/internal/usecase"
	"Manifold/pkg/cache"
	pkgch "Manifold/pkg/clickhouse"
	"Manifold/pkg/config"
	xhttp "Manifold/pkg/http"
	pkgkafka "Manifold/pkg/kafka"
	applogger "Manifold/pkg/logger"
	"Manifold/pkg/metrics"
	"Manifold/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideClickHouseClient creates a read-only ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(ch.MaxOpenConns, ch.MaxIdleConns),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
		pkgch.WithReadOnly(true),
		pkgch.WithMaxExecutionTime(ch.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvidePriceFeed reads ClickHouse candles behind a rate limit and retries.
func ProvidePriceFeed(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) repository.PriceFeed {
	feed := internalrepo.NewCHPriceFeed(ch, cfg.ClickHouse.Database)
	feed.SetLogger(l.With(applogger.String("component", "clickhouse_feed")))
	return internalrepo.NewResilientFeed(feed, cfg.Feed, l)
}

// ProvideRedisCache connects to Redis, or returns nil when Redis is disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	remote, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return remote, nil
}

// ProvideCache returns the HTTP reading cache: in-process, layered over
// Redis when enabled. Monitor state never lives here.
func ProvideCache(remote *cache.RedisCache) cache.Service {
	if remote == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(remote)
}

// ProvideSnapshotStore gives the monitor a store of its own: Redis without
// an in-process LRU when enabled, otherwise an unbounded map.
func ProvideSnapshotStore(remote *cache.RedisCache, cfg *config.Config) repository.SnapshotStore {
	if remote == nil {
		return internalrepo.NewMemorySnapshotStore()
	}
	return internalrepo.NewCacheSnapshotStore(remote, cfg.Monitor.StateTTL)
}

// ProvideEngine validates engine thresholds and builds the analyzer.
func ProvideEngine(cfg *config.Config) (*manifold.Engine, error) {
	return manifold.NewEngine(cfg.Engine)
}

// ProvideInterpreter validates interpreter thresholds.
func ProvideInterpreter(cfg *config.Config) (*interpreter.Interpreter, error) {
	return interpreter.New(cfg.Interpreter)
}

// ProvideOrchestrator builds the multi-scale orchestrator.
func ProvideOrchestrator(engine *manifold.Engine, interp *interpreter.Interpreter, cfg *config.Config) (*multiscale.Orchestrator, error) {
	return multiscale.New(engine, interp, cfg.Multiscale)
}

// ProvideAnalysisUseCase creates the one-shot analysis use case.
func ProvideAnalysisUseCase(
	feed repository.PriceFeed,
	engine *manifold.Engine,
	interp *interpreter.Interpreter,
	ms *multiscale.Orchestrator,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(feed, engine, interp, ms, m, l, cfg.Analysis.Window, cfg.Analysis.Timeout)
}

// ProvideAlertHistory creates the in-memory alert ring.
func ProvideAlertHistory(cfg *config.Config) *usecase.AlertHistory {
	return usecase.NewAlertHistory(cfg.Monitor.HistorySize)
}

// ProvideAlertHub creates the websocket alert stream.
func ProvideAlertHub(l *applogger.Logger) *api.AlertHub {
	return api.NewAlertHub(l, 0)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAlertSinks collects every configured alert destination.
func ProvideAlertSinks(
	cfg *config.Config,
	l *applogger.Logger,
	history *usecase.AlertHistory,
	hub *api.AlertHub,
	producer *pkgkafka.Producer,
) []repository.AlertSink {
	sinks := []repository.AlertSink{
		internalrepo.NewLogAlertSink(l),
		history,
		hub,
	}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaAlertSink(producer, cfg.Kafka.Topic))
	}
	if cfg.Webhook.URL != "" {
		client := xhttp.NewClient(xhttp.WithTimeout(cfg.Webhook.Timeout))
		sinks = append(sinks, internalrepo.NewWebhookAlertSink(client, cfg.Webhook.URL, cfg.Webhook.Headers))
	}
	return sinks
}

// ProvideMonitor creates the streaming monitor.
func ProvideMonitor(
	feed repository.PriceFeed,
	engine *manifold.Engine,
	interp *interpreter.Interpreter,
	store repository.SnapshotStore,
	sinks []repository.AlertSink,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Monitor {
	th := interp.Thresholds()
	detector := usecase.NewTransitionDetector(usecase.DetectorConfig{
		HighTension:  th.HighTension,
		EntropySpike: th.EntropySpike,
		ProximityPct: cfg.Monitor.ProximityPct,
		MatchPct:     cfg.Monitor.MatchPct,
		PhaseAlerts:  cfg.Monitor.PhaseAlerts,
	})
	return usecase.NewMonitor(feed, engine, interp, store, detector, cfg.Monitor.MonitorConfig,
		usecase.WithSinks(sinks...),
		usecase.WithMonitorLogger(l),
		usecase.WithMonitorMetrics(m),
	)
}

// ProvideHTTPHandler combines the REST API and the websocket stream.
func ProvideHTTPHandler(
	l *applogger.Logger,
	analysis *usecase.AnalysisUseCase,
	history *usecase.AlertHistory,
	monitor *usecase.Monitor,
	hub *api.AlertHub,
	c cache.Service,
	cfg *config.Config,
) xhttp.Handler {
	h := api.NewManifoldEchoHandler(l.With(applogger.String("component", "api")), analysis, history, monitor)
	if cfg.Server.CacheTTL > 0 {
		h.SetCache(c, cfg.Server.CacheTTL)
	}
	return xhttp.Handlers{h, hub}
}

// ProvideHTTPServer creates the echo server.
func ProvideHTTPServer(handler xhttp.Handler, l *applogger.Logger, cfg *config.Config) *xhttp.Server {
	s := cfg.Server
	return xhttp.NewServer(handler, l,
		xhttp.WithHost(s.Host),
		xhttp.WithPort(s.Port),
		xhttp.WithTimeouts(s.ReadTimeout, s.WriteTimeout, s.ShutdownTimeout),
		xhttp.WithSlowThreshold(s.SlowThreshold),
		xhttp.WithCORS(!s.DisableCORS),
		xhttp.WithCORSOrigins(s.CORSOrigins),
		xhttp.WithRateLimit(s.RateLimit, s.RateBurst),
	)
}

// ProvideClosers lists the clients released on shutdown.
func ProvideClosers(ch *pkgch.Client, producer *pkgkafka.Producer, c cache.Service) server.Closers {
	closers := server.Closers{ch, c}
	if producer != nil {
		closers = append(closers, producer)
	}
	return closers
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	monitor *usecase.Monitor,
	hub *api.AlertHub,
	closers server.Closers,
) *server.App {
	return server.New(cfg, l, httpServer, monitor, hub, closers)
}
