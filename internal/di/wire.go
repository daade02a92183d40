//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"Manifold/pkg/config"
	"Manifold/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideRedisCache,
		ProvideCache,

		// Repositories
		ProvidePriceFeed,
		ProvideSnapshotStore,

		// Pipeline
		ProvideEngine,
		ProvideInterpreter,
		ProvideOrchestrator,

		// Use cases and sinks
		ProvideAnalysisUseCase,
		ProvideAlertHistory,
		ProvideAlertHub,
		ProvideAlertSinks,
		ProvideMonitor,

		// HTTP
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideClosers,
		ProvideApp,
	)
	return &server.App{}, nil
}
