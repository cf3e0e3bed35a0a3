//go:build wireinject
// +build wireinject

package di

import (
	"ShortBasket/pkg/config"
	"ShortBasket/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideResultCache,
		ProvideMarketDataProvider,

		// Services
		ProvideSeriesCache,
		ProvideBenchmarkStream,
		ProvideBenchmarkSnapshot,

		// Use cases
		ProvideBenchmarkCollector,
		ProvideBasketSelector,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
