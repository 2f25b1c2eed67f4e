//go:build wireinject
// +build wireinject

package di

import (
	"SentinelConsole/pkg/config"
	"SentinelConsole/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Session and backend access
		ProvideSessionStorage,
		ProvideHub,
		ProvideAdminClient,
		ProvideSessionStore,
		ProvideAdminData,

		// Rendering and views
		ProvideSnapshotPipeline,
		ProvideRenderer,
		ProvideConsole,

		// Application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
