package di

import (
	"context"
	"fmt"

	"SentinelConsole/internal/domain/repository"
	"SentinelConsole/internal/handler/api"
	"SentinelConsole/internal/handler/ws"
	mid "SentinelConsole/internal/middleware"
	internalrepo "SentinelConsole/internal/repository"
	"SentinelConsole/internal/service/adminapi"
	"SentinelConsole/internal/service/ratelimit"
	"SentinelConsole/internal/service/session"
	"SentinelConsole/internal/usecase"
	"SentinelConsole/pkg/cache"
	"SentinelConsole/pkg/config"
	xhttp "SentinelConsole/pkg/http"
	pkgkafka "SentinelConsole/pkg/kafka"
	applogger "SentinelConsole/pkg/logger"
	"SentinelConsole/pkg/metrics"
	"SentinelConsole/pkg/server"

	"github.com/benbjohnson/clock"
)

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithAutoCreateTopics(cfg.Kafka.AutoCreate),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideLogger creates the app logger. Repeated errors are
// aggregated to Kafka when a producer is available.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Log.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Log.Collector.Interval,
			CountThreshold: cfg.Log.Collector.Threshold,
			Topic:          cfg.Kafka.LogTopic,
			Source:         "sentinel-console/" + cfg.Environment,
			Publisher:      producer,
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache creates the session cache backend.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if cfg.Session.Backend != "redis" {
		return cache.NewMemoryCache(cache.WithMemoryCleanup(cfg.Session.CleanupInterval)), nil
	}
	c, err := cache.NewRedisCache(context.Background(),
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
		cache.WithRedisPrefix(cache.GenerateKeyWithParams(cfg.Redis.Prefix, "console", cfg.Environment)),
	)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}
	return c, nil
}

// ProvideSessionStorage creates the persisted session holder.
func ProvideSessionStorage(cfg *config.Config, c cache.Service, l *applogger.Logger) *session.Storage {
	return session.NewStorage(c, cfg.Session.TTL, l.Named("session"))
}

// ProvideHub creates the live channel hub.
func ProvideHub(cfg *config.Config, m repository.Metrics, l *applogger.Logger) *ws.Hub {
	return ws.NewHub(m, l.Named("ws"), ws.WithAllowedOrigins(cfg.Server.AllowedOrigins))
}

// ProvideAdminClient creates the backend client. A 401 clears storage and
// sends every connected page to the login screen.
func ProvideAdminClient(cfg *config.Config, storage *session.Storage, hub *ws.Hub, l *applogger.Logger) *adminapi.Client {
	return adminapi.New(cfg.AdminAPI.BaseURL, storage, hub, l.Named("adminapi"),
		xhttp.WithTimeout(cfg.AdminAPI.Timeout),
	)
}

// ProvideSessionStore creates the login and logout flow.
func ProvideSessionStore(storage *session.Storage, client *adminapi.Client, m repository.Metrics, l *applogger.Logger) *session.Store {
	return session.NewStore(storage, client, clock.New(), m, l.Named("session"))
}

// ProvideAdminData creates the backend data access layer.
func ProvideAdminData(client *adminapi.Client, m repository.Metrics, l *applogger.Logger) repository.AdminData {
	return internalrepo.NewAdminRepository(client, clock.New(), m, l.Named("repository"))
}

// ProvideSnapshotPipeline creates the throttled snapshot feed. Without Kafka
// snapshots are accepted and dropped.
func ProvideSnapshotPipeline(cfg *config.Config, producer *pkgkafka.Producer, m repository.Metrics) *mid.SnapshotPipeline {
	var sink repository.SnapshotPublisher = internalrepo.NopPublisher{}
	if producer != nil {
		sink = internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SnapshotTopic)
	}
	return mid.NewSnapshotPipeline(sink, m,
		mid.WithMaxRPS(cfg.Kafka.Pipeline.MaxPerSecond),
		mid.WithBufferSize(cfg.Kafka.Pipeline.BufferSize),
	)
}

// ProvideRenderer fans renders out to the hub and the snapshot pipeline.
func ProvideRenderer(hub *ws.Hub, pipeline *mid.SnapshotPipeline, l *applogger.Logger) *usecase.Renderer {
	return usecase.NewRenderer(hub, pipeline, clock.New(), l.Named("render"))
}

// ProvideConsole creates the page views and ties their lifecycle to the session.
func ProvideConsole(
	cfg *config.Config,
	data repository.AdminData,
	renderer *usecase.Renderer,
	m repository.Metrics,
	storage *session.Storage,
	store *session.Store,
	l *applogger.Logger,
) *usecase.Console {
	deps := usecase.ViewDeps{
		Data:     data,
		Renderer: renderer,
		Clock:    clock.New(),
		Metrics:  m,
		Log:      l.Named("views"),
	}
	choices := cfg.Polling.SymbolChoices
	console := usecase.NewConsole(store,
		usecase.NewMarketView(deps, usecase.ViewConfig{Interval: cfg.Polling.MarketData}),
		usecase.NewOrderBookView(deps, usecase.ViewConfig{
			Interval:      cfg.Polling.OrderBook,
			DefaultSymbol: cfg.Polling.OrderBookSym,
			SymbolChoices: choices,
		}),
		usecase.NewTradeView(deps, usecase.ViewConfig{
			Interval:      cfg.Polling.TradeHistory,
			DefaultSymbol: cfg.Polling.TradeSym,
			SymbolChoices: choices,
		}),
		usecase.NewSurveillanceView(deps, usecase.ViewConfig{Interval: cfg.Polling.Surveillance}),
		l.Named("console"),
	)
	storage.OnChange(console.SessionChanged)
	return console
}

// ProvideHTTPHandler creates the console routes.
func ProvideHTTPHandler(cfg *config.Config, console *usecase.Console, store *session.Store, hub *ws.Hub, l *applogger.Logger) xhttp.Handler {
	return api.NewConsoleEchoHandler(l.Named("http"), console, store, hub, hub, ratelimit.New(), api.LoginLimit{
		Burst:     cfg.RateLimit.LoginBurst,
		PerSecond: cfg.RateLimit.LoginPerSecond,
	})
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	store *session.Store,
	console *usecase.Console,
	hub *ws.Hub,
	pipeline *mid.SnapshotPipeline,
	producer *pkgkafka.Producer,
	c cache.Service,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, l, store, console, hub, pipeline, producer, c, handler)
}
