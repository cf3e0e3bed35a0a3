package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"ShortBasket/internal/domain/models"
	"ShortBasket/internal/domain/repository"
	"ShortBasket/internal/handler/api"
	"ShortBasket/internal/service/domstream"
	"ShortBasket/internal/service/tempcache"
	"ShortBasket/internal/services/marketdata"
	"ShortBasket/internal/usecase"
	"ShortBasket/pkg/cache"
	"ShortBasket/pkg/config"
	xhttp "ShortBasket/pkg/http"
	pkgkafka "ShortBasket/pkg/kafka"
	applogger "ShortBasket/pkg/logger"
	"ShortBasket/pkg/metrics"
	"ShortBasket/pkg/server"
)

// ProvideKafkaProducer creates the Kafka producer for the log sink, or nil
// when the sink is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.LogSink.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.LogSink.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.LogSink.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.LogSink.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.LogSink.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.LogSink.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.LogSink.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.LogSink.Kafka.Producer.WriteTimeout, cfg.LogSink.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.LogSink.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.LogSink.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// kafkaLogPublisher adapts the producer to the log collector's Publisher.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p *kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideLogger creates the application logger, with the Kafka error-log
// sink attached when enabled.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.LogSink.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.LogSink.Kafka.Topic,
			Service:        "shortbasket",
			Publisher:      &kafkaLogPublisher{producer: producer},
		})
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideResultCache creates the selection result cache from config.
func ProvideResultCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Type {
	case "", "memory":
		return cache.NewMemoryCache(), nil
	case "redis", "layered":
		host, portStr, err := net.SplitHostPort(cfg.Cache.Redis.Addr)
		if err != nil {
			return nil, fmt.Errorf("cache.redis.addr: %w", err)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("cache.redis.addr port: %w", err)
		}
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(host),
			cache.WithRedisPort(port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		if cfg.Cache.Type == "layered" {
			return cache.NewLayeredCache(rc), nil
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Cache.Type)
	}
}

// ProvideMarketDataProvider creates the upstream HTTP client.
func ProvideMarketDataProvider(cfg *config.Config) repository.MarketDataProvider {
	opts := []marketdata.ClientOption{
		marketdata.WithRetry(cfg.Provider.Retries),
	}
	if cfg.Provider.RateCapacity > 0 && cfg.Provider.RateRefill > 0 {
		opts = append(opts, marketdata.WithRateLimit(
			float64(cfg.Provider.RateCapacity), cfg.Provider.RateRefill))
	}
	return marketdata.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout, opts...)
}

// ProvideSeriesCache creates the temperature series cache.
func ProvideSeriesCache(
	provider repository.MarketDataProvider,
	log *applogger.Logger,
	m repository.Metrics,
	cfg *config.Config,
) *tempcache.SeriesCache {
	return tempcache.NewSeriesCache(provider,
		tempcache.WithMaxEntries(cfg.Temperature.MaxEntries),
		tempcache.WithFetchTimeout(cfg.Temperature.FetchTimeout),
		tempcache.WithLogger(log),
		tempcache.WithMetrics(m),
	)
}

// ProvideBenchmarkSnapshot creates the shared benchmark snapshot.
func ProvideBenchmarkSnapshot() *usecase.BenchmarkSnapshot {
	return usecase.NewBenchmarkSnapshot()
}

// ProvideBenchmarkStream creates the benchmark WebSocket stream.
func ProvideBenchmarkStream(cfg *config.Config) repository.BenchmarkStream {
	return domstream.New(
		cfg.Stream.WebSocketURL,
		cfg.Stream.Symbol,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
}

// ProvideBenchmarkCollector creates the stream-to-snapshot collector.
func ProvideBenchmarkCollector(
	stream repository.BenchmarkStream,
	snap *usecase.BenchmarkSnapshot,
	m repository.Metrics,
) *usecase.BenchmarkCollector {
	return usecase.NewBenchmarkCollector(stream, snap, m)
}

// ProvideBasketSelector creates the selection use case.
func ProvideBasketSelector(
	provider repository.MarketDataProvider,
	results cache.Service,
	m repository.Metrics,
	log *applogger.Logger,
	snap *usecase.BenchmarkSnapshot,
	cfg *config.Config,
) *usecase.BasketSelector {
	defaults := models.StrategyParams{
		PriceChangeWeight: cfg.Strategy.PriceChangeWeight,
		VolumeWeight:      cfg.Strategy.VolumeWeight,
		VolatilityWeight:  cfg.Strategy.VolatilityWeight,
		FundingRateWeight: cfg.Strategy.FundingRateWeight,
		MaxShortPositions: cfg.Strategy.MaxShortPositions,
		BenchmarkSymbol:   cfg.Strategy.BenchmarkSymbol,
	}
	return usecase.NewBasketSelector(provider, results, m, log, snap, defaults, cfg.Cache.ResultTTL)
}

// ProvideHTTPHandler creates the Echo route handler.
func ProvideHTTPHandler(
	log *applogger.Logger,
	selector *usecase.BasketSelector,
	temps *tempcache.SeriesCache,
) xhttp.Handler {
	return api.NewBasketEchoHandler(log, selector, temps)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.BenchmarkCollector,
	producer *pkgkafka.Producer,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, collector, producer, handler)
}
