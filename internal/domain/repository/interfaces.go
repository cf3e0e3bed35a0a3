package repository

import (
	"context"
	"time"

	"ShortBasket/internal/domain/models"
)

// MarketDataProvider is the upstream backend this service consumes. It is
// the only external collaborator of the core.
type MarketDataProvider interface {
	// FetchTemperatureSeries returns temperature points for the inclusive
	// [start, end] window. Fails with ErrUpstreamUnavailable when the
	// provider cannot be reached or answers non-2xx, and with
	// ErrUpstreamDataError when it answers success with an unusable payload.
	FetchTemperatureSeries(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.TemperatureDataPoint, error)

	// FetchRankingBatch returns up to limit ranking rows for one snapshot.
	FetchRankingBatch(ctx context.Context, limit int) ([]models.RankingRow, error)
}

// BenchmarkStream delivers live benchmark asset ticks over a websocket.
type BenchmarkStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.BenchmarkTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics abstracts the metrics backend.
type Metrics interface {
	RecordSelection(selected, eligible, total int)
	RecordUpstreamFetch(kind, outcome string)
	RecordCacheHit(cache string)
	RecordCacheMiss(cache string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordBenchmarkChange(symbol string, pct float64)
}
