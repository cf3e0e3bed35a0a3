package tempcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ShortBasket/internal/domain/models"
	drepo "ShortBasket/internal/domain/repository"
	applogger "ShortBasket/pkg/logger"
	"ShortBasket/pkg/util"
)

// ErrInvalidRange flags a query whose end precedes its start.
var ErrInvalidRange = errors.New("tempcache: end before start")

// CacheKey builds the entry key for a (symbol, timeframe) pair.
func CacheKey(symbol, timeframe string) string {
	return symbol + "_" + timeframe
}

// Option configures SeriesCache.
type Option func(*SeriesCache)

// WithMaxEntries caps the number of cached series; least-recently-used
// entries are evicted past the cap.
func WithMaxEntries(n int) Option {
	return func(c *SeriesCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// WithFetchTimeout bounds each upstream fetch; expiry counts as a fetch
// failure.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *SeriesCache) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *applogger.Logger) Option {
	return func(c *SeriesCache) { c.log = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m drepo.Metrics) Option {
	return func(c *SeriesCache) { c.metrics = m }
}

// SeriesCache serves time-bounded, deduplicated temperature series per
// (symbol, timeframe) key, extending entries incrementally to minimize
// upstream fetches. It is created once at process start and passed by
// reference to whatever needs it.
type SeriesCache struct {
	provider     drepo.MarketDataProvider
	log          *applogger.Logger
	metrics      drepo.Metrics
	maxEntries   int
	fetchTimeout time.Duration

	mu      sync.Mutex
	entries map[string]*models.CachedTemperatureSeries
	access  map[string]time.Time
	locks   map[string]*sync.Mutex
}

// NewSeriesCache creates a temperature series cache backed by provider.
func NewSeriesCache(provider drepo.MarketDataProvider, opts ...Option) *SeriesCache {
	c := &SeriesCache{
		provider:     provider,
		maxEntries:   64,
		fetchTimeout: 15 * time.Second,
		entries:      make(map[string]*models.CachedTemperatureSeries),
		access:       make(map[string]time.Time),
		locks:        make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the series for [start, end] inclusive, serving from cache,
// extending it with an incremental fetch, or performing a full fetch for an
// unseen key. Incremental fetch failures degrade to the stale cached data;
// a first-time fetch failure propagates.
func (c *SeriesCache) Get(ctx context.Context, symbol string, timeframe drepo.Timeframe, start, end time.Time) (models.TemperatureResult, error) {
	if end.Before(start) {
		return models.TemperatureResult{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, util.FormatDate(start), util.FormatDate(end))
	}

	key := CacheKey(symbol, string(timeframe))

	// Serialize per key: at most one upstream fetch per key in flight.
	// Concurrent callers for the same key wait and reuse the merged entry.
	lk := c.keyLock(key)
	lk.Lock()
	defer lk.Unlock()

	entry := c.lookup(key)
	stale := false

	if entry == nil {
		fetched, err := c.fetch(ctx, symbol, timeframe, start, end)
		if err != nil {
			return models.TemperatureResult{}, fmt.Errorf("temperature full fetch %s: %w", key, err)
		}
		entry = &models.CachedTemperatureSeries{
			Symbol:      symbol,
			Timeframe:   string(timeframe),
			Data:        MergeSeries(nil, fetched),
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
		}
		c.store(key, entry)
	} else if last := c.lastTimestamp(entry, start); end.After(last) {
		next := c.incrementFrom(entry, start, timeframe.Step())
		fetched, err := c.fetch(ctx, symbol, timeframe, next, end)
		if err != nil {
			// Degrade to stale data; the failure never reaches the caller.
			stale = true
			if c.metrics != nil {
				c.metrics.RecordError("temperature_incremental_fetch")
			}
			if c.log != nil {
				c.log.Warn("temperature incremental fetch failed, serving stale data",
					applogger.String("key", key), applogger.Error(err))
			}
		} else {
			entry = &models.CachedTemperatureSeries{
				Symbol:      symbol,
				Timeframe:   string(timeframe),
				Data:        MergeSeries(entry.Data, fetched),
				LastUpdated: time.Now().UTC().Format(time.RFC3339),
			}
			c.store(key, entry)
		}
	} else {
		if c.metrics != nil {
			c.metrics.RecordCacheHit("temperature")
		}
	}

	filtered := FilterRange(entry.Data, start, end)
	return models.TemperatureResult{
		Symbol:          symbol,
		Timeframe:       string(timeframe),
		Data:            filtered,
		TotalDataPoints: len(filtered),
		DateRange:       models.DateRange{Start: util.FormatDate(start), End: util.FormatDate(end)},
		LastUpdated:     entry.LastUpdated,
		Stale:           stale,
	}, nil
}

// incrementFrom returns the first timestamp an incremental fetch should
// request: one timeframe step past the cached tail (or the requested start
// when the entry holds no points).
func (c *SeriesCache) incrementFrom(entry *models.CachedTemperatureSeries, start time.Time, step time.Duration) time.Time {
	if len(entry.Data) == 0 {
		return start
	}
	last, ok := util.ParseTime(entry.Data[len(entry.Data)-1].Timestamp)
	if !ok {
		return start
	}
	return last.Add(step)
}

func (c *SeriesCache) lastTimestamp(entry *models.CachedTemperatureSeries, fallback time.Time) time.Time {
	if len(entry.Data) == 0 {
		return fallback
	}
	if last, ok := util.ParseTime(entry.Data[len(entry.Data)-1].Timestamp); ok {
		return last
	}
	return fallback
}

func (c *SeriesCache) fetch(ctx context.Context, symbol string, timeframe drepo.Timeframe, start, end time.Time) ([]models.TemperatureDataPoint, error) {
	fctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	started := time.Now()
	points, err := c.provider.FetchTemperatureSeries(fctx, symbol, string(timeframe), start, end)
	if c.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.RecordUpstreamFetch("temperature", outcome)
		c.metrics.RecordLatency("temperature_fetch", time.Since(started).Seconds())
	}
	return points, err
}

func (c *SeriesCache) keyLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lk, ok := c.locks[key]
	if !ok {
		lk = &sync.Mutex{}
		c.locks[key] = lk
	}
	return lk
}

func (c *SeriesCache) lookup(key string) *models.CachedTemperatureSeries {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		if c.metrics != nil {
			c.metrics.RecordCacheMiss("temperature")
		}
		return nil
	}
	c.access[key] = time.Now()
	return entry
}

func (c *SeriesCache) store(key string, entry *models.CachedTemperatureSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry
	c.access[key] = time.Now()
	for len(c.entries) > c.maxEntries {
		c.evictLRU(key)
	}
}

// evictLRU removes the least recently used entry, never the one just
// written. Caller holds c.mu.
func (c *SeriesCache) evictLRU(keep string) {
	var oldestKey string
	var oldest time.Time
	for key, at := range c.access {
		if key == keep {
			continue
		}
		if _, ok := c.entries[key]; !ok {
			continue
		}
		if oldestKey == "" || at.Before(oldest) {
			oldestKey = key
			oldest = at
		}
	}
	if oldestKey == "" {
		return
	}
	delete(c.entries, oldestKey)
	delete(c.access, oldestKey)
	// The key's mutex stays in c.locks: a goroutine may still hold or be
	// queued on it, and dropping it would let two fetches for the same key
	// overlap after a refill.
}

// Clear drops the entry for one (symbol, timeframe) key. Returns true when
// an entry existed.
func (c *SeriesCache) Clear(symbol, timeframe string) bool {
	key := CacheKey(symbol, timeframe)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	delete(c.access, key)
	return ok
}

// ClearAll drops every entry and returns how many were removed.
func (c *SeriesCache) ClearAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]*models.CachedTemperatureSeries)
	c.access = make(map[string]time.Time)
	return n
}

// Warm populates the cache for a key purely for its side effect.
func (c *SeriesCache) Warm(ctx context.Context, symbol string, timeframe drepo.Timeframe, start, end time.Time) error {
	_, err := c.Get(ctx, symbol, timeframe, start, end)
	return err
}

// Status reports entry counts, per-entry point counts and date ranges, and
// an approximate serialized footprint.
func (c *SeriesCache) Status() models.TemperatureCacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := models.TemperatureCacheStatus{
		EntriesDetail: make([]models.TemperatureEntryStatus, 0, len(c.entries)),
	}
	for key, entry := range c.entries {
		detail := models.TemperatureEntryStatus{
			Key:         key,
			Symbol:      entry.Symbol,
			Timeframe:   entry.Timeframe,
			Points:      len(entry.Data),
			LastUpdated: entry.LastUpdated,
		}
		if len(entry.Data) > 0 {
			detail.FirstPoint = entry.Data[0].Timestamp
			detail.LastPoint = entry.Data[len(entry.Data)-1].Timestamp
		}
		status.EntriesDetail = append(status.EntriesDetail, detail)
		status.TotalPoints += len(entry.Data)
		if b, err := json.Marshal(entry); err == nil {
			status.ApproxSizeBytes += len(b)
		}
	}
	status.Entries = len(c.entries)
	return status
}
