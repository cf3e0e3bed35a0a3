package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ShortBasket/internal/domain/models"
	drepo "ShortBasket/internal/domain/repository"
	"ShortBasket/internal/services/selection"
	"ShortBasket/pkg/cache"
	applogger "ShortBasket/pkg/logger"
)

// ErrNoReference is returned when neither the request nor the live stream
// supplies a benchmark 24h change to gate eligibility against.
var ErrNoReference = errors.New("usecase: reference price change unavailable")

// BasketSelector orchestrates one selection run: fetch a ranking snapshot,
// score it, and cache the result briefly so bursts of identical dashboard
// requests do not hammer the upstream.
type BasketSelector struct {
	provider   drepo.MarketDataProvider
	results    cache.Service
	metrics    drepo.Metrics
	log        *applogger.Logger
	snap       *BenchmarkSnapshot
	defaults   models.StrategyParams
	resultTTL  time.Duration
	maxSnapAge time.Duration
}

// NewBasketSelector creates a selector. results may be nil to disable
// result caching.
func NewBasketSelector(
	provider drepo.MarketDataProvider,
	results cache.Service,
	metrics drepo.Metrics,
	log *applogger.Logger,
	snap *BenchmarkSnapshot,
	defaults models.StrategyParams,
	resultTTL time.Duration,
) *BasketSelector {
	return &BasketSelector{
		provider:   provider,
		results:    results,
		metrics:    metrics,
		log:        log,
		snap:       snap,
		defaults:   defaults,
		resultTTL:  resultTTL,
		maxSnapAge: 5 * time.Minute,
	}
}

// Select runs one scoring pass for the request.
func (s *BasketSelector) Select(ctx context.Context, req *models.SelectionRequest) (models.SelectionResult, error) {
	params := req.Params(s.defaults)

	ref, err := s.reference(req)
	if err != nil {
		return models.SelectionResult{}, err
	}

	key := s.resultKey(req, params, ref)
	if cached, ok := s.cachedResult(ctx, key); ok {
		s.metrics.RecordCacheHit("selection")
		return cached, nil
	}
	s.metrics.RecordCacheMiss("selection")

	started := time.Now()
	rows, err := s.provider.FetchRankingBatch(ctx, req.Limit)
	if err != nil {
		s.metrics.RecordUpstreamFetch("rankings", "error")
		return models.SelectionResult{}, fmt.Errorf("fetch ranking batch: %w", err)
	}
	s.metrics.RecordUpstreamFetch("rankings", "ok")

	result := selection.SelectShortCandidates(rows, ref, params)
	s.metrics.RecordSelection(len(result.SelectedCandidates), result.EligibleCount, result.TotalCandidates)
	s.metrics.RecordLatency("selection", time.Since(started).Seconds())

	if s.log != nil {
		s.log.Debug("selection run",
			applogger.Int("total", result.TotalCandidates),
			applogger.Int("eligible", result.EligibleCount),
			applogger.Int("selected", len(result.SelectedCandidates)),
			applogger.Float64("reference", ref),
		)
	}

	s.storeResult(ctx, key, result)
	return result, nil
}

// reference resolves the eligibility baseline: an explicit request value
// wins; otherwise the live benchmark snapshot serves, as long as it is
// fresh enough.
func (s *BasketSelector) reference(req *models.SelectionRequest) (float64, error) {
	if req.ReferencePriceChange != nil {
		return *req.ReferencePriceChange, nil
	}
	if s.snap != nil {
		if tick, ok := s.snap.Latest(); ok && s.snap.Age() <= s.maxSnapAge {
			return tick.PriceChange24h, nil
		}
	}
	return 0, ErrNoReference
}

func (s *BasketSelector) resultKey(req *models.SelectionRequest, p models.StrategyParams, ref float64) string {
	return cache.GenerateKeyWithParams("selection",
		req.Limit, p.MaxShortPositions, p.BenchmarkSymbol, ref,
		p.PriceChangeWeight, p.VolumeWeight, p.VolatilityWeight, p.FundingRateWeight)
}

func (s *BasketSelector) cachedResult(ctx context.Context, key string) (models.SelectionResult, bool) {
	if s.results == nil {
		return models.SelectionResult{}, false
	}
	result, err := cache.GetTyped[models.SelectionResult](ctx, s.results, key)
	if err != nil {
		return models.SelectionResult{}, false
	}
	return result, true
}

func (s *BasketSelector) storeResult(ctx context.Context, key string, result models.SelectionResult) {
	if s.results == nil || s.resultTTL <= 0 {
		return
	}
	if err := cache.SetTyped(ctx, s.results, key, result, s.resultTTL); err != nil && s.log != nil {
		s.log.Warn("selection result cache write failed", applogger.Error(err))
	}
}
