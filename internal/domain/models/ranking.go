package models

import "time"

// FundingRatePoint is one observation of a perpetual funding rate,
// most-recent-last in RankingRow.FundingRateHistory.
type FundingRatePoint struct {
	Time time.Time `json:"time"`
	Rate float64   `json:"rate"` // raw rate, e.g. 0.0001 == 0.01%
}

// RankingRow is one market snapshot for one trading symbol at one timestamp,
// as served by the upstream ranking endpoint. Rank is 1-based and excludes
// the benchmark asset.
type RankingRow struct {
	Symbol             string             `json:"symbol"`
	Rank               int                `json:"rank"`
	PriceChange24h     float64            `json:"priceChange24h"` // signed percent
	Volume24h          float64            `json:"volume24h"`
	QuoteVolume24h     float64            `json:"quoteVolume24h"`
	Volatility24h      float64            `json:"volatility24h"` // percent; NaN when unavailable
	MarketShare        float64            `json:"marketShare"`
	PriceAtTime        float64            `json:"priceAtTime"`
	FuturePriceAtTime  *float64           `json:"futurePriceAtTime,omitempty"`
	FutureSymbol       string             `json:"futureSymbol,omitempty"`
	FundingRateHistory []FundingRatePoint `json:"fundingRateHistory,omitempty"`
}

// LatestFundingRate returns the most recent funding rate observation, if any.
func (r *RankingRow) LatestFundingRate() (FundingRatePoint, bool) {
	if len(r.FundingRateHistory) == 0 {
		return FundingRatePoint{}, false
	}
	return r.FundingRateHistory[len(r.FundingRateHistory)-1], true
}

// BatchStats are ephemeral aggregates over one scoring batch, computed fresh
// per call and discarded after.
type BatchStats struct {
	VolatilityMin      float64
	VolatilityMax      float64
	VolatilityAvg      float64
	VolatilitySpread   float64 // max((max-min)/4, 0.01)
	PriceChangeMin     float64
	PriceChangeMax     float64
	HasDeclines        bool
	MaxAbsoluteDecline float64
}

// StrategyParams controls one selection run. Weights are taken as given and
// are expected to sum to 1; the engine does not re-normalize (validated at
// the HTTP boundary).
type StrategyParams struct {
	PriceChangeWeight float64 `json:"priceChangeWeight"`
	VolumeWeight      float64 `json:"volumeWeight"`
	VolatilityWeight  float64 `json:"volatilityWeight"`
	FundingRateWeight float64 `json:"fundingRateWeight"`
	MaxShortPositions int     `json:"maxShortPositions"`
	BenchmarkSymbol   string  `json:"benchmarkSymbol"`
}

// ShortCandidate is a scored wrapper around a RankingRow. Sub-scores are in
// [0,1] for eligible rows and zero-valued for ineligible ones.
type ShortCandidate struct {
	RankingRow

	PriceChangeScore float64 `json:"priceChangeScore"`
	VolumeScore      float64 `json:"volumeScore"`
	VolatilityScore  float64 `json:"volatilityScore"`
	FundingRateScore float64 `json:"fundingRateScore"`
	TotalScore       float64 `json:"totalScore"`
	Eligible         bool    `json:"eligible"`
	Reason           string  `json:"reason"`
}

// SelectionResult is the output of one scoring call.
type SelectionResult struct {
	SelectedCandidates []ShortCandidate `json:"selectedCandidates"`
	RejectedCandidates []ShortCandidate `json:"rejectedCandidates"`
	TotalCandidates    int              `json:"totalCandidates"`
	EligibleCount      int              `json:"eligibleCount"`
	SelectionReason    string           `json:"selectionReason"`
}

// BenchmarkTick is one live update of the benchmark asset from the
// market stream.
type BenchmarkTick struct {
	Symbol         string
	Price          float64
	PriceChange24h float64 // signed percent over trailing 24h
	Timestamp      int64   // unix seconds
}
