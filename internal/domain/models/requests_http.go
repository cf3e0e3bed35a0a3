package models

import "math"

// Requests for the basket HTTP endpoints. Defined in domain for consistency and reuse.

type SelectionRequest struct {
	Limit        int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
	MaxPositions int    `query:"maxPositions" json:"maxPositions" default:"10" validate:"gte=0,lte=100"`
	Benchmark    string `query:"benchmark" json:"benchmark"`

	// Weights are optional as a group: either all four are supplied and sum
	// to ~1, or none are and the configured defaults apply.
	PriceChangeWeight *float64 `query:"priceChangeWeight" json:"priceChangeWeight" validate:"omitempty,gte=0,lte=1"`
	VolumeWeight      *float64 `query:"volumeWeight" json:"volumeWeight" validate:"omitempty,gte=0,lte=1"`
	VolatilityWeight  *float64 `query:"volatilityWeight" json:"volatilityWeight" validate:"omitempty,gte=0,lte=1"`
	FundingRateWeight *float64 `query:"fundingRateWeight" json:"fundingRateWeight" validate:"omitempty,gte=0,lte=1"`

	// ReferencePriceChange overrides the live benchmark 24h change when set.
	ReferencePriceChange *float64 `query:"referencePriceChange" json:"referencePriceChange"`
}

// HasWeights reports whether the request carries a full custom weight set.
func (r *SelectionRequest) HasWeights() bool {
	return r.PriceChangeWeight != nil || r.VolumeWeight != nil ||
		r.VolatilityWeight != nil || r.FundingRateWeight != nil
}

// WeightsValid checks the all-or-nothing rule and that the four weights sum
// to 1 within a small tolerance.
func (r *SelectionRequest) WeightsValid() bool {
	if !r.HasWeights() {
		return true
	}
	if r.PriceChangeWeight == nil || r.VolumeWeight == nil ||
		r.VolatilityWeight == nil || r.FundingRateWeight == nil {
		return false
	}
	sum := *r.PriceChangeWeight + *r.VolumeWeight + *r.VolatilityWeight + *r.FundingRateWeight
	return math.Abs(sum-1) < 1e-6
}

// Params merges the request over the configured defaults.
func (r *SelectionRequest) Params(defaults StrategyParams) StrategyParams {
	p := defaults
	p.MaxShortPositions = r.MaxPositions
	if r.Benchmark != "" {
		p.BenchmarkSymbol = r.Benchmark
	}
	if r.HasWeights() && r.WeightsValid() {
		p.PriceChangeWeight = *r.PriceChangeWeight
		p.VolumeWeight = *r.VolumeWeight
		p.VolatilityWeight = *r.VolatilityWeight
		p.FundingRateWeight = *r.FundingRateWeight
	}
	return p
}

type TemperatureRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1D" validate:"oneof=1H 4H 1D 1W"`
	Start  string `query:"start" json:"start" validate:"required"`
	End    string `query:"end" json:"end" validate:"required"`
}

type CacheClearRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
	TF     string `query:"tf" json:"tf"`
	All    bool   `query:"all" json:"all"`
}

type CacheWarmRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	TF     string `query:"tf" json:"tf" default:"1D" validate:"oneof=1H 4H 1D 1W"`
	Start  string `query:"start" json:"start" validate:"required"`
	End    string `query:"end" json:"end" validate:"required"`
}
