package selection

import (
	"math"

	"ShortBasket/internal/domain/models"
)

// minVolatilitySpread keeps the Gaussian kernel from collapsing when every
// row in the batch reports the same volatility.
const minVolatilitySpread = 0.01

// ComputeBatchStats aggregates one batch of ranking rows. Non-finite
// volatility and price-change values are skipped; they are defused per row
// at scoring time instead.
func ComputeBatchStats(rows []models.RankingRow) models.BatchStats {
	var s models.BatchStats

	volMin, volMax := math.Inf(1), math.Inf(-1)
	volSum, volN := 0.0, 0
	pcMin, pcMax := math.Inf(1), math.Inf(-1)

	for _, r := range rows {
		if isFinite(r.Volatility24h) {
			volMin = math.Min(volMin, r.Volatility24h)
			volMax = math.Max(volMax, r.Volatility24h)
			volSum += r.Volatility24h
			volN++
		}
		if isFinite(r.PriceChange24h) {
			pcMin = math.Min(pcMin, r.PriceChange24h)
			pcMax = math.Max(pcMax, r.PriceChange24h)
			if r.PriceChange24h < 0 {
				s.HasDeclines = true
				if d := -r.PriceChange24h; d > s.MaxAbsoluteDecline {
					s.MaxAbsoluteDecline = d
				}
			}
		}
	}

	if volN > 0 {
		s.VolatilityMin = volMin
		s.VolatilityMax = volMax
		s.VolatilityAvg = volSum / float64(volN)
	}
	s.VolatilitySpread = math.Max((s.VolatilityMax-s.VolatilityMin)/4, minVolatilitySpread)

	if !math.IsInf(pcMin, 1) {
		s.PriceChangeMin = pcMin
		s.PriceChangeMax = pcMax
	}

	return s
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
