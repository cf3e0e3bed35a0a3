package selection

import (
	"fmt"
	"math"
	"sort"

	"ShortBasket/internal/domain/models"
)

// Neutral funding score used when a row carries no usable funding history.
const neutralFundingScore = 0.5

// SelectShortCandidates scores one batch of ranking rows against
// referencePriceChange (the benchmark asset's 24h change) and returns the
// capped top-N short selection. It never errors; non-finite numeric fields
// fall back to neutral defaults.
func SelectShortCandidates(rows []models.RankingRow, referencePriceChange float64, params models.StrategyParams) models.SelectionResult {
	pool := excludeBenchmark(rows, params.BenchmarkSymbol)
	stats := ComputeBatchStats(pool)
	total := len(pool)

	eligible := make([]models.ShortCandidate, 0, total)
	rejected := make([]models.ShortCandidate, 0)

	for _, row := range pool {
		c := models.ShortCandidate{RankingRow: row}

		// Eligibility gate: the row must be declining more than the reference.
		if !(row.PriceChange24h < referencePriceChange) {
			c.Reason = fmt.Sprintf("not declining vs reference: 24h change %.2f%% >= %.2f%%",
				row.PriceChange24h, referencePriceChange)
			rejected = append(rejected, c)
			continue
		}

		c.Eligible = true
		c.PriceChangeScore = priceChangeScore(row, stats)
		c.VolumeScore = volumeScore(row.Rank, total)
		c.VolatilityScore = volatilityScore(row.Volatility24h, stats)
		c.FundingRateScore = fundingRateScore(row)

		score := c.PriceChangeScore*params.PriceChangeWeight +
			c.VolumeScore*params.VolumeWeight +
			c.VolatilityScore*params.VolatilityWeight +
			c.FundingRateScore*params.FundingRateWeight
		if math.IsNaN(score) {
			score = 0
		}
		c.TotalScore = score
		c.Reason = fmt.Sprintf("eligible: 24h change %.2f%% < reference %.2f%%, score %.4f",
			row.PriceChange24h, referencePriceChange, score)

		eligible = append(eligible, c)
	}

	// Descending by total score; ties broken by ascending original rank so
	// the order is deterministic rather than an accident of sort stability.
	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].TotalScore != eligible[j].TotalScore {
			return eligible[i].TotalScore > eligible[j].TotalScore
		}
		return eligible[i].Rank < eligible[j].Rank
	})

	n := params.MaxShortPositions
	if n < 0 {
		n = 0
	}
	if n > len(eligible) {
		n = len(eligible)
	}

	reason := "no eligible short candidates"
	if n > 0 {
		reason = fmt.Sprintf("selected %d short candidates", n)
	}

	return models.SelectionResult{
		SelectedCandidates: eligible[:n:n],
		RejectedCandidates: rejected,
		TotalCandidates:    total,
		EligibleCount:      len(eligible),
		SelectionReason:    reason,
	}
}

func excludeBenchmark(rows []models.RankingRow, benchmark string) []models.RankingRow {
	if benchmark == "" {
		return rows
	}
	out := make([]models.RankingRow, 0, len(rows))
	for _, r := range rows {
		if r.Symbol == benchmark {
			continue
		}
		out = append(out, r)
	}
	return out
}

// priceChangeScore rewards the deepest decliners. When the batch has
// declines the score is the row's share of the largest absolute decline;
// otherwise it falls back to a linear inverse over the price-change range.
func priceChangeScore(row models.RankingRow, stats models.BatchStats) float64 {
	if stats.HasDeclines {
		if stats.MaxAbsoluteDecline <= 0 {
			return 0
		}
		decline := math.Min(row.PriceChange24h, 0)
		return clamp01(-decline / stats.MaxAbsoluteDecline)
	}
	span := stats.PriceChangeMax - stats.PriceChangeMin
	if span <= 0 {
		return 1
	}
	return clamp01(1 - (row.PriceChange24h-stats.PriceChangeMin)/span)
}

// volumeScore is purely rank based: rank 1 (the biggest mover by the
// upstream ranking) scores highest. Raw volume magnitude is ignored.
func volumeScore(rank, total int) float64 {
	if total <= 0 {
		return 0
	}
	return clamp01(float64(total-rank+1) / float64(total))
}

// volatilityScore is a Gaussian-kernel similarity to the batch average
// volatility. A non-finite volatility is substituted with the batch
// average and therefore scores 1.
func volatilityScore(vol float64, stats models.BatchStats) float64 {
	if !isFinite(vol) {
		vol = stats.VolatilityAvg
	}
	d := vol - stats.VolatilityAvg
	return math.Exp(-(d * d) / (2 * stats.VolatilitySpread * stats.VolatilitySpread))
}

// fundingRateScore maps the latest funding rate in [-2%, +2%] linearly onto
// [0,1], clamped outside that band. Rows without usable funding data get a
// neutral 0.5.
func fundingRateScore(row models.RankingRow) float64 {
	fp, ok := row.LatestFundingRate()
	if !ok || !isFinite(fp.Rate) {
		return neutralFundingScore
	}
	pct := fp.Rate * 100
	return clamp01((pct + 2) / 4)
}
