package selection

import (
	"math"
	"testing"

	"ShortBasket/internal/domain/models"
)

func TestComputeBatchStats(t *testing.T) {
	rows := []models.RankingRow{
		row("A", 1, -10, 2),
		row("B", 2, -5, 6),
		row("C", 3, 3, 10),
	}
	s := ComputeBatchStats(rows)

	if s.VolatilityMin != 2 || s.VolatilityMax != 10 || s.VolatilityAvg != 6 {
		t.Fatalf("volatility stats: %+v", s)
	}
	if s.VolatilitySpread != 2 { // (10-2)/4
		t.Fatalf("spread = %v, want 2", s.VolatilitySpread)
	}
	if s.PriceChangeMin != -10 || s.PriceChangeMax != 3 {
		t.Fatalf("price change range: %+v", s)
	}
	if !s.HasDeclines || s.MaxAbsoluteDecline != 10 {
		t.Fatalf("decline stats: %+v", s)
	}
}

func TestBatchStatsSpreadFloor(t *testing.T) {
	rows := []models.RankingRow{
		row("A", 1, -1, 5),
		row("B", 2, -2, 5),
	}
	s := ComputeBatchStats(rows)
	if s.VolatilitySpread != minVolatilitySpread {
		t.Fatalf("equal volatilities must floor spread at %v, got %v", minVolatilitySpread, s.VolatilitySpread)
	}
}

func TestBatchStatsSkipsNonFinite(t *testing.T) {
	rows := []models.RankingRow{
		row("A", 1, -1, math.NaN()),
		row("B", 2, math.Inf(1), 4),
	}
	s := ComputeBatchStats(rows)
	if s.VolatilityAvg != 4 {
		t.Fatalf("NaN volatility must be skipped in stats, avg = %v", s.VolatilityAvg)
	}
	if s.PriceChangeMax != -1 || s.PriceChangeMin != -1 {
		t.Fatalf("non-finite price change must be skipped: %+v", s)
	}
}

func TestBatchStatsEmpty(t *testing.T) {
	s := ComputeBatchStats(nil)
	if s.HasDeclines || s.MaxAbsoluteDecline != 0 {
		t.Fatalf("empty batch stats: %+v", s)
	}
	if s.VolatilitySpread != minVolatilitySpread {
		t.Fatalf("empty batch spread = %v", s.VolatilitySpread)
	}
}
