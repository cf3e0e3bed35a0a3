package tempcache

import (
	"sort"
	"time"

	"ShortBasket/internal/domain/models"
	"ShortBasket/pkg/util"
)

// MergeSeries combines existing and incoming points keyed by exact timestamp
// string. Incoming points win on collisions. The result is sorted ascending
// by parsed timestamp and has no duplicate timestamps, regardless of input
// order or duplication in either argument.
func MergeSeries(existing, incoming []models.TemperatureDataPoint) []models.TemperatureDataPoint {
	byTS := make(map[string]models.TemperatureDataPoint, len(existing)+len(incoming))
	for _, p := range existing {
		byTS[p.Timestamp] = p
	}
	for _, p := range incoming {
		byTS[p.Timestamp] = p
	}

	out := make([]models.TemperatureDataPoint, 0, len(byTS))
	for _, p := range byTS {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		ti, iok := util.ParseTime(out[i].Timestamp)
		tj, jok := util.ParseTime(out[j].Timestamp)
		if iok && jok && !ti.Equal(tj) {
			return ti.Before(tj)
		}
		// Unparseable timestamps sort by the raw string so order stays
		// deterministic.
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// FilterRange returns the subsequence of points with start <= timestamp <= end,
// preserving order. Points with unparseable timestamps are dropped.
func FilterRange(data []models.TemperatureDataPoint, start, end time.Time) []models.TemperatureDataPoint {
	out := make([]models.TemperatureDataPoint, 0, len(data))
	for _, p := range data {
		t, ok := util.ParseTime(p.Timestamp)
		if !ok {
			continue
		}
		if t.Before(start) || t.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}
