package models

// TemperatureDataPoint is one observation of the market temperature series.
// Timestamp is an ISO-8601 string and is both the ordering and uniqueness key.
type TemperatureDataPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// CachedTemperatureSeries is one cache entry keyed by symbol + "_" + timeframe.
// Data is strictly non-decreasing by timestamp with unique timestamps; it is
// mutated only through the cache's merge operation.
type CachedTemperatureSeries struct {
	Symbol      string                 `json:"symbol"`
	Timeframe   string                 `json:"timeframe"`
	Data        []TemperatureDataPoint `json:"data"`
	LastUpdated string                 `json:"lastUpdated"`
}

// DateRange echoes the requested window back to the caller.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TemperatureResult is the answer to one temperature query: the series
// filtered to the requested window plus metadata. Stale is set when an
// incremental refresh failed and cached data was served instead.
type TemperatureResult struct {
	Symbol          string                 `json:"symbol"`
	Timeframe       string                 `json:"timeframe"`
	Data            []TemperatureDataPoint `json:"data"`
	TotalDataPoints int                    `json:"totalDataPoints"`
	DateRange       DateRange              `json:"dateRange"`
	LastUpdated     string                 `json:"lastUpdated"`
	Stale           bool                   `json:"stale,omitempty"`
}

// TemperatureEntryStatus describes one cache entry for introspection.
type TemperatureEntryStatus struct {
	Key         string `json:"key"`
	Symbol      string `json:"symbol"`
	Timeframe   string `json:"timeframe"`
	Points      int    `json:"points"`
	FirstPoint  string `json:"firstPoint,omitempty"`
	LastPoint   string `json:"lastPoint,omitempty"`
	LastUpdated string `json:"lastUpdated"`
}

// TemperatureCacheStatus is the cache-wide introspection report.
type TemperatureCacheStatus struct {
	Entries         int                      `json:"entries"`
	TotalPoints     int                      `json:"totalPoints"`
	ApproxSizeBytes int                      `json:"approxSizeBytes"`
	EntriesDetail   []TemperatureEntryStatus `json:"entriesDetail"`
}
