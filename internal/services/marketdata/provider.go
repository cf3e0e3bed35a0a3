package marketdata

import (
	"context"
	"strconv"
	"time"

	"ShortBasket/internal/domain/models"
	drepo "ShortBasket/internal/domain/repository"
	"ShortBasket/pkg/util"
)

// FetchTemperatureSeries returns temperature points for the inclusive
// [start, end] window.
func (c *Client) FetchTemperatureSeries(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]models.TemperatureDataPoint, error) {
	var points []models.TemperatureDataPoint
	err := c.getJSONWithRetry(ctx, "temperature", "/api/temperature/history", map[string][]string{
		"symbol":    {symbol},
		"timeframe": {timeframe},
		"start":     {util.FormatDate(start)},
		"end":       {util.FormatDate(end)},
	}, &points)
	if err != nil {
		return nil, err
	}
	return points, nil
}

// FetchRankingBatch returns up to limit ranking rows for one snapshot.
// The benchmark asset is not part of the ranking; the engine still guards
// against it.
func (c *Client) FetchRankingBatch(ctx context.Context, limit int) ([]models.RankingRow, error) {
	var rows []models.RankingRow
	err := c.getJSONWithRetry(ctx, "rankings", "/api/rankings", map[string][]string{
		"limit": {strconv.Itoa(limit)},
	}, &rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

var _ drepo.MarketDataProvider = (*Client)(nil)
