package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ShortBasket/internal/domain/models"
	"ShortBasket/internal/service/tempcache"
	"ShortBasket/internal/usecase"
	applogger "ShortBasket/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubProvider struct {
	rows    []models.RankingRow
	rowsErr error
	points  []models.TemperatureDataPoint
}

func (p *stubProvider) FetchRankingBatch(context.Context, int) ([]models.RankingRow, error) {
	return p.rows, p.rowsErr
}

func (p *stubProvider) FetchTemperatureSeries(context.Context, string, string, time.Time, time.Time) ([]models.TemperatureDataPoint, error) {
	return p.points, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordSelection(int, int, int)         {}
func (stubMetrics) RecordUpstreamFetch(string, string)    {}
func (stubMetrics) RecordCacheHit(string)                 {}
func (stubMetrics) RecordCacheMiss(string)                {}
func (stubMetrics) RecordError(string)                    {}
func (stubMetrics) RecordLatency(string, float64)         {}
func (stubMetrics) RecordBenchmarkChange(string, float64) {}

func newTestHandler(t *testing.T, p *stubProvider) *BasketEchoHandler {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	params := models.StrategyParams{
		PriceChangeWeight: 0.4,
		VolumeWeight:      0.2,
		VolatilityWeight:  0.25,
		FundingRateWeight: 0.15,
		BenchmarkSymbol:   "BTC",
	}
	selector := usecase.NewBasketSelector(p, nil, stubMetrics{}, l, nil, params, 0)
	temps := tempcache.NewSeriesCache(p)
	return NewBasketEchoHandler(l, selector, temps)
}

func serve(h *BasketEchoHandler, method, target string) *httptest.ResponseRecorder {
	return serveBody(h, method, target, "")
}

func serveBody(h *BasketEchoHandler, method, target, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v\n%s", err, rec.Body.String())
	}
	return body
}

func TestSelectionEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubProvider{rows: []models.RankingRow{
		{Symbol: "AAA", Rank: 1, PriceChange24h: -4},
		{Symbol: "BBB", Rank: 2, PriceChange24h: 3},
	}})

	rec := serve(h, http.MethodGet, "/api/selection?referencePriceChange=0")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	if body["status"].(float64) != 200 {
		t.Fatalf("envelope status = %v", body["status"])
	}
	data := body["data"].(map[string]interface{})
	if data["eligibleCount"].(float64) != 1 {
		t.Fatalf("eligibleCount = %v", data["eligibleCount"])
	}
}

func TestSelectionRejectsPartialWeights(t *testing.T) {
	h := newTestHandler(t, &stubProvider{})

	rec := serve(h, http.MethodGet, "/api/selection?referencePriceChange=0&priceChangeWeight=0.5")
	body := decodeEnvelope(t, rec)
	if body["status"].(float64) != 400 {
		t.Fatalf("partial weights must 400, got %v", body["status"])
	}
}

func TestSelectionWithoutReference(t *testing.T) {
	h := newTestHandler(t, &stubProvider{})

	rec := serve(h, http.MethodGet, "/api/selection")
	body := decodeEnvelope(t, rec)
	if body["status"].(float64) != 400 {
		t.Fatalf("no reference must 400, got %v", body["status"])
	}
	if !strings.Contains(rec.Body.String(), "ERR_NO_REFERENCE") {
		t.Fatalf("expected ERR_NO_REFERENCE, body %s", rec.Body.String())
	}
}

func TestTemperatureEndpoint(t *testing.T) {
	h := newTestHandler(t, &stubProvider{points: []models.TemperatureDataPoint{
		{Timestamp: "2024-03-01T00:00:00Z", Value: 41.5},
		{Timestamp: "2024-03-02T00:00:00Z", Value: 44.0},
	}})

	rec := serve(h, http.MethodGet, "/api/temperature?symbol=BTC&tf=1D&start=2024-03-01&end=2024-03-02")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	if data["totalDataPoints"].(float64) != 2 {
		t.Fatalf("totalDataPoints = %v", data["totalDataPoints"])
	}
}

func TestTemperatureRequiresSymbol(t *testing.T) {
	h := newTestHandler(t, &stubProvider{})

	rec := serve(h, http.MethodGet, "/api/temperature?start=2024-03-01&end=2024-03-02")
	body := decodeEnvelope(t, rec)
	if body["status"].(float64) != 400 {
		t.Fatalf("missing symbol must 400, got %v", body["status"])
	}
}

func TestTemperatureRejectsBadDates(t *testing.T) {
	h := newTestHandler(t, &stubProvider{})

	rec := serve(h, http.MethodGet, "/api/temperature?symbol=BTC&start=notadate&end=2024-03-02")
	body := decodeEnvelope(t, rec)
	if body["status"].(float64) != 400 {
		t.Fatalf("bad start date must 400, got %v", body["status"])
	}
}

func TestCacheAdminEndpoints(t *testing.T) {
	h := newTestHandler(t, &stubProvider{points: []models.TemperatureDataPoint{
		{Timestamp: "2024-03-01T00:00:00Z", Value: 41.5},
	}})

	rec := serveBody(h, http.MethodPost, "/api/cache/warm",
		`{"symbol":"BTC","tf":"1D","start":"2024-03-01","end":"2024-03-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("warm status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = serve(h, http.MethodGet, "/api/cache/status")
	body := decodeEnvelope(t, rec)
	data := body["data"].(map[string]interface{})
	if data["entries"].(float64) != 1 {
		t.Fatalf("entries = %v", data["entries"])
	}

	rec = serveBody(h, http.MethodPost, "/api/cache/clear", `{"all":true}`)
	body = decodeEnvelope(t, rec)
	data = body["data"].(map[string]interface{})
	if data["cleared"].(float64) != 1 {
		t.Fatalf("cleared = %v", data["cleared"])
	}

	rec = serveBody(h, http.MethodPost, "/api/cache/clear", `{}`)
	body = decodeEnvelope(t, rec)
	if body["status"].(float64) != 400 {
		t.Fatalf("clear without symbol must 400, got %v", body["status"])
	}
}

func TestCacheClearSingleKey(t *testing.T) {
	h := newTestHandler(t, &stubProvider{points: []models.TemperatureDataPoint{
		{Timestamp: "2024-03-01T00:00:00Z", Value: 41.5},
	}})

	rec := serveBody(h, http.MethodPost, "/api/cache/warm",
		`{"symbol":"BTC","tf":"1D","start":"2024-03-01","end":"2024-03-01"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("warm status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = serveBody(h, http.MethodPost, "/api/cache/clear", `{"symbol":"BTC","tf":"1D"}`)
	body := decodeEnvelope(t, rec)
	if body["status"].(float64) != 200 {
		t.Fatalf("clear existing key must 200, got %v", body["status"])
	}

	rec = serveBody(h, http.MethodPost, "/api/cache/clear", `{"symbol":"BTC","tf":"1D"}`)
	body = decodeEnvelope(t, rec)
	if body["status"].(float64) != 404 {
		t.Fatalf("clear absent key must 404, got %v", body["status"])
	}
	if !strings.Contains(rec.Body.String(), "ERR_NOT_FOUND") {
		t.Fatalf("expected ERR_NOT_FOUND, body %s", rec.Body.String())
	}
}

func TestSelectionUnknownErrorMapsToInternal(t *testing.T) {
	h := newTestHandler(t, &stubProvider{rowsErr: errors.New("boom")})

	rec := serve(h, http.MethodGet, "/api/selection?referencePriceChange=0")
	body := decodeEnvelope(t, rec)
	if body["status"].(float64) != 500 {
		t.Fatalf("unknown error must 500, got %v", body["status"])
	}
	if !strings.Contains(rec.Body.String(), "ERR_INTERNAL") {
		t.Fatalf("expected ERR_INTERNAL, body %s", rec.Body.String())
	}
}
