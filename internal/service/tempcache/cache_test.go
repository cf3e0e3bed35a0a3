package tempcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ShortBasket/internal/domain/models"
	drepo "ShortBasket/internal/domain/repository"
	"ShortBasket/pkg/util"
)

type fetchCall struct {
	symbol string
	start  time.Time
	end    time.Time
}

// fakeProvider serves one daily temperature point per day in [start, end].
type fakeProvider struct {
	calls []fetchCall
	fail  bool
	delay time.Duration
}

func (p *fakeProvider) FetchTemperatureSeries(_ context.Context, symbol, _ string, start, end time.Time) ([]models.TemperatureDataPoint, error) {
	p.calls = append(p.calls, fetchCall{symbol: symbol, start: start, end: end})
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.fail {
		return nil, errors.New("upstream down")
	}
	var out []models.TemperatureDataPoint
	for d := start; !d.After(end); d = d.Add(24 * time.Hour) {
		out = append(out, models.TemperatureDataPoint{Timestamp: util.FormatDate(d), Value: float64(d.Day())})
	}
	return out, nil
}

func (p *fakeProvider) FetchRankingBatch(context.Context, int) ([]models.RankingRow, error) {
	return nil, nil
}

func day(s string) time.Time {
	t, ok := util.ParseTime(s)
	if !ok {
		panic("bad test date " + s)
	}
	return t
}

func TestGetFullThenIncrementalFetch(t *testing.T) {
	p := &fakeProvider{}
	c := NewSeriesCache(p)
	ctx := context.Background()

	res, err := c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-10"))
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if res.TotalDataPoints != 10 {
		t.Fatalf("first get points = %d, want 10", res.TotalDataPoints)
	}

	res, err = c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-15"))
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if res.TotalDataPoints != 15 {
		t.Fatalf("second get points = %d, want 15", res.TotalDataPoints)
	}

	if len(p.calls) != 2 {
		t.Fatalf("provider calls = %d, want 2", len(p.calls))
	}
	inc := p.calls[1]
	if !inc.start.Equal(day("2024-01-11")) || !inc.end.Equal(day("2024-01-15")) {
		t.Fatalf("incremental window = [%s, %s], want [2024-01-11, 2024-01-15]",
			util.FormatDate(inc.start), util.FormatDate(inc.end))
	}
}

func TestGetIdempotentWhenCovered(t *testing.T) {
	p := &fakeProvider{}
	c := NewSeriesCache(p)
	ctx := context.Background()

	first, err := c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-05"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	second, err := c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-05"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(p.calls) != 1 {
		t.Fatalf("covered repeat must not refetch, calls = %d", len(p.calls))
	}
	if second.TotalDataPoints != first.TotalDataPoints {
		t.Fatalf("idempotence broken: %d vs %d", second.TotalDataPoints, first.TotalDataPoints)
	}
	for i := range first.Data {
		if first.Data[i] != second.Data[i] {
			t.Fatalf("series changed between identical calls at %d", i)
		}
	}
}

func TestGetSubRangeFiltersCachedData(t *testing.T) {
	p := &fakeProvider{}
	c := NewSeriesCache(p)
	ctx := context.Background()

	if _, err := c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-10")); err != nil {
		t.Fatalf("get: %v", err)
	}
	res, err := c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-03"), day("2024-01-05"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if res.TotalDataPoints != 3 {
		t.Fatalf("points = %d, want 3", res.TotalDataPoints)
	}
	if res.Data[0].Timestamp != "2024-01-03" || res.Data[2].Timestamp != "2024-01-05" {
		t.Fatalf("window wrong: %v", res.Data)
	}
	if len(p.calls) != 1 {
		t.Fatalf("sub-range must be served from cache, calls = %d", len(p.calls))
	}
}

func TestFirstFetchFailurePropagates(t *testing.T) {
	p := &fakeProvider{fail: true}
	c := NewSeriesCache(p)
	if _, err := c.Get(context.Background(), "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-10")); err == nil {
		t.Fatalf("expected hard failure on first fetch")
	}
	if st := c.Status(); st.Entries != 0 {
		t.Fatalf("failed first fetch must not create an entry")
	}
}

func TestIncrementalFailureServesStale(t *testing.T) {
	p := &fakeProvider{}
	c := NewSeriesCache(p)
	ctx := context.Background()

	if _, err := c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-10")); err != nil {
		t.Fatalf("seed get: %v", err)
	}

	p.fail = true
	res, err := c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-15"))
	if err != nil {
		t.Fatalf("degraded get must not fail: %v", err)
	}
	if !res.Stale {
		t.Fatalf("expected stale result")
	}
	if res.TotalDataPoints != 10 {
		t.Fatalf("stale points = %d, want the 10 cached", res.TotalDataPoints)
	}
}

func TestInvalidRangeRejected(t *testing.T) {
	c := NewSeriesCache(&fakeProvider{})
	if _, err := c.Get(context.Background(), "OTHERS", drepo.TF1d, day("2024-01-10"), day("2024-01-01")); err == nil {
		t.Fatalf("expected error for end before start")
	}
}

func TestClearAndStatus(t *testing.T) {
	p := &fakeProvider{}
	c := NewSeriesCache(p)
	ctx := context.Background()

	if _, err := c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-03")); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := c.Get(ctx, "TOTAL3", drepo.TF1d, day("2024-01-01"), day("2024-01-02")); err != nil {
		t.Fatalf("get: %v", err)
	}

	st := c.Status()
	if st.Entries != 2 || st.TotalPoints != 5 {
		t.Fatalf("status: %+v", st)
	}
	if st.ApproxSizeBytes <= 0 {
		t.Fatalf("expected non-zero footprint estimate")
	}

	if !c.Clear("OTHERS", "1D") {
		t.Fatalf("clear existing key must report true")
	}
	if c.Clear("OTHERS", "1D") {
		t.Fatalf("clear absent key must report false")
	}
	if n := c.ClearAll(); n != 1 {
		t.Fatalf("clear all removed %d, want 1", n)
	}
	if st := c.Status(); st.Entries != 0 {
		t.Fatalf("cache not empty after clear all")
	}
}

func TestLRUEvictionPastCap(t *testing.T) {
	p := &fakeProvider{}
	c := NewSeriesCache(p, WithMaxEntries(2))
	ctx := context.Background()

	for _, sym := range []string{"A", "B", "C"} {
		if _, err := c.Get(ctx, sym, drepo.TF1d, day("2024-01-01"), day("2024-01-02")); err != nil {
			t.Fatalf("get %s: %v", sym, err)
		}
	}
	st := c.Status()
	if st.Entries != 2 {
		t.Fatalf("entries = %d, want cap 2", st.Entries)
	}
	for _, e := range st.EntriesDetail {
		if e.Symbol == "A" {
			t.Fatalf("oldest entry must have been evicted")
		}
	}
}

func TestGetSingleFetchPerKeyUnderConcurrency(t *testing.T) {
	p := &fakeProvider{delay: 50 * time.Millisecond}
	c := NewSeriesCache(p)
	ctx := context.Background()

	const callers = 8
	results := make([]models.TemperatureResult, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(ctx, "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-05"))
		}(i)
	}
	wg.Wait()

	if len(p.calls) != 1 {
		t.Fatalf("cold key saw %d fetches, want 1", len(p.calls))
	}
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i].TotalDataPoints != 5 {
			t.Fatalf("caller %d points = %d, want 5", i, results[i].TotalDataPoints)
		}
	}
}

func TestKeyLockSurvivesEviction(t *testing.T) {
	p := &fakeProvider{}
	c := NewSeriesCache(p, WithMaxEntries(1))
	ctx := context.Background()

	lk := c.keyLock(CacheKey("A", "1D"))
	if _, err := c.Get(ctx, "A", drepo.TF1d, day("2024-01-01"), day("2024-01-02")); err != nil {
		t.Fatalf("get A: %v", err)
	}
	if _, err := c.Get(ctx, "B", drepo.TF1d, day("2024-01-01"), day("2024-01-02")); err != nil {
		t.Fatalf("get B: %v", err)
	}

	// B pushed A out; the lock for A must keep its identity so a waiter and
	// a new caller can never fetch the same key at once.
	if c.keyLock(CacheKey("A", "1D")) != lk {
		t.Fatalf("eviction replaced the key lock")
	}
}

func TestWarmPopulatesCache(t *testing.T) {
	p := &fakeProvider{}
	c := NewSeriesCache(p)
	if err := c.Warm(context.Background(), "OTHERS", drepo.TF1d, day("2024-01-01"), day("2024-01-05")); err != nil {
		t.Fatalf("warm: %v", err)
	}
	if st := c.Status(); st.Entries != 1 || st.TotalPoints != 5 {
		t.Fatalf("warm did not populate: %+v", st)
	}
}
