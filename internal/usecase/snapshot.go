package usecase

import (
	"sync"
	"time"

	"ShortBasket/internal/domain/models"
)

// BenchmarkSnapshot holds the latest benchmark tick for readers that need
// the current reference price change. Writers come from the stream
// collector; readers from selection requests.
type BenchmarkSnapshot struct {
	mu      sync.RWMutex
	tick    models.BenchmarkTick
	updated time.Time
	ok      bool
}

func NewBenchmarkSnapshot() *BenchmarkSnapshot {
	return &BenchmarkSnapshot{}
}

// Update records a new tick.
func (s *BenchmarkSnapshot) Update(t *models.BenchmarkTick) {
	if t == nil {
		return
	}
	s.mu.Lock()
	s.tick = *t
	s.updated = time.Now()
	s.ok = true
	s.mu.Unlock()
}

// Latest returns the most recent tick and whether one has been seen at all.
func (s *BenchmarkSnapshot) Latest() (models.BenchmarkTick, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tick, s.ok
}

// Age returns how old the snapshot is; callers decide their own freshness
// policy.
func (s *BenchmarkSnapshot) Age() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ok {
		return 0
	}
	return time.Since(s.updated)
}
