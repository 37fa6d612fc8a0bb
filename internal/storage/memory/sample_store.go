// Package memory provides in-memory store implementations for tests and
// local development.
package memory

import (
	"context"
	"sync"
	"time"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/storage"
)

// SampleStore is an in-memory implementation of storage.SampleStore.
type SampleStore struct {
	mu      sync.RWMutex
	rows    []*domain.LiquiditySample
	nextID  int64
	commits int
}

// NewSampleStore creates a new in-memory sample store.
func NewSampleStore() *SampleStore {
	return &SampleStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.SampleStore = (*SampleStore)(nil)

// InsertBatch commits all samples together or none of them.
func (s *SampleStore) InsertBatch(_ context.Context, samples []*domain.LiquiditySample) error {
	if len(samples) == 0 {
		return nil
	}

	// Validate the whole batch before touching the store so a bad row never
	// leaves a partial batch behind.
	for _, sample := range samples {
		if sample == nil || sample.Source == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	for _, sample := range samples {
		row := *sample
		row.ID = s.nextID
		row.CreatedAt = now
		s.nextID++
		s.rows = append(s.rows, &row)
	}
	s.commits++

	return nil
}

// GetByMarket retrieves samples for one observation, in insertion order.
func (s *SampleStore) GetByMarket(_ context.Context, source domain.Source, marketAddress string, capturedAt int64) ([]*domain.LiquiditySample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.LiquiditySample
	for _, row := range s.rows {
		if row.Source == source && row.MarketAddress == marketAddress && row.CapturedAt == capturedAt {
			rowCopy := *row
			result = append(result, &rowCopy)
		}
	}
	return result, nil
}

// Len returns the number of stored rows.
func (s *SampleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Commits returns how many non-empty batches have been committed.
func (s *SampleStore) Commits() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.commits
}

// All returns copies of every stored row in insertion order.
func (s *SampleStore) All() []*domain.LiquiditySample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.LiquiditySample, 0, len(s.rows))
	for _, row := range s.rows {
		rowCopy := *row
		result = append(result, &rowCopy)
	}
	return result
}
