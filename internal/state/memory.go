package state

import (
	"context"
	"sync"

	"localizer/internal/models"
)

// MemoryStore is an in-process Store used by tests and throwaway runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[int64]models.ProcessingRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[int64]models.ProcessingRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, itemID int64) (*models.ProcessingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[itemID]
	if !ok {
		return nil, nil
	}
	out := rec
	return &out, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, rec *models.ProcessingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ItemID] = *rec
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, itemID)
	return nil
}

func (s *MemoryStore) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}
