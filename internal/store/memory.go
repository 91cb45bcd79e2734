package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jonathan/jobtrail/internal/types"
)

// Memory is an in-memory Store used by tests and local dry runs. It applies
// the same Withdrawn storage mapping as the PostgreSQL implementation so
// behavior matches across backends.
type Memory struct {
	mu      sync.Mutex
	records map[string]*types.ApplicationRecord // keyed by thread id
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*types.ApplicationRecord)}
}

// FindByThread returns the record for a thread id, if any.
func (m *Memory) FindByThread(_ context.Context, threadID string) (*types.ApplicationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[threadID]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

// FindByJobURL returns the record whose job URL exactly matches, if any.
func (m *Memory) FindByJobURL(_ context.Context, url string) (*types.ApplicationRecord, error) {
	if url == "" {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rec := range m.records {
		if rec.JobURL == url {
			return copyRecord(rec), nil
		}
	}
	return nil, nil
}

// Create inserts a new record. One record per thread id.
func (m *Memory) Create(_ context.Context, rec *types.ApplicationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[rec.ThreadID]; exists {
		return fmt.Errorf("record already exists for thread %s", rec.ThreadID)
	}

	stored := copyRecord(rec)
	stored.Status = stored.Status.StorageValue()
	m.records[rec.ThreadID] = stored
	return nil
}

// Update replaces the stored state of an existing record.
func (m *Memory) Update(_ context.Context, rec *types.ApplicationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.records[rec.ThreadID]
	if !ok || existing.ID != rec.ID {
		return fmt.Errorf("record not found: %s", rec.ID)
	}

	stored := copyRecord(rec)
	stored.Status = stored.Status.StorageValue()
	m.records[rec.ThreadID] = stored
	return nil
}

// List returns records ordered by most recent update.
func (m *Memory) List(_ context.Context, limit int) ([]types.ApplicationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]types.ApplicationRecord, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, *copyRecord(rec))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].UpdatedAt.After(records[j].UpdatedAt)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func copyRecord(r *types.ApplicationRecord) *types.ApplicationRecord {
	c := *r
	c.MessageIDs = append([]string(nil), r.MessageIDs...)
	c.StatusHistory = append([]string(nil), r.StatusHistory...)
	return &c
}
