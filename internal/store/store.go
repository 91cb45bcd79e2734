// Package store provides the persistent record store for application
// records, keyed by thread id: a PostgreSQL implementation for production
// and an in-memory implementation for tests.
package store

import (
	"context"

	"github.com/jonathan/jobtrail/internal/types"
)

// Store is the record store contract. Lookups return (nil, nil) when no
// record matches.
type Store interface {
	// FindByThread returns the record for a thread id, if any.
	FindByThread(ctx context.Context, threadID string) (*types.ApplicationRecord, error)
	// FindByJobURL returns the record whose stored job URL exactly matches.
	FindByJobURL(ctx context.Context, url string) (*types.ApplicationRecord, error)
	// Create inserts a new record.
	Create(ctx context.Context, rec *types.ApplicationRecord) error
	// Update replaces the stored state of an existing record by id.
	Update(ctx context.Context, rec *types.ApplicationRecord) error
	// List returns the most recently updated records, newest first.
	List(ctx context.Context, limit int) ([]types.ApplicationRecord, error)
}
