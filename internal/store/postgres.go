package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/jobtrail/internal/types"
)

//go:embed schema.sql
var schema string

// Postgres implements Store on a pgx connection pool. All values travel
// through query parameters, so literal quotes in thread ids or URLs never
// reach the SQL text.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and ensures the schema exists.
func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Postgres) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const recordColumns = `id, thread_id, company, role, status, location, salary, job_url,
	applied_at, last_email_at, last_email_subject, last_email_from,
	last_status_change_at, last_event_type, message_ids, status_history,
	created_at, updated_at`

// FindByThread retrieves the record for a thread id.
func (s *Postgres) FindByThread(ctx context.Context, threadID string) (*types.ApplicationRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM applications WHERE thread_id = $1`, threadID)
	return scanRecord(row)
}

// FindByJobURL retrieves the record whose job URL exactly matches.
func (s *Postgres) FindByJobURL(ctx context.Context, url string) (*types.ApplicationRecord, error) {
	if url == "" {
		return nil, nil
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+recordColumns+` FROM applications WHERE job_url = $1 LIMIT 1`, url)
	return scanRecord(row)
}

// Create inserts a new record.
func (s *Postgres) Create(ctx context.Context, rec *types.ApplicationRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO applications (`+recordColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		rec.ID, rec.ThreadID, rec.Company, rec.Role, rec.Status.StorageValue(),
		rec.Location, rec.Salary, rec.JobURL,
		rec.AppliedAt, nullableTime(rec.LastEmailAt), rec.LastEmailSubject, rec.LastEmailFrom,
		nullableTime(rec.LastStatusChangeAt), string(rec.LastEventType),
		rec.MessageIDs, rec.StatusHistory, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create record for thread %s: %w", rec.ThreadID, err)
	}
	return nil
}

// Update replaces the stored state of an existing record.
func (s *Postgres) Update(ctx context.Context, rec *types.ApplicationRecord) error {
	result, err := s.pool.Exec(ctx,
		`UPDATE applications SET
			company = $2, role = $3, status = $4, location = $5, salary = $6,
			job_url = $7, last_email_at = $8, last_email_subject = $9,
			last_email_from = $10, last_status_change_at = $11, last_event_type = $12,
			message_ids = $13, status_history = $14, updated_at = $15
		 WHERE id = $1`,
		rec.ID, rec.Company, rec.Role, rec.Status.StorageValue(), rec.Location, rec.Salary,
		rec.JobURL, nullableTime(rec.LastEmailAt), rec.LastEmailSubject,
		rec.LastEmailFrom, nullableTime(rec.LastStatusChangeAt), string(rec.LastEventType),
		rec.MessageIDs, rec.StatusHistory, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", rec.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("record not found: %s", rec.ID)
	}
	return nil
}

// List retrieves the most recently updated records.
func (s *Postgres) List(ctx context.Context, limit int) ([]types.ApplicationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+recordColumns+` FROM applications ORDER BY updated_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []types.ApplicationRecord
	for rows.Next() {
		rec, err := scanRecordRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*types.ApplicationRecord, error) {
	rec, err := scanRecordRow(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return rec, nil
}

func scanRecordRow(row pgx.Row) (*types.ApplicationRecord, error) {
	var rec types.ApplicationRecord
	var lastEmailAt, lastStatusChangeAt *time.Time
	var eventType string

	err := row.Scan(&rec.ID, &rec.ThreadID, &rec.Company, &rec.Role, &rec.Status,
		&rec.Location, &rec.Salary, &rec.JobURL,
		&rec.AppliedAt, &lastEmailAt, &rec.LastEmailSubject, &rec.LastEmailFrom,
		&lastStatusChangeAt, &eventType, &rec.MessageIDs, &rec.StatusHistory,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}

	if lastEmailAt != nil {
		rec.LastEmailAt = *lastEmailAt
	}
	if lastStatusChangeAt != nil {
		rec.LastStatusChangeAt = *lastStatusChangeAt
	}
	rec.LastEventType = types.EventType(eventType)
	return &rec, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
