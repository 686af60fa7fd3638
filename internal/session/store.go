package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Recorder persists job lifecycle events so callers can poll job state across
// processes. The in-memory manager stays authoritative for lifecycle; the
// store is a durable mirror.
type Recorder interface {
	RecordCreated(ctx context.Context, view *JobView) error
	RecordSettled(ctx context.Context, view *JobView) error
}

// nopRecorder discards everything. Used when no database is configured.
type nopRecorder struct{}

func (nopRecorder) RecordCreated(context.Context, *JobView) error { return nil }
func (nopRecorder) RecordSettled(context.Context, *JobView) error { return nil }

// Store persists analysis jobs in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wraps an existing connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// RecordCreated inserts the job row in its dispatched state.
func (s *Store) RecordCreated(ctx context.Context, view *JobView) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO analysis_jobs (id, artifact_ref, owner_id, persona, state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		view.ID, view.ArtifactRef, view.OwnerID, string(view.Persona), string(view.State),
		view.CreatedAt, view.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record job creation: %w", err)
	}
	return nil
}

// RecordSettled updates the job row with its terminal state and results.
func (s *Store) RecordSettled(ctx context.Context, view *JobView) error {
	var resultsJSON []byte
	if view.Results != nil {
		var err error
		resultsJSON, err = json.Marshal(view.Results)
		if err != nil {
			return fmt.Errorf("failed to marshal job results: %w", err)
		}
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE analysis_jobs
		 SET state = $1, results = $2, aggregate_confidence = $3, updated_at = $4
		 WHERE id = $5`,
		string(view.State), resultsJSON, view.AggregateConfidence, view.UpdatedAt, view.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to record job settlement: %w", err)
	}
	return nil
}
