package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/clientimport/internal/core"
)

// DefaultHistoryLimit caps how many runs a history listing returns when
// the caller does not say.
const DefaultHistoryLimit = 50

// MaxHistoryLimit bounds explicit limits so one request cannot page the
// whole table.
const MaxHistoryLimit = 200

// ImportRun is one recorded batch, as listed by the history endpoint.
type ImportRun struct {
	ID             string    `json:"id"`
	Operation      string    `json:"operation"`
	Mode           string    `json:"mode"`
	RequestedCount int       `json:"requestedCount"`
	SuccessCount   int       `json:"successCount"`
	FailedCount    int       `json:"failedCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// RecordRun saves the summary counts of a finished batch and returns the
// run's id.
func (s *Store) RecordRun(ctx context.Context, operation string, res *core.BatchResult) (string, error) {
	var id pgtype.UUID
	err := s.pool.QueryRow(ctx,
		`INSERT INTO import_runs (operation, mode, requested_count, success_count, failed_count)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		operation, string(res.Mode), res.RequestedCount, res.SuccessCount, res.FailedCount,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("record import run: %w", err)
	}
	return core.PgUUIDToString(id), nil
}

// ListRuns returns the most recent runs, newest first. Limits outside
// [1, MaxHistoryLimit] fall back to DefaultHistoryLimit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, operation, mode, requested_count, success_count, failed_count, created_at
		 FROM import_runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	defer rows.Close()

	runs := []ImportRun{}
	for rows.Next() {
		var (
			run     ImportRun
			id      pgtype.UUID
			created pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &run.Operation, &run.Mode, &run.RequestedCount, &run.SuccessCount, &run.FailedCount, &created); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		run.ID = core.PgUUIDToString(id)
		run.CreatedAt = created.Time
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}
