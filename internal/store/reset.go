package store

import (
	"context"
	"fmt"
	"time"
)

// ResetTimeout is the maximum duration for a full reset.
const ResetTimeout = 30 * time.Second

// Reset truncates the clients table and the import run history. This is a
// destructive operation for development databases; nothing in the import
// path calls it.
func (s *Store) Reset(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	for _, table := range []string{clientsTable, "import_runs"} {
		query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", quoteIdentifier(table))
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("reset %s: %w", table, err)
		}
	}
	return nil
}
