package sqlitemcp

import (
	"context"
	"fmt"
	"time"

	"github.com/rickchristie/sqlite-mcp/internal/dbscope"
)

const listTablesSQL = `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`

// ListTables returns the names of all tables in the database file,
// lexicographically ascending. Takes no caller-supplied SQL, so it does NOT
// go through the validation or sanitization pipeline — only path
// authorization.
func (s *SqliteMcp) ListTables(ctx context.Context, input ListTablesInput) (*ListTablesOutput, error) {
	startTime := time.Now()

	// 1. Acquire semaphore
	select {
	case s.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("ListTables: failed to acquire query slot: all %d slots are in use, context cancelled while waiting: %w", cap(s.semaphore), ctx.Err())
	}
	defer func() { <-s.semaphore }()

	// 2. Authorize the database file
	path, err := s.guard.Authorize(input.FilePath)
	if err != nil {
		return nil, err
	}

	// 3. Apply configurable timeout (zero disables the deadline)
	queryCtx := ctx
	if t := s.config.Query.ListTablesTimeoutSeconds; t > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, time.Duration(t)*time.Second)
		defer cancel()
	}

	// 4. Open a scoped read-only handle and query the catalog
	db, err := dbscope.Open(queryCtx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}
	defer db.Close()

	rows, err := db.QueryContext(queryCtx, listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}
	defer rows.Close()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("ListTables scan failed: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}

	s.logger.Info().
		Str("db", path).
		Dur("duration", time.Since(startTime)).
		Int("table_count", len(tables)).
		Msg("ListTables executed")

	return &ListTablesOutput{Tables: tables}, nil
}
