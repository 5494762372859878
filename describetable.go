package sqlitemcp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickchristie/sqlite-mcp/internal/dbscope"
)

const tableExistsSQL = `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`

// DescribeTable returns the column schema of a table: name, declared type,
// not-null flag, default value, and primary-key membership, in
// catalog-declared order. Returns ErrTableNotFound when the table is absent.
func (s *SqliteMcp) DescribeTable(ctx context.Context, input DescribeTableInput) (*DescribeTableOutput, error) {
	startTime := time.Now()

	// 1. Acquire semaphore
	select {
	case s.semaphore <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("DescribeTable: failed to acquire query slot: all %d slots are in use, context cancelled while waiting: %w", cap(s.semaphore), ctx.Err())
	}
	defer func() { <-s.semaphore }()

	// 2. Authorize the database file
	path, err := s.guard.Authorize(input.FilePath)
	if err != nil {
		return nil, err
	}

	// 3. Apply configurable timeout (zero disables the deadline)
	queryCtx := ctx
	if t := s.config.Query.DescribeTableTimeoutSeconds; t > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, time.Duration(t)*time.Second)
		defer cancel()
	}

	// 4. Open a scoped read-only handle
	db, err := dbscope.Open(queryCtx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}
	defer db.Close()

	// 5. Verify the table exists in the catalog
	var name string
	err = db.QueryRowContext(queryCtx, tableExistsSQL, input.Table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrTableNotFound, input.Table)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}

	// 6. Fetch column metadata. PRAGMA table_info cannot bind the table
	// name as a parameter, so the name is quoted explicitly before being
	// spliced into the statement text.
	rows, err := db.QueryContext(queryCtx, fmt.Sprintf("PRAGMA table_info(%s)", quoteName(input.Table)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}
	defer rows.Close()

	output := &DescribeTableOutput{Name: input.Table}
	for rows.Next() {
		// table_info columns: cid, name, type, notnull, dflt_value, pk
		var (
			cid     int
			colName string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &colName, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("DescribeTable scan failed: %w", err)
		}
		output.Columns = append(output.Columns, ColumnInfo{
			Name:         colName,
			Type:         colType,
			NotNull:      notNull == 1,
			Default:      dflt.String,
			IsPrimaryKey: pk > 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryExecution, err)
	}

	s.logger.Info().
		Str("db", path).
		Str("table", input.Table).
		Dur("duration", time.Since(startTime)).
		Int("column_count", len(output.Columns)).
		Msg("DescribeTable executed")

	return output, nil
}

// quoteName wraps a table name in single quotes with '' escaping so it can
// be interpolated into PRAGMA statements, which do not support binding
// identifiers as parameters.
func quoteName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
