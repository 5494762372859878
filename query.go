package sqlitemcp

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rickchristie/sqlite-mcp/internal/dbscope"
	"github.com/rickchristie/sqlite-mcp/internal/sqlguard"
)

// ReadQuery executes the full read-only query pipeline and returns only
// QueryOutput. All errors (authorization failures, validation rejections,
// engine errors) are converted to output.Error. The error message is then
// evaluated against error_prompts patterns — any matching prompt messages
// are appended. This means callers only need to check output.Error, never
// a Go error.
func (s *SqliteMcp) ReadQuery(ctx context.Context, input QueryInput) *QueryOutput {
	startTime := time.Now()

	// 1. Acquire semaphore (respects context cancellation to prevent deadlock)
	select {
	case s.semaphore <- struct{}{}:
	case <-ctx.Done():
		return s.handleError(fmt.Errorf("failed to acquire query slot: all %d slots are in use, context cancelled while waiting: %w", cap(s.semaphore), ctx.Err()))
	}
	defer func() { <-s.semaphore }()

	// 2. Check SQL length (before any processing)
	if len(input.Query) > s.config.Query.MaxSQLLength {
		return s.handleError(fmt.Errorf("SQL query too long: %d bytes exceeds maximum of %d bytes", len(input.Query), s.config.Query.MaxSQLLength))
	}

	// 3. Authorize the database file against the allow-list
	path, err := s.guard.Authorize(input.FilePath)
	if err != nil {
		return s.handleError(err)
	}

	// 4. Normalize, classify, and cap the statement
	rowLimit := input.RowLimit
	if rowLimit <= 0 {
		rowLimit = s.config.Query.DefaultRowLimit
	}
	validated, err := sqlguard.Validate(input.Query, rowLimit)
	if err != nil {
		return s.handleError(err)
	}

	// 5. Determine timeout (zero resolved timeout means no deadline)
	queryCtx := ctx
	queryTimeout, timeoutRule := s.timeoutMgr.GetTimeoutWithPattern(validated.SQL)
	if queryTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, queryTimeout)
		defer cancel()
	}

	// 6. Open a read-only handle scoped to this call
	db, err := dbscope.Open(queryCtx, path)
	if err != nil {
		return s.handleError(fmt.Errorf("%w: %v", ErrQueryExecution, err))
	}
	defer db.Close()

	// 7. Execute with positional parameter binding
	rows, err := db.QueryContext(queryCtx, validated.SQL, input.Params...)
	if err != nil {
		return s.handleError(fmt.Errorf("%w: %v", ErrQueryExecution, err))
	}

	// 8. Collect results (all rows, or exactly one when FetchAll is false)
	result, err := collectRows(rows, input.FetchAll)
	if err != nil {
		return s.handleError(fmt.Errorf("%w: %v", ErrQueryExecution, err))
	}

	// 9. Apply sanitization
	sanitized := s.sanitizer.HasRules()
	result.Rows = s.sanitizer.SanitizeRows(result.Rows)

	// 10. Apply max result length truncation
	s.truncateIfNeeded(result)

	// 11. Log successful execution with pipeline details
	logEvent := s.logger.Info().
		Str("db", path).
		Str("sql", truncateForLog(validated.SQL, 200)).
		Dur("duration", time.Since(startTime)).
		Int("row_count", len(result.Rows))
	if timeoutRule != "" {
		logEvent = logEvent.Str("timeout_rule", timeoutRule)
	}
	if sanitized {
		logEvent = logEvent.Bool("sanitized", true)
	}
	logEvent.Msg("query executed")

	return result
}

// collectRows reads rows into a QueryOutput. With fetchAll false, at most
// one row is read and the rest are discarded unfetched.
func collectRows(rows *sql.Rows, fetchAll bool) (*QueryOutput, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	resultRows := make([]map[string]any, 0)
	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		resultRows = append(resultRows, row)
		if !fetchAll {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryOutput{Columns: columns, Rows: resultRows}, nil
}

// convertValue converts a driver-returned value to a JSON-friendly Go type.
// SQLite values are one of NULL, INTEGER, REAL, TEXT, or BLOB; the driver
// may additionally surface time.Time for declared datetime columns.
func convertValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		// BLOB — base64 encode
		return base64.StdEncoding.EncodeToString(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		return val
	}
}

// handleError converts any error into a QueryOutput with error message.
// The error message is evaluated against error_prompts — matching prompt
// messages are appended.
func (s *SqliteMcp) handleError(err error) *QueryOutput {
	errMsg := err.Error()
	prompt := s.errPrompts.Match(errMsg)
	patterns := s.errPrompts.MatchedPatterns(errMsg)

	logEvent := s.logger.Error().Err(err)
	if len(patterns) > 0 {
		logEvent = logEvent.Strs("error_prompts", patterns)
	}
	logEvent.Msg("query error")

	if prompt != "" {
		errMsg = errMsg + "\n\n" + prompt
	}
	return &QueryOutput{Error: errMsg}
}

// truncateIfNeeded truncates query output rows if they exceed MaxResultLength (in characters).
func (s *SqliteMcp) truncateIfNeeded(output *QueryOutput) {
	jsonBytes, _ := json.Marshal(output.Rows)
	jsonStr := string(jsonBytes)
	if utf8.RuneCountInString(jsonStr) <= s.config.Query.MaxResultLength {
		return
	}
	runes := []rune(jsonStr)
	truncated := string(runes[:s.config.Query.MaxResultLength])
	output.Rows = nil
	output.Error = truncated + "...[truncated] Result is too long! Add limits in your query!"
}

// truncateForLog truncates a string for log output to avoid oversized log entries.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncateAt := maxLen
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	return s[:truncateAt] + "...[truncated]"
}
