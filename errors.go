package sqlitemcp

import "errors"

// Sentinel errors raised by the tool pipeline itself. Path authorization
// failures carry the sentinels from internal/pathguard, statement validation
// failures those from internal/sqlguard; callers match any of them with
// errors.Is.
var (
	// ErrTableNotFound is returned by DescribeTable when the named table
	// is absent from the catalog.
	ErrTableNotFound = errors.New("table does not exist")

	// ErrQueryExecution wraps engine-level failures: malformed SQL,
	// bind-count mismatches, type errors. The engine's message is
	// preserved in the wrapped text.
	ErrQueryExecution = errors.New("SQLite error")
)
