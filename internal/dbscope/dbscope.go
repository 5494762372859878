// Package dbscope opens ephemeral read-only SQLite handles. One handle
// serves exactly one tool call; callers must Close it on every exit path
// (use defer immediately after Open). Pooling handles across calls is a
// possible future optimization, intentionally out of scope.
package dbscope

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open returns a read-only handle to the SQLite database file at path.
// Writes are rejected twice over, independent of statement-type filtering:
// mode=ro at open time and PRAGMA query_only on the session.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	// A single connection so the session PRAGMA governs every statement
	// issued through this handle.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enforce read-only mode on %s: %w", path, err)
	}
	return db, nil
}
