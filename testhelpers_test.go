package sqlitemcp_test

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	sqlitemcp "github.com/rickchristie/sqlite-mcp"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func defaultConfig(allowedPaths ...string) sqlitemcp.Config {
	return sqlitemcp.Config{
		AllowedPaths: allowedPaths,
		Query: sqlitemcp.QueryConfig{
			DefaultRowLimit: 1000,
			MaxConcurrent:   4,
			MaxSQLLength:    100000,
			MaxResultLength: 100000,
		},
	}
}

// seedDB creates a SQLite database file at dir/name and executes the given
// statements against it with a writable handle. The access layer itself only
// ever opens files read-only, so all fixture data goes through here.
func seedDB(t *testing.T, dir, name string, stmts ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture database: %v", err)
	}
	defer db.Close()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture statement failed: %v\n%s", err, stmt)
		}
	}
	return path
}

func newTestMcp(t *testing.T, config sqlitemcp.Config) *sqlitemcp.SqliteMcp {
	t.Helper()
	s, err := sqlitemcp.New(config, testLogger())
	if err != nil {
		t.Fatalf("failed to create SqliteMcp: %v", err)
	}
	return s
}

// newSeededMcp seeds a database under a fresh temp dir, allow-lists the dir,
// and returns the instance plus the database path.
func newSeededMcp(t *testing.T, stmts ...string) (*sqlitemcp.SqliteMcp, string) {
	t.Helper()
	dir := t.TempDir()
	path := seedDB(t, dir, "test.db", stmts...)
	return newTestMcp(t, defaultConfig(dir)), path
}
