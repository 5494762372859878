package sqlitemcp_test

import (
	"context"
	"sync"
	"testing"
	"time"

	sqlitemcp "github.com/rickchristie/sqlite-mcp"
	"github.com/rickchristie/sqlite-mcp/internal/errprompt"
	"github.com/rickchristie/sqlite-mcp/internal/sanitize"
	"github.com/rickchristie/sqlite-mcp/internal/sqlguard"
	"github.com/rickchristie/sqlite-mcp/internal/timeout"
)

func TestRace_ConcurrentReadQuery(t *testing.T) {
	s, path := newSeededMcp(t,
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)",
		"INSERT INTO users (name) VALUES ('alice'), ('bob'), ('carol')",
	)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				output := s.ReadQuery(context.Background(), sqlitemcp.QueryInput{
					FilePath: path,
					Query:    "SELECT id, name FROM users ORDER BY id",
					FetchAll: true,
				})
				if output.Error != "" {
					t.Errorf("unexpected error: %s", output.Error)
					return
				}
				if len(output.Rows) != 3 {
					t.Errorf("expected 3 rows, got %d", len(output.Rows))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestRace_ConcurrentSanitization(t *testing.T) {
	s, err := sanitize.NewSanitizer([]sanitize.Rule{
		{Pattern: `\d{3}-\d{4}`, Replacement: "***-****"},
		{Pattern: `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`, Replacement: "[REDACTED]"},
	})
	if err != nil {
		t.Fatalf("failed to create sanitizer: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				// Each iteration gets a fresh copy since SanitizeRows mutates in-place.
				rows := []map[string]interface{}{
					{"phone": "555-1234", "email": "test@example.com", "name": "Alice"},
					{"phone": "555-5678", "email": "bob@test.org", "name": "Bob"},
				}
				s.SanitizeRows(rows)
			}
		}()
	}
	wg.Wait()
}

func TestRace_ConcurrentValidate(t *testing.T) {
	queries := []string{
		"SELECT * FROM users",
		"INSERT INTO users (name) VALUES ('test')",
		"UPDATE users SET name = 'test' WHERE id = 1",
		"DELETE FROM users WHERE id = 1",
		"DROP TABLE users",
		"WITH t AS (SELECT 1) SELECT * FROM t",
		"SELECT * FROM users WHERE name = 'test'",
		"SELECT 1; SELECT 2",
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sql := queries[(id+j)%len(queries)]
				_, _ = sqlguard.Validate(sql, 100)
			}
		}(i)
	}
	wg.Wait()
}

func TestRace_ConcurrentErrorPrompt(t *testing.T) {
	m, err := errprompt.NewMatcher([]errprompt.Rule{
		{Pattern: `no such table`, Message: "Use list_tables to discover tables."},
		{Pattern: `syntax error`, Message: "Check your SQL syntax."},
		{Pattern: `no such column`, Message: "Use describe_table to inspect the schema."},
	})
	if err != nil {
		t.Fatalf("failed to create matcher: %v", err)
	}

	errors := []string{
		"no such table: users",
		"near \"SELEC\": syntax error",
		"no such column: bar",
		"database is locked",
		"file not found",
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				errMsg := errors[(id+j)%len(errors)]
				_ = m.Match(errMsg)
			}
		}(i)
	}
	wg.Wait()
}

func TestRace_ConcurrentTimeout(t *testing.T) {
	m, err := timeout.NewManager(timeout.Config{
		DefaultTimeout: 30 * time.Second,
		Rules: []timeout.Rule{
			{Pattern: `(?i)JOIN`, Timeout: 60 * time.Second},
			{Pattern: `(?i)sqlite_master`, Timeout: 10 * time.Second},
			{Pattern: `(?i)GROUP BY`, Timeout: 15 * time.Second},
		},
	})
	if err != nil {
		t.Fatalf("failed to create timeout manager: %v", err)
	}

	queries := []string{
		"SELECT * FROM a JOIN b ON a.id = b.id",
		"SELECT name FROM sqlite_master",
		"SELECT count(*) FROM users GROUP BY city",
		"SELECT * FROM users",
		"WITH t AS (SELECT 1) SELECT * FROM t",
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sql := queries[(id+j)%len(queries)]
				_ = m.GetTimeout(sql)
			}
		}(i)
	}
	wg.Wait()
}
