package errprompt

import (
	"strings"
	"testing"
)

func TestMatchNoSuchTable(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{
		{Pattern: `(?i)no such table`, Message: "The table does not exist. Use list_tables to see available tables."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Match("SQLite error: no such table: users")
	if got != "The table does not exist. Use list_tables to see available tables." {
		t.Fatalf("unexpected message: %q", got)
	}
}

func TestMatchPathNotAllowed(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{
		{Pattern: `(?i)path not allowed`, Message: "Only allow-listed database files can be queried. Ask the user which paths are configured."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Match("path not allowed: /tmp/secret.db")
	if got == "" {
		t.Fatal("expected a match for access-denied error, got empty string")
	}
}

func TestNoMatch(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{
		{Pattern: `(?i)no such table`, Message: "The table does not exist."},
		{Pattern: `(?i)no such column`, Message: "The column does not exist."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Match("some other error"); got != "" {
		t.Fatalf("expected empty string for non-matching error, got: %s", got)
	}
}

func TestMultipleMatches(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{
		{Pattern: `(?i)no such`, Message: "Check the schema first."},
		{Pattern: `(?i)table`, Message: "Use list_tables."},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.Match("no such table: users")
	expected := "Check the schema first.\nUse list_tables."
	if got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func TestMatchedPatterns(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{
		{Pattern: `(?i)no such table`, Message: "x"},
		{Pattern: `(?i)locked`, Message: "y"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := m.MatchedPatterns("no such table: t")
	if len(got) != 1 || got[0] != `(?i)no such table` {
		t.Fatalf("unexpected patterns: %v", got)
	}
	if m.MatchedPatterns("fine") != nil {
		t.Fatal("expected nil patterns for non-matching error")
	}
}

func TestEmptyRules(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.Match("any error at all"); got != "" {
		t.Fatalf("expected empty string with no rules, got: %s", got)
	}
}

func TestNewMatcherErrorsOnInvalidRegex(t *testing.T) {
	t.Parallel()
	_, err := NewMatcher([]Rule{
		{Pattern: `[invalid`, Message: "should not compile"},
	})
	if err == nil {
		t.Fatal("expected error for invalid regex pattern")
	}
	if !strings.Contains(err.Error(), "invalid regex pattern") {
		t.Fatalf("expected error to contain 'invalid regex pattern', got: %s", err)
	}
}
