package sqlitemcp_test

import (
	"encoding/json"
	"strings"
	"testing"

	sqlitemcp "github.com/rickchristie/sqlite-mcp"
)

// expectPanic calls f and asserts that it panics with a message containing substr.
func expectPanic(t *testing.T, substr string, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q, but no panic occurred", substr)
		}
		msg := ""
		switch v := r.(type) {
		case string:
			msg = v
		case error:
			msg = v.Error()
		default:
			t.Fatalf("expected panic string/error containing %q, got %T: %v", substr, r, r)
		}
		if !strings.Contains(msg, substr) {
			t.Fatalf("expected panic containing %q, got %q", substr, msg)
		}
	}()
	f()
}

// expectNoPanic calls f and asserts that it does NOT panic.
func expectNoPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	f()
}

func TestNewValidation_EmptyAllowedPaths(t *testing.T) {
	t.Parallel()
	config := sqlitemcp.Config{}

	expectPanic(t, "allowed_paths", func() {
		sqlitemcp.New(config, testLogger())
	})
}

func TestNewValidation_NegativeRowLimit(t *testing.T) {
	t.Parallel()
	config := defaultConfig(t.TempDir())
	config.Query.DefaultRowLimit = -1

	expectPanic(t, "default_row_limit", func() {
		sqlitemcp.New(config, testLogger())
	})
}

func TestNewValidation_NegativeMaxConcurrent(t *testing.T) {
	t.Parallel()
	config := defaultConfig(t.TempDir())
	config.Query.MaxConcurrent = -1

	expectPanic(t, "max_concurrent", func() {
		sqlitemcp.New(config, testLogger())
	})
}

func TestNewValidation_ZeroTimeoutRule(t *testing.T) {
	t.Parallel()
	config := defaultConfig(t.TempDir())
	config.Query.TimeoutRules = []sqlitemcp.TimeoutRule{
		{Pattern: "JOIN", TimeoutSeconds: 0},
	}

	expectPanic(t, "timeout_seconds", func() {
		sqlitemcp.New(config, testLogger())
	})
}

func TestNewValidation_ZeroValuesGetDefaults(t *testing.T) {
	t.Parallel()
	// Zero limits are replaced with defaults rather than rejected.
	config := sqlitemcp.Config{AllowedPaths: []string{t.TempDir()}}

	expectNoPanic(t, func() {
		if _, err := sqlitemcp.New(config, testLogger()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestNewInvalidSanitizationRegex(t *testing.T) {
	t.Parallel()
	config := defaultConfig(t.TempDir())
	config.Sanitization = []sqlitemcp.SanitizationRule{
		{Pattern: "[invalid(regex", Replacement: "***"},
	}

	_, err := sqlitemcp.New(config, testLogger())
	if err == nil {
		t.Fatal("expected error for invalid sanitization regex")
	}
}

func TestNewInvalidErrorPromptRegex(t *testing.T) {
	t.Parallel()
	config := defaultConfig(t.TempDir())
	config.ErrorPrompts = []sqlitemcp.ErrorPromptRule{
		{Pattern: "[invalid(regex", Message: "test"},
	}

	_, err := sqlitemcp.New(config, testLogger())
	if err == nil {
		t.Fatal("expected error for invalid error prompt regex")
	}
}

func TestNewInvalidTimeoutRuleRegex(t *testing.T) {
	t.Parallel()
	config := defaultConfig(t.TempDir())
	config.Query.TimeoutRules = []sqlitemcp.TimeoutRule{
		{Pattern: "[invalid(regex", TimeoutSeconds: 5},
	}

	_, err := sqlitemcp.New(config, testLogger())
	if err == nil {
		t.Fatal("expected error for invalid timeout rule regex")
	}
}

func TestNewNonexistentAllowedPath(t *testing.T) {
	t.Parallel()
	config := defaultConfig("/nonexistent/allowed/path")

	_, err := sqlitemcp.New(config, testLogger())
	if err == nil {
		t.Fatal("expected error for nonexistent allowed path")
	}
	if !strings.Contains(err.Error(), "allowed path") {
		t.Fatalf("expected allowed path error, got %v", err)
	}
}

func TestNewRelativeAllowedPath(t *testing.T) {
	t.Parallel()
	config := defaultConfig("relative/path")

	_, err := sqlitemcp.New(config, testLogger())
	if err == nil {
		t.Fatal("expected error for relative allowed path")
	}
	if !strings.Contains(err.Error(), "absolute") {
		t.Fatalf("expected absolute path error, got %v", err)
	}
}

func TestConfigJSONShape(t *testing.T) {
	t.Parallel()
	configJSON := `{
		"allowed_paths": ["/data/databases", "/data/app.db"],
		"query": {
			"default_row_limit": 200,
			"max_concurrent": 2,
			"default_timeout_seconds": 15,
			"timeout_rules": [
				{"pattern": "JOIN", "timeout_seconds": 60}
			]
		},
		"error_prompts": [
			{"pattern": "no such table", "message": "Use list_tables first."}
		],
		"sanitization": [
			{"pattern": "secret", "replacement": "***"}
		]
	}`

	var config sqlitemcp.Config
	if err := json.Unmarshal([]byte(configJSON), &config); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if len(config.AllowedPaths) != 2 {
		t.Fatalf("expected 2 allowed paths, got %v", config.AllowedPaths)
	}
	if config.Query.DefaultRowLimit != 200 {
		t.Fatalf("expected default_row_limit 200, got %d", config.Query.DefaultRowLimit)
	}
	if config.Query.MaxConcurrent != 2 {
		t.Fatalf("expected max_concurrent 2, got %d", config.Query.MaxConcurrent)
	}
	if len(config.Query.TimeoutRules) != 1 || config.Query.TimeoutRules[0].TimeoutSeconds != 60 {
		t.Fatalf("unexpected timeout rules: %+v", config.Query.TimeoutRules)
	}
	if len(config.ErrorPrompts) != 1 || config.ErrorPrompts[0].Message != "Use list_tables first." {
		t.Fatalf("unexpected error prompts: %+v", config.ErrorPrompts)
	}
	if len(config.Sanitization) != 1 || config.Sanitization[0].Replacement != "***" {
		t.Fatalf("unexpected sanitization rules: %+v", config.Sanitization)
	}
}
