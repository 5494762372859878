package sqlitemcp

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rickchristie/sqlite-mcp/internal/errprompt"
	"github.com/rickchristie/sqlite-mcp/internal/pathguard"
	"github.com/rickchristie/sqlite-mcp/internal/sanitize"
	"github.com/rickchristie/sqlite-mcp/internal/timeout"
)

// SqliteMcp is the core engine that provides the ReadQuery, ListTables, and
// DescribeTable tools. All exported methods are safe for concurrent use from
// multiple goroutines: the only state shared across calls is immutable
// configuration — the resolved path allow-list, compiled rule sets, and the
// concurrency semaphore. Database handles are opened per call and never
// cached.
type SqliteMcp struct {
	config     Config
	guard      *pathguard.Guard
	semaphore  chan struct{}
	sanitizer  *sanitize.Sanitizer
	errPrompts *errprompt.Matcher
	timeoutMgr *timeout.Manager
	logger     zerolog.Logger
}

// New creates a new SqliteMcp instance. Panics on invalid config shape.
// Returns an error only for runtime failures: allow-list entries that do not
// exist, or rule patterns that do not compile.
func New(config Config, logger zerolog.Logger) (*SqliteMcp, error) {
	// --- Config validation (panics on invalid config) ---

	if len(config.AllowedPaths) == 0 {
		panic("sqlitemcp: allowed_paths must be non-empty")
	}

	// Apply defaults for zero values
	if config.Query.DefaultRowLimit == 0 {
		config.Query.DefaultRowLimit = 1000
	}
	if config.Query.MaxConcurrent == 0 {
		config.Query.MaxConcurrent = 8
	}
	if config.Query.MaxSQLLength == 0 {
		config.Query.MaxSQLLength = 100000
	}
	if config.Query.MaxResultLength == 0 {
		config.Query.MaxResultLength = 100000
	}
	if config.Query.DefaultRowLimit < 0 {
		panic("sqlitemcp: query.default_row_limit must be > 0")
	}
	if config.Query.MaxConcurrent < 0 {
		panic("sqlitemcp: query.max_concurrent must be > 0")
	}
	if config.Query.MaxSQLLength < 0 {
		panic("sqlitemcp: query.max_sql_length must be > 0")
	}
	if config.Query.MaxResultLength < 0 {
		panic("sqlitemcp: query.max_result_length must be > 0")
	}
	for _, rule := range config.Query.TimeoutRules {
		if rule.TimeoutSeconds <= 0 {
			panic(fmt.Sprintf("sqlitemcp: timeout_rule with pattern %q has timeout_seconds <= 0", rule.Pattern))
		}
	}

	// --- Resolve the allow-list ---

	guard, err := pathguard.New(config.AllowedPaths)
	if err != nil {
		return nil, fmt.Errorf("failed to build path allow-list: %w", err)
	}

	// --- Initialize internal components ---

	san, err := sanitize.NewSanitizer(mapSanitizationRules(config.Sanitization))
	if err != nil {
		return nil, err
	}
	matcher, err := errprompt.NewMatcher(mapErrorPromptRules(config.ErrorPrompts))
	if err != nil {
		return nil, err
	}
	timeoutRules := make([]timeout.Rule, len(config.Query.TimeoutRules))
	for i, r := range config.Query.TimeoutRules {
		timeoutRules[i] = timeout.Rule{
			Pattern: r.Pattern,
			Timeout: time.Duration(r.TimeoutSeconds) * time.Second,
		}
	}
	tmgr, err := timeout.NewManager(timeout.Config{
		DefaultTimeout: time.Duration(config.Query.DefaultTimeoutSeconds) * time.Second,
		Rules:          timeoutRules,
	})
	if err != nil {
		return nil, err
	}

	return &SqliteMcp{
		config:     config,
		guard:      guard,
		semaphore:  make(chan struct{}, config.Query.MaxConcurrent),
		sanitizer:  san,
		errPrompts: matcher,
		timeoutMgr: tmgr,
		logger:     logger,
	}, nil
}

// mapSanitizationRules converts sqlitemcp SanitizationRules to internal sanitize.Rules.
func mapSanitizationRules(rules []SanitizationRule) []sanitize.Rule {
	result := make([]sanitize.Rule, len(rules))
	for i, r := range rules {
		result[i] = sanitize.Rule{
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
		}
	}
	return result
}

// mapErrorPromptRules converts sqlitemcp ErrorPromptRules to internal errprompt.Rules.
func mapErrorPromptRules(rules []ErrorPromptRule) []errprompt.Rule {
	result := make([]errprompt.Rule, len(rules))
	for i, r := range rules {
		result[i] = errprompt.Rule{
			Pattern: r.Pattern,
			Message: r.Message,
		}
	}
	return result
}
