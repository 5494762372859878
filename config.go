package sqlitemcp

// Config is the base configuration used by library mode via New().
type Config struct {
	// AllowedPaths are the absolute database files and/or directories the
	// server may read. Resolved once at startup; immutable for the process
	// lifetime. Every entry must exist.
	AllowedPaths []string           `json:"allowed_paths"`
	Query        QueryConfig        `json:"query"`
	ErrorPrompts []ErrorPromptRule  `json:"error_prompts"`
	Sanitization []SanitizationRule `json:"sanitization"`
}

// ServerConfig embeds Config and adds server-only fields for CLI mode.
type ServerConfig struct {
	Config
	Server  ServerSettings `json:"server"`
	Logging LoggingConfig  `json:"logging"`
}

// ServerSettings holds transport settings for CLI mode.
type ServerSettings struct {
	// Transport is "stdio" (default) or "http".
	Transport          string `json:"transport"`
	Port               int    `json:"port"`
	HealthCheckEnabled bool   `json:"health_check_enabled"`
	HealthCheckPath    string `json:"health_check_path"`
}

// LoggingConfig holds logging settings for CLI mode.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stderr, stdout, or file path
}

// QueryConfig holds query execution settings.
type QueryConfig struct {
	// DefaultRowLimit is appended as a LIMIT to queries that carry none.
	// Zero means 1000.
	DefaultRowLimit int `json:"default_row_limit"`
	// MaxConcurrent caps in-flight tool calls. Zero means 8.
	MaxConcurrent int `json:"max_concurrent"`
	// DefaultTimeoutSeconds bounds query execution. Zero or negative
	// disables the deadline: a pathological query then runs unbounded,
	// which matches the engine's own default behavior.
	DefaultTimeoutSeconds       int           `json:"default_timeout_seconds"`
	ListTablesTimeoutSeconds    int           `json:"list_tables_timeout_seconds"`
	DescribeTableTimeoutSeconds int           `json:"describe_table_timeout_seconds"`
	MaxSQLLength                int           `json:"max_sql_length"`
	MaxResultLength             int           `json:"max_result_length"`
	TimeoutRules                []TimeoutRule `json:"timeout_rules"`
}

// TimeoutRule maps a SQL regex pattern to a specific timeout duration.
type TimeoutRule struct {
	Pattern        string `json:"pattern"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// ErrorPromptRule maps an error message pattern to a guidance message.
type ErrorPromptRule struct {
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

// SanitizationRule defines a regex-based field sanitization rule.
type SanitizationRule struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Description string `json:"description"`
}
