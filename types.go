package sqlitemcp

// QueryInput is the input for the ReadQuery tool.
type QueryInput struct {
	// FilePath is the absolute path to the SQLite database file.
	FilePath string `json:"file_path"`
	// Query is the SELECT or WITH statement to execute. Positional ?
	// placeholders are bound from Params.
	Query string `json:"query"`
	// Params are bound positionally to the query's placeholders.
	Params []any `json:"params,omitempty"`
	// FetchAll returns every row (bounded by the effective LIMIT) when
	// true, and at most one row when false. The MCP tool layer defaults
	// this to true; library callers set it explicitly.
	FetchAll bool `json:"fetch_all"`
	// RowLimit caps results for queries that carry no LIMIT of their own.
	// Zero or negative means the configured default.
	RowLimit int `json:"row_limit,omitempty"`
}

// QueryOutput is the output of the ReadQuery tool. All failures (path
// authorization, validation, engine errors) are placed in Error. The error
// message is evaluated against error_prompts and matching prompt messages
// are appended.
type QueryOutput struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Error   string           `json:"error,omitempty"`
}

// ListTablesInput is the input for the ListTables tool.
type ListTablesInput struct {
	FilePath string `json:"file_path"`
}

// ListTablesOutput is the output of the ListTables tool. Tables are sorted
// lexicographically ascending.
type ListTablesOutput struct {
	Tables []string `json:"tables"`
	Error  string   `json:"error,omitempty"`
}

// DescribeTableInput is the input for the DescribeTable tool.
type DescribeTableInput struct {
	FilePath string `json:"file_path"`
	Table    string `json:"table_name"`
}

// ColumnInfo describes a single column. Field names mirror the engine's
// table_info catalog output.
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	NotNull      bool   `json:"notnull"`
	Default      string `json:"dflt_value,omitempty"`
	IsPrimaryKey bool   `json:"pk"`
}

// DescribeTableOutput is the output of the DescribeTable tool. Columns
// appear in catalog-declared order.
type DescribeTableOutput struct {
	Name    string       `json:"name"`
	Columns []ColumnInfo `json:"columns"`
	Error   string       `json:"error,omitempty"`
}
