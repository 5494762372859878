// Package sqlitemcp provides safe, read-only access to local SQLite
// database files for AI agents through the Model Context Protocol (MCP).
//
// It exposes three tools — ReadQuery, ListTables, and DescribeTable — each
// gated by the same guard pipeline: path allow-listing, statement
// normalization and classification (SELECT and WITH only, exactly one
// statement), and result-size capping via an injected row limit. Every call
// opens its own ephemeral read-only connection (mode=ro plus PRAGMA
// query_only) and releases it before returning; nothing is shared across
// calls except the immutable allow-list and compiled configuration.
//
// # Library Usage
//
//	s, err := sqlitemcp.New(sqlitemcp.Config{
//		AllowedPaths: []string{"/data/databases"},
//		Query: sqlitemcp.QueryConfig{
//			DefaultRowLimit: 1000,
//		},
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Use directly
//	output := s.ReadQuery(ctx, sqlitemcp.QueryInput{
//		FilePath: "/data/databases/app.db",
//		Query:    "SELECT * FROM users WHERE id = ?",
//		Params:   []any{42},
//		FetchAll: true,
//	})
//
//	// Or register as MCP tools
//	sqlitemcp.RegisterMCPTools(mcpServer, s)
//
// Failures abort only the invocation that triggered them: ReadQuery places
// every error in QueryOutput.Error (optionally extended with configured
// error prompts), ListTables and DescribeTable return Go errors wrapping
// the package sentinels. Nothing is retried and no failure affects the
// allow-list or other in-flight calls.
//
// For configuration reference and the gosqlmcp CLI, see:
// https://github.com/rickchristie/sqlite-mcp
package sqlitemcp
