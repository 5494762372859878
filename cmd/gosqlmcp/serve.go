package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	sqlitemcp "github.com/rickchristie/sqlite-mcp"
	"github.com/rickchristie/sqlite-mcp/internal/meta"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

func runServe() error {
	// 1. Load ServerConfig
	serverConfig, err := loadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	transport := serverConfig.Server.Transport
	if transport == "" {
		transport = "stdio"
	}

	// On stdio, stdout carries the MCP channel — logs must not land there.
	if transport == "stdio" && serverConfig.Logging.Output == "stdout" {
		return fmt.Errorf("logging.output cannot be \"stdout\" with the stdio transport")
	}

	// 2. Setup logger
	logger := setupLogger(serverConfig.Logging)

	// 3. Create SqliteMcp instance (resolves the allow-list; refuses to
	// start on missing or relative paths)
	sqlMcp, err := sqlitemcp.New(serverConfig.Config, logger)
	if err != nil {
		return fmt.Errorf("failed to create SqliteMcp: %w", err)
	}

	// 4. Create MCP server with initialize lifecycle logging
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, req *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logger.Info().
			Str("client_name", req.Params.ClientInfo.Name).
			Str("client_version", req.Params.ClientInfo.Version).
			Msg("AI agent connected (MCP initialize)")
	})

	mcpServer := server.NewMCPServer("gosqlmcp", meta.Version,
		server.WithToolCapabilities(true),
		server.WithHooks(hooks),
	)

	sqlitemcp.RegisterMCPTools(mcpServer, sqlMcp)

	// 5. Serve on the configured transport
	switch transport {
	case "stdio":
		logger.Info().
			Int("allowed_paths", len(serverConfig.AllowedPaths)).
			Msg("starting gosqlmcp server on stdio")
		return server.ServeStdio(mcpServer)

	case "http":
		if serverConfig.Server.Port <= 0 {
			panic("gosqlmcp: server.port must be > 0 for the http transport")
		}

		addr := fmt.Sprintf(":%d", serverConfig.Server.Port)
		mux := http.NewServeMux()

		// Health check endpoint (process liveness only)
		if serverConfig.Server.HealthCheckEnabled {
			if serverConfig.Server.HealthCheckPath == "" {
				panic("gosqlmcp: health_check_path must be set when health_check_enabled is true")
			}
			mux.HandleFunc(serverConfig.Server.HealthCheckPath, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status":"ok"}`))
			})
		}

		httpSrv := &http.Server{
			Addr:    addr,
			Handler: mux,
		}

		streamableServer := server.NewStreamableHTTPServer(mcpServer,
			server.WithEndpointPath("/mcp"),
			server.WithStateLess(true),
			server.WithStreamableHTTPServer(httpSrv),
		)

		// Manually register the MCP handler — Start() does NOT register
		// when a custom *http.Server is provided via WithStreamableHTTPServer.
		mux.Handle("/mcp", streamableServer)

		logger.Info().
			Int("port", serverConfig.Server.Port).
			Int("allowed_paths", len(serverConfig.AllowedPaths)).
			Msg("starting gosqlmcp server")
		return streamableServer.Start(addr)

	default:
		return fmt.Errorf("unknown transport %q (expected \"stdio\" or \"http\")", transport)
	}
}

func loadServerConfig() (*sqlitemcp.ServerConfig, error) {
	configPath := os.Getenv("GOSQLMCP_CONFIG_PATH")
	if configPath == "" {
		configPath = ".gosqlmcp/config.json"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config sqlitemcp.ServerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// The allow-list can be overridden without editing the config file,
	// e.g. when the same config is reused across environments.
	if paths := os.Getenv("GOSQLMCP_ALLOWED_PATHS"); paths != "" {
		config.AllowedPaths = strings.Split(paths, string(os.PathListSeparator))
	}

	return &config, nil
}

func setupLogger(config sqlitemcp.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(config.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output io.Writer = os.Stderr
	if config.Output == "stdout" {
		output = os.Stdout
	} else if config.Output != "" && config.Output != "stderr" {
		f, err := os.OpenFile(config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			output = f
		}
	}

	if config.Format == "text" {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}
