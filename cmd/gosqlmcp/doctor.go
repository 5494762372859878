package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	sqlitemcp "github.com/rickchristie/sqlite-mcp"
	"github.com/rickchristie/sqlite-mcp/internal/meta"
)

func runDoctor() error {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	configPath := fs.String("config", ".gosqlmcp/config.json", "Path to configuration file")
	fs.Parse(os.Args[2:])

	useColor := isTTY(os.Stderr.Fd())
	return doctor(os.Stderr, useColor, *configPath)
}

func doctor(w io.Writer, useColor bool, configPath string) error {
	printBanner(w, useColor)
	fmt.Fprintf(w, "gosqlmcp %s\n\n", meta.Version)

	// Load and validate config
	config, ok := doctorValidateConfig(w, useColor, configPath)
	if !ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fix the issues above and run 'gosqlmcp doctor' again.")
		return nil
	}

	// Print agent connection snippets
	fmt.Fprintln(w)
	printAgentSnippets(w, useColor, config)
	return nil
}

// doctorValidateConfig loads and validates the config file, printing check results.
// Returns the parsed config and true if all checks passed.
func doctorValidateConfig(w io.Writer, useColor bool, configPath string) (*sqlitemcp.ServerConfig, bool) {
	allPassed := true

	// Check 1: Config file exists and is valid JSON
	data, err := os.ReadFile(configPath)
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Config file readable (%s)", configPath))
		allPassed = false
		return nil, allPassed
	}
	printCheck(w, useColor, true, fmt.Sprintf("Config file readable (%s)", configPath))

	var config sqlitemcp.ServerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Config file is valid JSON: %v", err))
		allPassed = false
		return nil, allPassed
	}
	printCheck(w, useColor, true, "Config file is valid JSON")

	// Check 2: allowed_paths is set and every entry is usable
	if len(config.AllowedPaths) == 0 {
		printCheck(w, useColor, false, "allowed_paths is non-empty")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("allowed_paths is non-empty (%d entries)", len(config.AllowedPaths)))
		for i, p := range config.AllowedPaths {
			if !filepath.IsAbs(p) {
				printCheck(w, useColor, false, fmt.Sprintf("allowed_paths[%d] is absolute (%s)", i, p))
				allPassed = false
				continue
			}
			if _, err := os.Stat(p); err != nil {
				printCheck(w, useColor, false, fmt.Sprintf("allowed_paths[%d] exists (%s)", i, p))
				allPassed = false
				continue
			}
			printCheck(w, useColor, true, fmt.Sprintf("allowed_paths[%d] exists (%s)", i, p))
		}
	}

	// Check 3: server.transport is recognized
	transport := config.Server.Transport
	if transport == "" {
		transport = "stdio"
	}
	switch transport {
	case "stdio", "http":
		printCheck(w, useColor, true, fmt.Sprintf("server.transport is valid (%s)", transport))
	default:
		printCheck(w, useColor, false, fmt.Sprintf("server.transport is valid (%q is not stdio or http)", transport))
		allPassed = false
	}

	// Check 4: server.port > 0 when serving over HTTP
	if transport == "http" {
		if config.Server.Port <= 0 {
			printCheck(w, useColor, false, "server.port is > 0 (required for http transport)")
			allPassed = false
		} else {
			printCheck(w, useColor, true, fmt.Sprintf("server.port is > 0 (%d)", config.Server.Port))
		}
	}

	// Check 5: Health check path set when enabled
	if config.Server.HealthCheckEnabled {
		if config.Server.HealthCheckPath == "" {
			printCheck(w, useColor, false, "health_check_path is set (required when health_check_enabled)")
			allPassed = false
		} else {
			printCheck(w, useColor, true, fmt.Sprintf("health_check_path is set (%s)", config.Server.HealthCheckPath))
		}
	}

	// Check 6: Regex patterns compile
	regexOK := true

	for i, rule := range config.ErrorPrompts {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("error_prompts[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}

	for i, rule := range config.Sanitization {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("sanitization[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}

	for i, rule := range config.Query.TimeoutRules {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("timeout_rules[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}

	if regexOK {
		printCheck(w, useColor, true, "All regex patterns compile")
	}

	return &config, allPassed
}

// printCheck prints a colored ✓ or ✗ check line.
func printCheck(w io.Writer, useColor bool, pass bool, msg string) {
	if pass {
		if useColor {
			fmt.Fprintf(w, "  \033[32m✓\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✓ %s\n", msg)
		}
	} else {
		if useColor {
			fmt.Fprintf(w, "  \033[31m✗\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✗ %s\n", msg)
		}
	}
}

// printAgentSnippets prints MCP connection config snippets for various AI agents.
func printAgentSnippets(w io.Writer, useColor bool, config *sqlitemcp.ServerConfig) {
	heading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "\033[1;36m%s\033[0m\n", title)
		} else {
			fmt.Fprintln(w, title)
		}
	}

	subheading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "  \033[1m%s\033[0m\n", title)
		} else {
			fmt.Fprintf(w, "  %s\n", title)
		}
	}

	heading("Agent Connection Snippets")
	fmt.Fprintln(w)

	if config.Server.Transport == "http" {
		url := fmt.Sprintf("http://localhost:%d/mcp", config.Server.Port)

		// Claude Code
		subheading("Claude Code")
		fmt.Fprintf(w, "  Run this command to add the server:\n\n")
		fmt.Fprintf(w, "    claude mcp add --transport http sqlite %s\n\n", url)
		fmt.Fprintf(w, "  Or add to .mcp.json (project scope):\n\n")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "type": "http",
        "url": "%s"
      }
    }
  }
`, url)
		fmt.Fprintln(w)

		// Copilot CLI
		subheading("Copilot CLI (~/.copilot/mcp-config.json)")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "type": "http",
        "url": "%s"
      }
    }
  }
`, url)
		fmt.Fprintln(w)

		// Gemini CLI
		subheading("Gemini CLI (~/.gemini/settings.json)")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "httpUrl": "%s"
      }
    }
  }
`, url)
		fmt.Fprintln(w)

		// OpenCode
		subheading("OpenCode (opencode.json)")
		fmt.Fprintf(w, `  {
    "mcp": {
      "sqlite": {
        "type": "remote",
        "url": "%s"
      }
    }
  }
`, url)
		fmt.Fprintln(w)

		// Cursor
		subheading("Cursor (.cursor/mcp.json)")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "url": "%s"
      }
    }
  }
`, url)
		fmt.Fprintln(w)

		// Windsurf
		subheading("Windsurf (~/.codeium/windsurf/mcp_config.json)")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "serverUrl": "%s"
      }
    }
  }
`, url)
		return
	}

	// stdio transport: agents launch the binary directly
	// Claude Code
	subheading("Claude Code")
	fmt.Fprintf(w, "  Run this command to add the server:\n\n")
	fmt.Fprintf(w, "    claude mcp add sqlite -- gosqlmcp serve\n\n")
	fmt.Fprintf(w, "  Or add to .mcp.json (project scope):\n\n")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "type": "stdio",
        "command": "gosqlmcp",
        "args": ["serve"]
      }
    }
  }
`)
	fmt.Fprintln(w)

	// Copilot CLI
	subheading("Copilot CLI (~/.copilot/mcp-config.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "type": "local",
        "command": "gosqlmcp",
        "args": ["serve"]
      }
    }
  }
`)
	fmt.Fprintln(w)

	// Gemini CLI
	subheading("Gemini CLI (~/.gemini/settings.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "command": "gosqlmcp",
        "args": ["serve"]
      }
    }
  }
`)
	fmt.Fprintln(w)

	// OpenCode
	subheading("OpenCode (opencode.json)")
	fmt.Fprintf(w, `  {
    "mcp": {
      "sqlite": {
        "type": "local",
        "command": ["gosqlmcp", "serve"]
      }
    }
  }
`)
	fmt.Fprintln(w)

	// Cursor
	subheading("Cursor (.cursor/mcp.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "command": "gosqlmcp",
        "args": ["serve"]
      }
    }
  }
`)
	fmt.Fprintln(w)

	// Windsurf
	subheading("Windsurf (~/.codeium/windsurf/mcp_config.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "sqlite": {
        "command": "gosqlmcp",
        "args": ["serve"]
      }
    }
  }
`)
}
