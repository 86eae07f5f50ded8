package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither an environment variable nor a config file
// value is present.
const (
	DefaultMCPServerURL = "https://mcp-server-vietnam-stock-trading.onrender.com"
	DefaultMCPTimeout   = 30 * time.Second
	DefaultListenAddr   = ":8002"
	DefaultMetricsAddr  = ":9090"
	DefaultConfigFile   = "configs/config.yaml"
	DefaultClaudeModel  = "claude-sonnet-4-5-20250929"
)

// Settings holds everything the server needs at startup. Each field resolves
// as environment variable > config file value > hardcoded default.
type Settings struct {
	ListenAddr      string
	MetricsAddr     string
	CORSOrigins     []string
	MCPServerURL    string
	MCPTimeout      time.Duration
	AnthropicAPIKey string
	ClaudeModel     string
	ClaudeMaxTokens int
}

// fileConfig mirrors configs/config.yaml.
type fileConfig struct {
	Server struct {
		Listen      string   `yaml:"listen"`
		MetricsAddr string   `yaml:"metrics_addr"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	MCPServer struct {
		URL     string  `yaml:"url"`
		Timeout float64 `yaml:"timeout"` // seconds
	} `yaml:"mcp_server"`
	Agent struct {
		Model     string `yaml:"model"`
		MaxTokens int    `yaml:"max_tokens"`
	} `yaml:"agent"`
}

// Load resolves the full settings set. A missing or unreadable config file
// is not fatal: the file layer is skipped with a warning and resolution
// falls through to defaults.
func Load(logger *slog.Logger) (result Settings) {
	path := getEnv("CONFIG_FILE", DefaultConfigFile)
	fc := loadFile(path, logger)

	result = Settings{
		ListenAddr:      getEnv("LISTEN_ADDR", fallback(fc.Server.Listen, DefaultListenAddr)),
		MetricsAddr:     getEnv("METRICS_ADDR", fallback(fc.Server.MetricsAddr, DefaultMetricsAddr)),
		CORSOrigins:     fc.Server.CORSOrigins,
		MCPServerURL:    getEnv("MCP_SERVER_URL", fallback(fc.MCPServer.URL, DefaultMCPServerURL)),
		MCPTimeout:      resolveTimeout(fc.MCPServer.Timeout, logger),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		ClaudeModel:     getEnv("CLAUDE_MODEL", fallback(fc.Agent.Model, DefaultClaudeModel)),
		ClaudeMaxTokens: resolveMaxTokens(fc.Agent.MaxTokens, logger),
	}

	if len(result.CORSOrigins) == 0 {
		result.CORSOrigins = []string{"*"}
	}

	return result
}

// loadFile reads the YAML config file. Returns the zero value when the file
// is absent or malformed so env/default resolution still applies.
func loadFile(path string, logger *slog.Logger) (result fileConfig) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read config file",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}

		return result
	}

	err = yaml.Unmarshal(data, &result)
	if err != nil {
		logger.Warn("failed to parse config file, ignoring it",
			slog.String("path", path),
			slog.String("error", err.Error()))
		result = fileConfig{}

		return result
	}

	return result
}

// resolveTimeout resolves the MCP call timeout. MCP_TIMEOUT accepts a Go
// duration ("30s", "1m") or bare seconds ("30", "30.5"); the file layer is
// always bare seconds.
func resolveTimeout(fileSeconds float64, logger *slog.Logger) (result time.Duration) {
	raw := os.Getenv("MCP_TIMEOUT")
	if raw != "" {
		parsed, err := parseTimeout(raw)
		if err != nil {
			logger.Warn("invalid MCP_TIMEOUT value, falling back",
				slog.String("value", raw),
				slog.String("error", err.Error()))
		} else {
			result = parsed
			return result
		}
	}

	if fileSeconds > 0 {
		result = time.Duration(fileSeconds * float64(time.Second))
		return result
	}

	result = DefaultMCPTimeout
	return result
}

// resolveMaxTokens resolves the per-response token cap. CLAUDE_MAX_TOKENS
// overrides the file value; 0 means the agent client's built-in default.
func resolveMaxTokens(fileValue int, logger *slog.Logger) (result int) {
	raw := os.Getenv("CLAUDE_MAX_TOKENS")
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			logger.Warn("invalid CLAUDE_MAX_TOKENS value, falling back",
				slog.String("value", raw))
		} else {
			result = parsed
			return result
		}
	}

	result = fileValue
	return result
}

// parseTimeout parses a duration string or a bare seconds number.
func parseTimeout(raw string) (result time.Duration, err error) {
	result, err = time.ParseDuration(raw)
	if err == nil {
		if result <= 0 {
			err = fmt.Errorf("timeout must be positive, got %s", result)
			return 0, err
		}

		return result, err
	}

	seconds, numErr := strconv.ParseFloat(raw, 64)
	if numErr != nil || seconds <= 0 {
		err = fmt.Errorf("not a duration or positive seconds value: %q", raw)
		return 0, err
	}

	result = time.Duration(seconds * float64(time.Second))
	return result, nil
}

// getEnv retrieves an environment variable with a default value.
func getEnv(key string, defaultValue string) (result string) {
	value := os.Getenv(key)
	if value == "" {
		result = defaultValue
		return result
	}

	result = value
	return result
}

// fallback returns fileValue unless it is empty.
func fallback(fileValue string, defaultValue string) (result string) {
	if fileValue == "" {
		result = defaultValue
		return result
	}

	result = fileValue
	return result
}
