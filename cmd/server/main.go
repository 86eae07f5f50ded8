package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mmmm144/ai-agent/pkg/agent"
	"github.com/mmmm144/ai-agent/pkg/api"
	"github.com/mmmm144/ai-agent/pkg/api/auth"
	"github.com/mmmm144/ai-agent/pkg/chat"
	"github.com/mmmm144/ai-agent/pkg/config"
	"github.com/mmmm144/ai-agent/pkg/mcp"
	"github.com/mmmm144/ai-agent/pkg/metrics"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	slog.SetDefault(logger)

	cfg := config.Load(logger)

	if cfg.AnthropicAPIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY environment variable not set - agent turns will fail until it is set")
	}

	logger.Info("starting vnstock agent backend",
		slog.String("listen_addr", cfg.ListenAddr),
		slog.String("mcp_server_url", cfg.MCPServerURL),
		slog.String("model", cfg.ClaudeModel))

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start metrics server
	metricsServer := metrics.NewServer(cfg.MetricsAddr, logger)

	go func() {
		metricsErr := metricsServer.Start(ctx)
		if metricsErr != nil {
			logger.ErrorContext(ctx, "metrics server error", slog.String("error", metricsErr.Error()))
		}
	}()

	// Load the remote tool catalog. A failure leaves the agent with just
	// the local datetime tool; the server still starts.
	mcpClient := mcp.NewClient(cfg.MCPServerURL, cfg.MCPTimeout, logger)
	adapters := mcp.LoadCatalog(ctx, mcpClient, logger)

	tools := append(agent.RemoteTools(adapters), agent.NewDatetimeTool())

	claudeClient := agent.NewClient(cfg.AnthropicAPIKey, cfg.ClaudeModel, logger)
	runner := agent.NewRunner(claudeClient, tools, cfg.ClaudeMaxTokens, logger)

	store := chat.NewSessionStore(chat.DefaultAppName)
	orchestrator := chat.NewOrchestrator(runner, store, logger)

	// Build authentication chain from environment variables
	authChain := buildAuthChain(logger)
	if authChain == nil {
		logger.Info("starting chat API without authentication")
	} else {
		logger.Info("starting chat API with authentication enabled")
	}

	server := api.NewServer(orchestrator, cfg.ListenAddr, cfg.CORSOrigins, authChain, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)

	go func() {
		errChan <- server.Start(ctx)
	}()

	// Wait for shutdown signal or error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()

		startErr := <-errChan
		if startErr != nil {
			logger.Error("chat API server shutdown error", slog.String("error", startErr.Error()))
		}

	case startErr := <-errChan:
		if startErr != nil {
			logger.Error("chat API server encountered fatal error", slog.String("error", startErr.Error()))
			cancel()
			os.Exit(1)
		}
	}

	logger.Info("server shutdown complete")
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

// buildAuthChain builds an authentication chain from environment variables.
// Returns nil if no auth methods are configured (auth disabled).
//
//nolint:gocognit // Multiple auth methods require branching logic
func buildAuthChain(logger *slog.Logger) (chain *auth.Chain) {
	var methods []auth.Method

	// 1. Static Bearer Token Auth
	if token := getEnv("CHAT_AUTH_TOKEN", ""); token != "" {
		methods = append(methods, auth.NewStaticTokenAuth(token))
		logger.Info("configured static bearer token authentication")
	}

	// 2. JWT Auth
	if secret := getEnv("CHAT_JWT_SECRET", ""); secret != "" {
		algorithm := getEnv("CHAT_JWT_ALGORITHM", "HS256")
		jwtAuth, err := auth.NewJWTAuth(&auth.JWTConfig{
			Secret:    []byte(secret),
			Algorithm: algorithm,
		})
		if err != nil {
			logger.Warn("failed to configure JWT auth", slog.String("error", err.Error()))
		} else {
			methods = append(methods, jwtAuth)
			logger.Info("configured JWT authentication", slog.String("algorithm", algorithm))
		}
	}

	// 3. API Key Auth
	if apiKeysStr := getEnv("CHAT_API_KEYS", ""); apiKeysStr != "" {
		// Format: "key1:user1,key2:user2"
		keys := make(map[string]string)
		for _, pair := range strings.Split(apiKeysStr, ",") {
			parts := strings.SplitN(strings.TrimSpace(pair), ":", 2)
			if len(parts) == 2 {
				keys[parts[0]] = parts[1]
			}
		}
		if len(keys) > 0 {
			methods = append(methods, auth.NewAPIKeyAuth(keys))
			logger.Info("configured API key authentication", slog.Int("keys_count", len(keys)))
		}
	}

	// 4. OIDC Auth
	if issuerURL := getEnv("CHAT_OIDC_ISSUER_URL", ""); issuerURL != "" {
		audience := getEnv("CHAT_OIDC_AUDIENCE", "")
		allowedGroupsStr := getEnv("CHAT_OIDC_ALLOWED_GROUPS", "")
		skipIssuerVerify := getEnv("CHAT_OIDC_SKIP_ISSUER_VERIFY", "false") == "true"

		var allowedGroups []string
		if allowedGroupsStr != "" {
			allowedGroups = strings.Split(allowedGroupsStr, ",")
			for i := range allowedGroups {
				allowedGroups[i] = strings.TrimSpace(allowedGroups[i])
			}
		}

		oidcAuth := auth.NewOIDCAuth(&auth.OIDCConfig{
			IssuerURL:        issuerURL,
			Audience:         audience,
			AllowedGroups:    allowedGroups,
			SkipIssuerVerify: skipIssuerVerify,
		}, logger)
		methods = append(methods, oidcAuth)
		logger.Info("configured OIDC authentication",
			slog.String("issuer_url", issuerURL),
			slog.String("audience", audience),
			slog.Any("allowed_groups", allowedGroups))
	}

	// Return nil if no methods configured (auth disabled)
	if len(methods) == 0 {
		return chain
	}

	chain = auth.NewChain(methods, logger)
	return chain
}
