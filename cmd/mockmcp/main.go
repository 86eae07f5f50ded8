// Command mockmcp runs the in-process vnstock tool server standalone, so
// the backend can be developed against MCP_SERVER_URL=http://localhost:8090
// without the hosted tool server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmmm144/ai-agent/pkg/mcp/mcptest"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	slog.SetDefault(logger)

	addr := os.Getenv("MOCK_MCP_ADDR")
	if addr == "" {
		addr = ":8090"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	}()

	server := mcptest.NewServer(addr, logger)

	err := server.Start(ctx)
	if err != nil {
		logger.Error("mock tool server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("mock tool server shutdown complete")
}
