package mcptest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmmm144/ai-agent/pkg/mcp"
)

func newTestServer(t *testing.T) (server *httptest.Server) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	mock := NewServer(":0", logger)
	server = httptest.NewServer(mock.Handler())
	t.Cleanup(server.Close)

	return server
}

func newTestClient(t *testing.T, server *httptest.Server) (client *mcp.Client) {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	client = mcp.NewClient(server.URL, 5*time.Second, logger)

	return client
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "mock-vnstock-mcp", body["service"])
}

func TestClientHandshakeAgainstMock(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(t, server)

	id, err := client.Sessions().Ensure(context.Background())

	require.NoError(t, err, "handshake against the mock failed")
	assert.NotEmpty(t, id, "the mock must hand out a session id")
}

func TestCatalogAgainstMock(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(t, server)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	adapters := mcp.LoadCatalog(context.Background(), client, logger)

	require.Len(t, adapters, 8, "the mock declares eight tools")

	names := make([]string, 0, len(adapters))
	for _, adapter := range adapters {
		names = append(names, adapter.Name())
	}

	assert.Contains(t, names, "get_stock_price")
	assert.Contains(t, names, "get_price_board")
	assert.Contains(t, names, "get_market_overview")
	assert.Contains(t, names, "get_gold_price")
	assert.Contains(t, names, "get_exchange_rate")
}

func TestStockPriceRoundTrip(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(t, server)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	adapters := mcp.LoadCatalog(context.Background(), client, logger)

	var priceTool *mcp.ToolAdapter
	for _, adapter := range adapters {
		if adapter.Name() == "get_stock_price" {
			priceTool = adapter
		}
	}

	require.NotNil(t, priceTool, "mock catalog must declare get_stock_price")

	result := priceTool.Invoke(context.Background(), map[string]any{"symbol": "VNM"})

	require.False(t, result.IsError(), "Invoke() failed: %s", result.Error)
	assert.Contains(t, result.Text, "VNM")
	assert.Contains(t, result.Text, "65.40")
}

func TestPriceBoardNormalizationRoundTrip(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(t, server)

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	adapters := mcp.LoadCatalog(context.Background(), client, logger)

	var board *mcp.ToolAdapter
	for _, adapter := range adapters {
		if adapter.Name() == "get_price_board" {
			board = adapter
		}
	}

	require.NotNil(t, board)

	// The mock rejects non-list symbols, so a passing call proves the
	// adapter normalized the scalar and the singular alias on the way out.
	result := board.Invoke(context.Background(), map[string]any{"symbol": "VNM"})

	require.False(t, result.IsError(), "Invoke() failed: %s", result.Error)
	assert.Contains(t, result.Text, "Bảng giá")
	assert.Contains(t, result.Text, "VNM")
}

func TestUnknownToolError(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(t, server)

	desc := mcp.ToolDescriptor{Name: "get_dividends"}
	adapter := mcp.NewToolAdapter(client, desc)

	result := adapter.Invoke(context.Background(), map[string]any{"symbol": "VNM"})

	require.True(t, result.IsError(), "unknown tools must fail")
	assert.Equal(t, "get_dividends", result.Tool)
	assert.Equal(t, -32602, result.Code)
	assert.Contains(t, result.Error, "unknown tool")
}

func TestCallWithoutSessionRejected(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	body := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL+"/mcp", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "calls without a session id are rejected")
}

func TestMarketOverviewRoundTrip(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(t, server)

	adapter := mcp.NewToolAdapter(client, mcp.ToolDescriptor{Name: "get_market_overview"})

	result := adapter.Invoke(context.Background(), map[string]any{})

	require.False(t, result.IsError(), "Invoke() failed: %s", result.Error)
	assert.Contains(t, result.Text, "VN-Index")
	assert.Contains(t, result.Text, "Tổng quan thị trường")
}

func TestGoldPriceRoundTrip(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(t, server)

	adapter := mcp.NewToolAdapter(client, mcp.ToolDescriptor{Name: "get_gold_price"})

	result := adapter.Invoke(context.Background(), map[string]any{})

	require.False(t, result.IsError(), "Invoke() failed: %s", result.Error)
	assert.Contains(t, result.Text, "SJC")
	assert.Contains(t, result.Text, "triệu đồng/lượng")
}

func TestExchangeRateRoundTrip(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(t, server)

	adapter := mcp.NewToolAdapter(client, mcp.ToolDescriptor{Name: "get_exchange_rate"})

	defaulted := adapter.Invoke(context.Background(), map[string]any{})
	require.False(t, defaulted.IsError(), "Invoke() failed: %s", defaulted.Error)
	assert.Contains(t, defaulted.Text, "USD/VND", "no currency argument defaults to USD")

	unknown := adapter.Invoke(context.Background(), map[string]any{"currency": "XYZ"})
	require.False(t, unknown.IsError(), "unknown currencies answer with text, not an error")
	assert.Contains(t, unknown.Text, "Không có dữ liệu tỷ giá")
}
