// Package mcptest provides an in-process stand-in for the remote vnstock
// tool server. It speaks the same streamable-http dialect the production
// client expects: initialize hands out a session id in the mcp-session-id
// header, responses come back SSE-framed, and tools/call serves canned
// Vietnamese market data. It backs cmd/mockmcp for local development and
// the integration tests.
package mcptest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmmm144/ai-agent/pkg/mcp"
)

// Server is the mock tool server.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	sessions   map[string]time.Time
	sessionsMu sync.RWMutex
}

// NewServer creates a mock server listening on addr.
func NewServer(addr string, logger *slog.Logger) (result *Server) {
	result = &Server{
		logger:   logger,
		sessions: make(map[string]time.Time),
	}

	result.httpServer = &http.Server{
		Addr:              addr,
		Handler:           result.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return result
}

// Handler returns the RPC handler, for mounting on an httptest server.
func (s *Server) Handler() (result http.Handler) {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", s.handleRPC)
	mux.HandleFunc("/health", s.handleHealth)

	result = mux
	return result
}

// Start runs the server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) (err error) {
	s.logger.InfoContext(ctx, "starting mock tool server", slog.String("addr", s.httpServer.Addr))

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	err = nil
	return err
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]any{
		"status":  "healthy",
		"service": "mock-vnstock-mcp",
	}

	encoder := json.NewEncoder(w)
	_ = encoder.Encode(response)
}

// handleRPC handles one JSON-RPC request on the streamable-http transport.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request mcp.Request

	decoder := json.NewDecoder(r.Body)
	err := decoder.Decode(&request)
	if err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	s.logger.Info("received RPC request",
		slog.String("method", request.Method),
		slog.Int("id", request.ID))

	switch request.Method {
	case "initialize":
		s.handleInitialize(w, request)

	case "notifications/initialized":
		w.WriteHeader(http.StatusAccepted)

	case "tools/list":
		if !s.requireSession(w, r) {
			return
		}

		s.writeResult(w, request.ID, map[string]any{"tools": toolCatalog()})

	case "tools/call":
		if !s.requireSession(w, r) {
			return
		}

		s.handleToolCall(w, request)

	default:
		s.writeError(w, request.ID, -32601, fmt.Sprintf("unknown method: %s", request.Method))
	}
}

// handleInitialize mints a session and hands its id back in the header.
func (s *Server) handleInitialize(w http.ResponseWriter, request mcp.Request) {
	sessionID := uuid.New().String()

	s.sessionsMu.Lock()
	s.sessions[sessionID] = time.Now()
	s.sessionsMu.Unlock()

	s.logger.Info("new session created", slog.String("session_id", sessionID))

	w.Header().Set(mcp.SessionHeader, sessionID)

	s.writeResult(w, request.ID, map[string]any{
		"protocolVersion": mcp.ProtocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "mock-vnstock-mcp",
			"version": "0.1.0",
		},
	})
}

// requireSession rejects requests that do not carry a known session id.
func (s *Server) requireSession(w http.ResponseWriter, r *http.Request) (ok bool) {
	sessionID := r.Header.Get(mcp.SessionHeader)
	if sessionID == "" {
		http.Error(w, "Bad Request: no session id", http.StatusBadRequest)
		return ok
	}

	s.sessionsMu.RLock()
	_, exists := s.sessions[sessionID]
	s.sessionsMu.RUnlock()

	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return ok
	}

	ok = true
	return ok
}

// handleToolCall dispatches a tools/call request to the canned data.
func (s *Server) handleToolCall(w http.ResponseWriter, request mcp.Request) {
	var params mcp.ToolCallParams

	paramsJSON, _ := json.Marshal(request.Params)
	err := json.Unmarshal(paramsJSON, &params)
	if err != nil {
		s.writeError(w, request.ID, -32602, fmt.Sprintf("invalid params: %v", err))
		return
	}

	s.logger.Info("executing tool", slog.String("tool", params.Name))

	text, err := s.executeTool(params)
	if err != nil {
		s.writeError(w, request.ID, -32602, err.Error())
		return
	}

	s.writeResult(w, request.ID, map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	})
}

// executeTool serves canned data for one tool by name.
func (s *Server) executeTool(params mcp.ToolCallParams) (result string, err error) {
	switch params.Name {
	case "get_stock_price":
		result, err = executeStockPrice(params.Arguments)

	case "get_price_board":
		result, err = executePriceBoard(params.Arguments)

	case "get_historical_data":
		result, err = executeHistoricalData(params.Arguments)

	case "get_market_overview":
		result, err = executeMarketOverview()

	case "get_stock_news":
		result, err = executeStockNews(params.Arguments)

	case "get_company_info":
		result, err = executeCompanyInfo(params.Arguments)

	case "get_gold_price":
		result, err = executeGoldPrice()

	case "get_exchange_rate":
		result, err = executeExchangeRate(params.Arguments)

	default:
		err = fmt.Errorf("unknown tool: %s", params.Name)
	}

	return result, err
}

// writeResult writes an SSE-framed success envelope.
func (s *Server) writeResult(w http.ResponseWriter, id int, result any) {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, id, -32603, fmt.Sprintf("encoding result: %v", err))
		return
	}

	envelope := mcp.Envelope{
		JSONRPC: "2.0",
		ID:      id,
		Result:  resultJSON,
	}

	s.writeEnvelope(w, envelope)
}

// writeError writes an SSE-framed error envelope.
func (s *Server) writeError(w http.ResponseWriter, id int, code int, message string) {
	envelope := mcp.Envelope{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &mcp.RPCError{Code: code, Message: message},
	}

	s.writeEnvelope(w, envelope)
}

func (s *Server) writeEnvelope(w http.ResponseWriter, envelope mcp.Envelope) {
	body, err := json.Marshal(envelope)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "event: message\ndata: %s\n\n", body)
}

// quotes are the canned board: symbol to price in thousand VND and session
// change in percent.
//
//nolint:gochecknoglobals // Fixture data shared by every handler.
var quotes = map[string]struct {
	Name    string
	Price   float64
	Percent float64
}{
	"VNM": {Name: "Vinamilk", Price: 65.4, Percent: 1.2},
	"VCB": {Name: "Vietcombank", Price: 93.2, Percent: -0.4},
	"FPT": {Name: "FPT Corporation", Price: 123.5, Percent: 2.1},
	"HPG": {Name: "Hoa Phat Group", Price: 28.7, Percent: 0.9},
	"MWG": {Name: "Mobile World Group", Price: 52.3, Percent: -1.1},
	"ACB": {Name: "Asia Commercial Bank", Price: 24.15, Percent: 0.3},
	"VIC": {Name: "Vingroup", Price: 42.1, Percent: 1.8},
}

func executeStockPrice(args map[string]any) (result string, err error) {
	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		err = fmt.Errorf("symbol is required")
		return result, err
	}

	symbol = strings.ToUpper(symbol)

	quote, known := quotes[symbol]
	if !known {
		result = fmt.Sprintf("Không tìm thấy dữ liệu cho mã %s", symbol)
		return result, err
	}

	result = fmt.Sprintf("Giá cổ phiếu %s (%s): %.2f nghìn VND (%+.1f%%)",
		symbol, quote.Name, quote.Price, quote.Percent)

	return result, err
}

func executePriceBoard(args map[string]any) (result string, err error) {
	// The production server requires a list here; keeping the mock strict
	// makes argument-normalization regressions visible end to end.
	symbols, ok := args["symbols"].([]any)
	if !ok {
		err = fmt.Errorf("symbols must be a list")
		return result, err
	}

	if len(symbols) == 0 {
		err = fmt.Errorf("symbols must not be empty")
		return result, err
	}

	lines := make([]string, 0, len(symbols)+1)
	lines = append(lines, "Bảng giá:")

	for _, entry := range symbols {
		symbol := strings.ToUpper(fmt.Sprint(entry))

		quote, known := quotes[symbol]
		if !known {
			lines = append(lines, fmt.Sprintf("%s: không có dữ liệu", symbol))
			continue
		}

		lines = append(lines, fmt.Sprintf("%s: %.2f (%+.1f%%)", symbol, quote.Price, quote.Percent))
	}

	result = strings.Join(lines, "\n")
	return result, err
}

func executeHistoricalData(args map[string]any) (result string, err error) {
	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		err = fmt.Errorf("symbol is required")
		return result, err
	}

	symbol = strings.ToUpper(symbol)

	quote, known := quotes[symbol]
	if !known {
		result = fmt.Sprintf("Không tìm thấy dữ liệu lịch sử cho mã %s", symbol)
		return result, err
	}

	period, _ := args["period"].(string)
	if period == "" {
		period = "1M"
	}

	// A deterministic walk around the quoted price stands in for real OHLC
	// rows.
	lines := []string{fmt.Sprintf("Lịch sử giá %s (%s):", symbol, period)}
	offsets := []float64{-2.1, -1.4, -0.6, 0.2, 0.8, 0.0}

	for day, offset := range offsets {
		lines = append(lines, fmt.Sprintf("T-%d: %.2f", len(offsets)-day, quote.Price+offset))
	}

	result = strings.Join(lines, "\n")
	return result, err
}

func executeMarketOverview() (result string, err error) {
	symbols := make([]string, 0, len(quotes))
	for symbol := range quotes {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	lines := []string{
		"Tổng quan thị trường:",
		"VN-Index: 1280.51 (+0.65%)",
		"HNX-Index: 245.30 (+0.21%)",
		"Thanh khoản: 18,450 tỷ VND",
	}

	for _, symbol := range symbols {
		quote := quotes[symbol]
		lines = append(lines, fmt.Sprintf("%s: %.2f (%+.1f%%)", symbol, quote.Price, quote.Percent))
	}

	result = strings.Join(lines, "\n")
	return result, err
}

func executeStockNews(args map[string]any) (result string, err error) {
	symbol, _ := args["symbol"].(string)
	symbol = strings.ToUpper(symbol)

	if symbol == "" {
		result = "Tin tức thị trường: Khối ngoại mua ròng phiên thứ ba liên tiếp."
		return result, err
	}

	result = fmt.Sprintf("Tin tức %s:\n1. %s công bố kết quả kinh doanh quý gần nhất.\n2. Khối lượng giao dịch %s tăng so với trung bình 20 phiên.",
		symbol, symbol, symbol)

	return result, err
}

func executeCompanyInfo(args map[string]any) (result string, err error) {
	symbol, ok := args["symbol"].(string)
	if !ok || symbol == "" {
		err = fmt.Errorf("symbol is required")
		return result, err
	}

	symbol = strings.ToUpper(symbol)

	quote, known := quotes[symbol]
	if !known {
		result = fmt.Sprintf("Không tìm thấy thông tin doanh nghiệp cho mã %s", symbol)
		return result, err
	}

	result = fmt.Sprintf("%s - %s. Giá hiện tại: %.2f nghìn VND. Biến động phiên: %+.1f%%.",
		symbol, quote.Name, quote.Price, quote.Percent)

	return result, err
}

func executeGoldPrice() (result string, err error) {
	lines := []string{
		"Giá vàng trong nước:",
		"SJC: mua 118.50 - bán 120.50 triệu đồng/lượng",
		"DOJI: mua 118.30 - bán 120.30 triệu đồng/lượng",
		"Nhẫn trơn 9999: mua 116.80 - bán 118.60 triệu đồng/lượng",
	}

	result = strings.Join(lines, "\n")
	return result, err
}

// rates are canned mid-market VND rates per one unit of foreign currency.
//
//nolint:gochecknoglobals // Fixture data shared by every handler.
var rates = map[string]float64{
	"USD": 26150,
	"EUR": 28400,
	"JPY": 175.2,
	"CNY": 3610,
}

func executeExchangeRate(args map[string]any) (result string, err error) {
	currency, _ := args["currency"].(string)
	if currency == "" {
		currency = "USD"
	}

	currency = strings.ToUpper(currency)

	rate, known := rates[currency]
	if !known {
		result = fmt.Sprintf("Không có dữ liệu tỷ giá cho %s", currency)
		return result, err
	}

	result = fmt.Sprintf("Tỷ giá %s/VND: %.2f", currency, rate)
	return result, err
}

// toolCatalog is the declared tool surface of the mock server.
func toolCatalog() (result []mcp.ToolDescriptor) {
	stringItems := json.RawMessage(`{"type":"string"}`)

	result = []mcp.ToolDescriptor{
		{
			Name:        "get_stock_price",
			Description: "Get the current price for one Vietnamese stock symbol",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.PropertySchema{
					"symbol": {Type: mcp.SchemaType{"string"}, Description: "Stock symbol, e.g. VNM"},
				},
				Required: []string{"symbol"},
			},
		},
		{
			Name:        "get_price_board",
			Description: "Get the price board snapshot for a list of symbols",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.PropertySchema{
					"symbols": {Type: mcp.SchemaType{"array"}, Description: "Stock symbols", Items: stringItems},
				},
				Required: []string{"symbols"},
			},
		},
		{
			Name:        "get_historical_data",
			Description: "Get historical prices for one symbol",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.PropertySchema{
					"symbol": {Type: mcp.SchemaType{"string"}, Description: "Stock symbol"},
					"period": {Type: mcp.SchemaType{"string"}, Description: "Window, e.g. 1M or 3M", Default: "1M"},
				},
				Required: []string{"symbol"},
			},
		},
		{
			Name:        "get_market_overview",
			Description: "Get the VN-Index snapshot and market breadth",
			InputSchema: mcp.InputSchema{
				Type:       "object",
				Properties: map[string]mcp.PropertySchema{},
			},
		},
		{
			Name:        "get_stock_news",
			Description: "Get recent news for one symbol or the whole market",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.PropertySchema{
					"symbol": {Type: mcp.SchemaType{"string"}, Description: "Stock symbol, optional"},
					"limit":  {Type: mcp.SchemaType{"integer"}, Description: "Maximum items", Default: 5},
				},
			},
		},
		{
			Name:        "get_company_info",
			Description: "Get company fundamentals for one symbol",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.PropertySchema{
					"symbol": {Type: mcp.SchemaType{"string"}, Description: "Stock symbol"},
				},
				Required: []string{"symbol"},
			},
		},
		{
			Name:        "get_gold_price",
			Description: "Get current domestic gold prices",
			InputSchema: mcp.InputSchema{
				Type:       "object",
				Properties: map[string]mcp.PropertySchema{},
			},
		},
		{
			Name:        "get_exchange_rate",
			Description: "Get the VND exchange rate for one currency",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.PropertySchema{
					"currency": {Type: mcp.SchemaType{"string"}, Description: "ISO currency code, e.g. USD", Default: "USD"},
				},
			},
		},
	}

	return result
}
