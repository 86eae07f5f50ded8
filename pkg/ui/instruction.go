package ui

// InstructionType names a client-side rendering action.
type InstructionType string

// Instruction types the web client knows how to render.
const (
	ShowMarketOverview InstructionType = "SHOW_MARKET_OVERVIEW"
	OpenBuyStock       InstructionType = "OPEN_BUY_STOCK"
	OpenStockDetail    InstructionType = "OPEN_STOCK_DETAIL"
	OpenNews           InstructionType = "OPEN_NEWS"
)

// Instruction is one typed rendering instruction. Payload shape depends on
// Type; ShowMarketOverview carries none.
type Instruction struct {
	Type    InstructionType `json:"type"`
	Payload any             `json:"payload,omitempty"`
}

// BuyFlowStep is one step of the client's order-entry flow.
type BuyFlowStep struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// BuyStockPayload opens the order-entry flow for one symbol. CurrentPrice
// stays 0.0 here: the agent already surfaced the real price in reply text
// and the compiler never re-derives it.
type BuyStockPayload struct {
	Symbol       string        `json:"symbol"`
	CurrentPrice float64       `json:"currentPrice"`
	Steps        []BuyFlowStep `json:"steps"`
}

// StockDetailPayload opens the detail panel. Only Symbol is filled by the
// compiler; the richer fields exist for clients fed from other sources.
type StockDetailPayload struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name,omitempty"`
	Description   string  `json:"description,omitempty"`
	Price         float64 `json:"price,omitempty"`
	ChangePercent float64 `json:"changePercent,omitempty"`
}

// NewsItem is one rendered headline.
type NewsItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	TimeAgo   string `json:"timeAgo"`
	Sentiment string `json:"sentiment"`
}

// NewsPayload opens the news panel.
type NewsPayload struct {
	Symbol string     `json:"symbol,omitempty"`
	Items  []NewsItem `json:"items"`
}

// buyFlowSteps is the fixed three-step order-entry flow.
func buyFlowSteps() (result []BuyFlowStep) {
	result = []BuyFlowStep{
		{ID: "choose_volume", Title: "Chọn khối lượng"},
		{ID: "choose_price", Title: "Chọn giá đặt lệnh"},
		{ID: "confirm", Title: "Xác nhận lệnh"},
	}

	return result
}
