package ui

import (
	"fmt"
	"strings"
)

// maxSuggestions caps the follow-up list per turn.
const maxSuggestions = 3

// Suggestion is one tappable follow-up. Action is either "help",
// "query:<text to send>" or "buy:<symbol>".
type Suggestion struct {
	Text   string `json:"text"`
	Action string `json:"action"`
	Icon   string `json:"icon"`
}

// GenerateSuggestions derives the follow-up list for one turn. Checks run
// in a fixed order and filling stops at the cap, so earlier rules win the
// slots. The buy rule runs before the financial-report rule: a price answer
// about a single symbol should always leave room for "Mua <symbol>".
func GenerateSuggestions(reply string, query string, intent Intent) (result []Suggestion) {
	result = make([]Suggestion, 0, maxSuggestions)

	replyLower := strings.ToLower(reply)
	queryLower := strings.ToLower(query)
	symbols := ExtractSymbols(query)

	if containsAny(replyLower, []string{"giá hiện tại", "giá hôm nay", "current price"}) {
		result = append(result, Suggestion{
			Text:   "Xem lịch sử giá 1 tháng qua",
			Action: "query:lịch sử giá",
			Icon:   "📊",
		})
	}

	if len(result) < maxSuggestions && len(symbols) == 1 && intent == IntentPriceQuery {
		result = append(result, Suggestion{
			Text:   fmt.Sprintf("So sánh %s với mã khác", symbols[0]),
			Action: fmt.Sprintf("query:so sánh %s", symbols[0]),
			Icon:   "🔍",
		})
	}

	if len(result) < maxSuggestions &&
		containsAny(replyLower, []string{"giá", "price"}) &&
		!strings.Contains(queryLower, "mua") &&
		len(symbols) == 1 {
		result = append(result, Suggestion{
			Text:   fmt.Sprintf("Mua %s", symbols[0]),
			Action: fmt.Sprintf("buy:%s", symbols[0]),
			Icon:   "💰",
		})
	}

	if len(result) < maxSuggestions && intent == IntentPriceQuery && len(symbols) > 0 {
		result = append(result, Suggestion{
			Text:   "Xem báo cáo tài chính",
			Action: "query:báo cáo tài chính",
			Icon:   "📈",
		})
	}

	if len(result) < maxSuggestions && len(symbols) == 1 && intent != IntentMarketOverview {
		result = append(result, Suggestion{
			Text:   "Xem tổng quan thị trường",
			Action: "query:tổng quan thị trường",
			Icon:   "🌐",
		})
	}

	if len(result) < maxSuggestions && intent == IntentStockDetail && len(symbols) > 0 {
		result = append(result, Suggestion{
			Text:   fmt.Sprintf("Xem tin tức %s", symbols[0]),
			Action: fmt.Sprintf("query:tin tức %s", symbols[0]),
			Icon:   "📰",
		})
	}

	if len(result) == 0 {
		result = append(result, Suggestion{
			Text:   "Tôi có thể hỏi gì khác?",
			Action: "help",
			Icon:   "❓",
		})
	}

	return result
}

// DefaultSuggestions is the context-free list shown before any turn.
func DefaultSuggestions() (result []Suggestion) {
	result = []Suggestion{
		{
			Text:   "Xem tổng quan thị trường",
			Action: "query:tổng quan thị trường",
			Icon:   "🌐",
		},
		{
			Text:   "Giá cổ phiếu VCB hôm nay?",
			Action: "query:Giá VCB hôm nay",
			Icon:   "💹",
		},
		{
			Text:   "Tìm hiểu thêm",
			Action: "help",
			Icon:   "❓",
		},
	}

	return result
}
