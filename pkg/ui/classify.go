// Package ui turns an agent's free-text reply into typed rendering
// instructions and follow-up suggestions. Everything here is a pure
// function of the reply and query strings: no model call, no remote call,
// no added latency on the response path.
package ui

import (
	"regexp"
	"strings"
)

// Intent is the coarse category of what the user asked for.
type Intent string

// Intents, checked in order against the query; first match wins.
const (
	IntentNone           Intent = ""
	IntentMarketOverview Intent = "market_overview"
	IntentBuyStock       Intent = "buy_stock"
	IntentStockDetail    Intent = "stock_detail"
	IntentPriceQuery     Intent = "price_query"
)

// symbolPattern matches a stock-symbol-shaped token: 3 or 4 consecutive
// uppercase letters on word boundaries. VN-Index and VNINDEX do not match.
//
//nolint:gochecknoglobals // Compiled once; regexes are read-only.
var symbolPattern = regexp.MustCompile(`\b([A-Z]{3,4})\b`)

// ExtractSymbol returns the first symbol-shaped token in text, or "".
func ExtractSymbol(text string) (result string) {
	match := symbolPattern.FindString(text)
	result = match
	return result
}

// ExtractSymbols returns every symbol-shaped token in text, in order.
func ExtractSymbols(text string) (result []string) {
	result = symbolPattern.FindAllString(text, -1)
	return result
}

// containsAny reports whether text contains any of the keywords. text must
// already be lowercased.
func containsAny(text string, keywords []string) (result bool) {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			result = true
			return result
		}
	}

	return result
}

// ExtractIntent derives the intent from the query alone; the reply never
// changes what the user asked for.
func ExtractIntent(query string) (result Intent) {
	queryLower := strings.ToLower(query)

	switch {
	case containsAny(queryLower, []string{"tổng quan", "market overview", "vnindex"}):
		result = IntentMarketOverview

	case containsAny(queryLower, []string{"mua", "buy", "đặt lệnh"}):
		result = IntentBuyStock

	case containsAny(queryLower, []string{"chi tiết", "detail", "thông tin chi tiết"}):
		result = IntentStockDetail

	case containsAny(queryLower, []string{"giá", "price"}):
		result = IntentPriceQuery

	default:
		result = IntentNone
	}

	return result
}

// ParseEffects derives the rendering instructions for one turn. The
// triggers are independent: several can fire on the same turn.
func ParseEffects(reply string, query string) (result []Instruction) {
	result = make([]Instruction, 0, 2)

	replyLower := strings.ToLower(reply)
	queryLower := strings.ToLower(query)

	marketKeywords := []string{"tổng quan", "market overview", "thị trường chung", "vnindex"}
	if containsAny(queryLower, marketKeywords) || containsAny(replyLower, marketKeywords) {
		result = append(result, Instruction{Type: ShowMarketOverview})
	}

	buyKeywords := []string{"mua", "buy", "đặt lệnh", "order"}
	if containsAny(queryLower, buyKeywords) {
		// The reply usually names the symbol the user meant; fall back to
		// the query when it does not.
		symbol := ExtractSymbol(reply)
		if symbol == "" {
			symbol = ExtractSymbol(query)
		}

		if symbol != "" {
			result = append(result, Instruction{
				Type: OpenBuyStock,
				Payload: BuyStockPayload{
					Symbol:       symbol,
					CurrentPrice: 0.0,
					Steps:        buyFlowSteps(),
				},
			})
		}
	}

	detailKeywords := []string{"chi tiết", "detail", "thông tin", "báo cáo", "phân tích"}
	if symbol := ExtractSymbol(query); symbol != "" && containsAny(queryLower, detailKeywords) {
		result = append(result, Instruction{
			Type:    OpenStockDetail,
			Payload: StockDetailPayload{Symbol: symbol},
		})
	}

	return result
}

// Classify runs the whole pipeline for one turn: intent, rendering
// instructions, and follow-up suggestions.
func Classify(reply string, query string) (intent Intent, effects []Instruction, suggestions []Suggestion) {
	intent = ExtractIntent(query)
	effects = ParseEffects(reply, query)
	suggestions = GenerateSuggestions(reply, query, intent)

	return intent, effects, suggestions
}
