package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestionTexts(suggestions []Suggestion) (result []string) {
	result = make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		result = append(result, s.Text)
	}

	return result
}

func TestGenerateSuggestionsPriceTurn(t *testing.T) {
	t.Parallel()

	reply := "Giá hiện tại của VNM là 50.0"
	query := "Giá VNM hôm nay?"

	suggestions := GenerateSuggestions(reply, query, IntentPriceQuery)

	require.LessOrEqual(t, len(suggestions), 3, "the cap is three")

	texts := suggestionTexts(suggestions)
	assert.Contains(t, texts, "Xem lịch sử giá 1 tháng qua", "current-price phrasing suggests history")
	assert.Contains(t, texts, "Mua VNM", "a price answer without a buy query suggests buying")
	assert.Contains(t, texts, "So sánh VNM với mã khác")
}

func TestGenerateSuggestionsActionsAndIcons(t *testing.T) {
	t.Parallel()

	suggestions := GenerateSuggestions("Giá hiện tại của VNM là 50.0", "Giá VNM hôm nay?", IntentPriceQuery)

	require.Len(t, suggestions, 3)

	assert.Equal(t, "query:lịch sử giá", suggestions[0].Action)
	assert.Equal(t, "📊", suggestions[0].Icon)
	assert.Equal(t, "query:so sánh VNM", suggestions[1].Action)
	assert.Equal(t, "🔍", suggestions[1].Icon)
	assert.Equal(t, "buy:VNM", suggestions[2].Action)
	assert.Equal(t, "💰", suggestions[2].Icon)
}

func TestGenerateSuggestionsCapEvictsLaterRules(t *testing.T) {
	t.Parallel()

	suggestions := GenerateSuggestions("Giá hiện tại của VNM là 50.0", "Giá VNM hôm nay?", IntentPriceQuery)

	require.Len(t, suggestions, 3)
	assert.NotContains(t, suggestionTexts(suggestions), "Xem báo cáo tài chính",
		"the financial-report rule loses its slot once the cap is reached")
}

func TestGenerateSuggestionsBuyRequiresSingleSymbol(t *testing.T) {
	t.Parallel()

	suggestions := GenerateSuggestions("Giá VNM là 65.4, giá FPT là 123.5", "so sánh giá VNM và FPT", IntentPriceQuery)

	assert.NotContains(t, suggestionTexts(suggestions), "Mua VNM",
		"two symbols in the query suppress the buy suggestion")
}

func TestGenerateSuggestionsBuySkippedWhenQueryBuys(t *testing.T) {
	t.Parallel()

	suggestions := GenerateSuggestions("Giá MWG là 52.3", "mua MWG giá bao nhiêu", IntentBuyStock)

	for _, s := range suggestions {
		assert.NotEqual(t, "buy:MWG", s.Action, "an explicit buy query gets no buy suggestion")
	}
}

func TestGenerateSuggestionsStockDetail(t *testing.T) {
	t.Parallel()

	suggestions := GenerateSuggestions(
		"FPT là công ty công nghệ hàng đầu Việt Nam.",
		"Thông tin chi tiết FPT",
		IntentStockDetail,
	)

	texts := suggestionTexts(suggestions)
	assert.Contains(t, texts, "Xem tổng quan thị trường")
	assert.Contains(t, texts, "Xem tin tức FPT")
}

func TestGenerateSuggestionsMarketIntentSkipsOverview(t *testing.T) {
	t.Parallel()

	suggestions := GenerateSuggestions("VN-Index đang tăng.", "tổng quan VNM", IntentMarketOverview)

	assert.NotContains(t, suggestionTexts(suggestions), "Xem tổng quan thị trường",
		"no overview suggestion while already looking at the overview")
}

func TestGenerateSuggestionsFallbackHelp(t *testing.T) {
	t.Parallel()

	suggestions := GenerateSuggestions("Xin chào! Tôi có thể giúp gì cho bạn?", "xin chào", IntentNone)

	require.Len(t, suggestions, 1)
	assert.Equal(t, "Tôi có thể hỏi gì khác?", suggestions[0].Text)
	assert.Equal(t, "help", suggestions[0].Action)
	assert.Equal(t, "❓", suggestions[0].Icon)
}

func TestGenerateSuggestionsFinancialReportWhenRoomRemains(t *testing.T) {
	t.Parallel()

	// No current-price phrasing and no price keyword in the reply leaves
	// slots for the report and overview rules.
	suggestions := GenerateSuggestions("VNM đóng cửa ở mức 65.4 nghìn.", "VNM price?", IntentPriceQuery)

	texts := suggestionTexts(suggestions)
	assert.Contains(t, texts, "So sánh VNM với mã khác")
	assert.Contains(t, texts, "Xem báo cáo tài chính")
	assert.Contains(t, texts, "Xem tổng quan thị trường")
}

func TestDefaultSuggestions(t *testing.T) {
	t.Parallel()

	suggestions := DefaultSuggestions()

	require.Len(t, suggestions, 3)
	assert.Equal(t, "Xem tổng quan thị trường", suggestions[0].Text)
	assert.Equal(t, "query:tổng quan thị trường", suggestions[0].Action)
	assert.Equal(t, "Giá cổ phiếu VCB hôm nay?", suggestions[1].Text)
	assert.Equal(t, "query:Giá VCB hôm nay", suggestions[1].Action)
	assert.Equal(t, "help", suggestions[2].Action)
}
