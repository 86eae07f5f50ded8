package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmmm144/ai-agent/pkg/mcp"
)

func fixedClock() (result time.Time) {
	result = time.Date(2024, 11, 9, 14, 30, 5, 0, time.UTC)
	return result
}

func TestDatetimeToolSnapshot(t *testing.T) {
	t.Parallel()

	tool := &datetimeTool{now: fixedClock}

	payload, isError := tool.Invoke(context.Background(), nil)
	require.False(t, isError, "the clock should always be readable")

	var snapshot DatetimeSnapshot

	err := json.Unmarshal([]byte(payload), &snapshot)
	require.NoError(t, err, "the payload should be JSON")

	assert.Equal(t, "2024-11-09", snapshot.Date, "date format mismatch")
	assert.Equal(t, "14:30:05", snapshot.Time, "time format mismatch")
	assert.Equal(t, "2024-11-09 14:30:05", snapshot.Datetime, "datetime format mismatch")
	assert.Equal(t, "09/11/2024", snapshot.DateVN, "Vietnamese date format mismatch")
	assert.Equal(t, "Saturday", snapshot.DayName, "weekday name mismatch")
	assert.Equal(t, "Thứ Bảy", snapshot.DayNameVN, "Vietnamese weekday mismatch")
	assert.Equal(t, "09 tháng 11 năm 2024", snapshot.FullVN, "long Vietnamese form mismatch")
}

func TestDatetimeToolIdentity(t *testing.T) {
	t.Parallel()

	tool := NewDatetimeTool()

	assert.Equal(t, ToolGetCurrentDatetime, tool.Name(), "tool name mismatch")
	assert.NotEmpty(t, tool.Description(), "the tool should describe itself")

	schema, err := json.Marshal(tool.InputSchema())
	require.NoError(t, err, "the schema should marshal")
	assert.Contains(t, string(schema), `"type":"object"`, "the schema should declare an object")
}

func TestVietnameseWeekdaysComplete(t *testing.T) {
	t.Parallel()

	for day := time.Sunday; day <= time.Saturday; day++ {
		assert.NotEmpty(t, vietnameseWeekdays[day], "weekday %s should have a translation", day)
	}
}

func TestRemoteToolsWrapDescriptors(t *testing.T) {
	t.Parallel()

	descriptors := []mcp.ToolDescriptor{
		{
			Name:        "get_stock_price",
			Description: "Lấy giá cổ phiếu hiện tại",
			InputSchema: mcp.InputSchema{
				Type: "object",
				Properties: map[string]mcp.PropertySchema{
					"symbol": {Type: mcp.SchemaType{"string"}},
				},
				Required: []string{"symbol"},
			},
		},
		{
			Name:        "get_market_overview",
			Description: "Tổng quan thị trường",
			InputSchema: mcp.InputSchema{Type: "object"},
		},
	}

	adapters := make([]*mcp.ToolAdapter, 0, len(descriptors))
	for _, desc := range descriptors {
		adapters = append(adapters, mcp.NewToolAdapter(nil, desc))
	}

	tools := RemoteTools(adapters)
	require.Len(t, tools, 2, "every adapter should be wrapped")

	assert.Equal(t, "get_stock_price", tools[0].Name(), "tool name should come from the descriptor")
	assert.Equal(t, "Lấy giá cổ phiếu hiện tại", tools[0].Description(), "description should come from the descriptor")

	schema, err := json.Marshal(tools[0].InputSchema())
	require.NoError(t, err, "the declared schema should marshal")
	assert.Contains(t, string(schema), `"symbol"`, "the declared parameters should survive")
}
