package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmmm144/ai-agent/pkg/mcp"
)

// ToolGetCurrentDatetime is the one tool served locally; everything else
// comes from the remote catalog.
const ToolGetCurrentDatetime = "get_current_datetime"

// Tool is one capability the model may invoke during a turn. Invoke never
// returns an error: failures are rendered into the payload and flagged, so
// the model can read them and recover.
type Tool interface {
	Name() string
	Description() string
	InputSchema() any
	Invoke(ctx context.Context, args map[string]any) (payload string, isError bool)
}

// remoteTool exposes one MCP catalog entry as a model-facing tool.
type remoteTool struct {
	adapter *mcp.ToolAdapter
}

func (t *remoteTool) Name() (result string) {
	result = t.adapter.Name()
	return result
}

func (t *remoteTool) Description() (result string) {
	result = t.adapter.Description()
	return result
}

func (t *remoteTool) InputSchema() (result any) {
	result = t.adapter.Descriptor().InputSchema
	return result
}

func (t *remoteTool) Invoke(ctx context.Context, args map[string]any) (payload string, isError bool) {
	res := t.adapter.Invoke(ctx, args)

	payload = res.Payload()
	isError = res.IsError()

	return payload, isError
}

// RemoteTools wraps a fetched tool catalog for the agent loop.
func RemoteTools(adapters []*mcp.ToolAdapter) (result []Tool) {
	result = make([]Tool, 0, len(adapters))

	for _, adapter := range adapters {
		result = append(result, &remoteTool{adapter: adapter})
	}

	return result
}

// vietnameseWeekdays translates Go weekday names for the datetime tool.
//
//nolint:gochecknoglobals // Static lookup table
var vietnameseWeekdays = map[time.Weekday]string{
	time.Monday:    "Thứ Hai",
	time.Tuesday:   "Thứ Ba",
	time.Wednesday: "Thứ Tư",
	time.Thursday:  "Thứ Năm",
	time.Friday:    "Thứ Sáu",
	time.Saturday:  "Thứ Bảy",
	time.Sunday:    "Chủ Nhật",
}

// DatetimeSnapshot is the datetime tool's payload: the current moment in
// every format the model is expected to quote.
type DatetimeSnapshot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Datetime  string `json:"datetime"`
	DateVN    string `json:"date_vn"`
	DayName   string `json:"day_name"`
	DayNameVN string `json:"day_name_vn"`
	FullVN    string `json:"full_vn"`
}

// datetimeTool answers date and time questions from the local clock. The
// model is instructed to call it instead of guessing the date.
type datetimeTool struct {
	now func() time.Time
}

// NewDatetimeTool creates the local datetime tool.
func NewDatetimeTool() (result Tool) {
	result = &datetimeTool{now: time.Now}
	return result
}

func (t *datetimeTool) Name() (result string) {
	result = ToolGetCurrentDatetime
	return result
}

func (t *datetimeTool) Description() (result string) {
	result = "Lấy ngày và giờ hiện tại (thời gian thực từ hệ thống). " +
		"Trả về date (YYYY-MM-DD), time (HH:MM:SS), datetime, date_vn (DD/MM/YYYY), " +
		"day_name, day_name_vn (tên thứ bằng tiếng Việt) và full_vn (ví dụ: \"09 tháng 11 năm 2024\")."

	return result
}

func (t *datetimeTool) InputSchema() (result any) {
	result = map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}

	return result
}

func (t *datetimeTool) Invoke(_ context.Context, _ map[string]any) (payload string, isError bool) {
	now := t.now()

	snapshot := DatetimeSnapshot{
		Date:      now.Format("2006-01-02"),
		Time:      now.Format("15:04:05"),
		Datetime:  now.Format("2006-01-02 15:04:05"),
		DateVN:    now.Format("02/01/2006"),
		DayName:   now.Weekday().String(),
		DayNameVN: vietnameseWeekdays[now.Weekday()],
		FullVN:    fmt.Sprintf("%02d tháng %02d năm %d", now.Day(), int(now.Month()), now.Year()),
	}

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		payload = fmt.Sprintf("Error encoding datetime: %v", err)
		isError = true

		return payload, isError
	}

	payload = string(encoded)
	return payload, isError
}
