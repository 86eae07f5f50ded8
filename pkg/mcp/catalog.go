package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
)

// LoadCatalog fetches the remote tool list and builds one adapter per
// declared tool. A failed or undecodable listing is warn-logged and yields
// an empty catalog: the agent still answers, just without remote tools.
func LoadCatalog(ctx context.Context, client *Client, logger *slog.Logger) (result []*ToolAdapter) {
	raw, err := client.Call(ctx, methodToolsList, nil)
	if err != nil {
		logger.WarnContext(ctx, "tool discovery failed", slog.Any("error", err))
		return result
	}

	var listing struct {
		Tools []ToolDescriptor `json:"tools"`
	}

	if err := json.Unmarshal(raw, &listing); err != nil {
		logger.WarnContext(ctx, "tool listing is not decodable", slog.Any("error", err))
		return result
	}

	result = make([]*ToolAdapter, 0, len(listing.Tools))

	for _, desc := range listing.Tools {
		result = append(result, NewToolAdapter(client, desc))
	}

	logger.InfoContext(ctx, "loaded remote tool catalog", slog.Int("tools", len(result)))

	return result
}
