package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.results[methodToolsList] = `{"tools":[
		{"name":"get_stock_price","description":"Current price","inputSchema":{"type":"object","properties":{"symbol":{"type":"string"}},"required":["symbol"]}},
		{"name":"get_price_board","description":"Board snapshot","inputSchema":{"type":"object","properties":{"symbols":{"type":"array","items":{"type":"string"}}}}}
	]}`
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	adapters := LoadCatalog(context.Background(), client, testLogger())

	require.Len(t, adapters, 2, "one adapter per declared tool")
	assert.Equal(t, "get_stock_price", adapters[0].Name())
	assert.Equal(t, "get_price_board", adapters[1].Name())
	assert.True(t, adapters[0].Descriptor().InputSchema.Properties["symbol"].Type.Has("string"),
		"declared schema must survive the listing decode")
}

func TestLoadCatalogServerUnavailable(t *testing.T) {
	t.Parallel()

	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond, testLogger())

	adapters := LoadCatalog(context.Background(), client, testLogger())

	assert.Empty(t, adapters, "an unreachable server yields an empty catalog, not a failure")
}

func TestLoadCatalogUndecodableListing(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.results[methodToolsList] = `{"tools":"not-a-list"}`
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	adapters := LoadCatalog(context.Background(), client, testLogger())

	assert.Empty(t, adapters, "an undecodable listing yields an empty catalog")
}

func TestLoadCatalogUnionTypeSchemas(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.results[methodToolsList] = `{"tools":[
		{"name":"get_historical_data","description":"OHLC rows","inputSchema":{"type":"object","properties":{"symbols":{"type":["array","null"]},"period":{"type":"string"}}}}
	]}`
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	adapters := LoadCatalog(context.Background(), client, testLogger())

	require.Len(t, adapters, 1)

	schema := adapters[0].Descriptor().InputSchema
	assert.True(t, schema.Properties["symbols"].Type.Has("array"), "union designators must decode")
	assert.True(t, schema.Properties["symbols"].Type.Has("null"))
	assert.True(t, schema.Properties["period"].Type.Has("string"), "single designators must decode")
}
