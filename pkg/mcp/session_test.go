package mcp

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureHandshakeRunsOnce(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	ctx := context.Background()

	first, err := client.Sessions().Ensure(ctx)
	require.NoError(t, err, "first Ensure() failed")

	second, err := client.Sessions().Ensure(ctx)
	require.NoError(t, err, "second Ensure() failed")

	assert.Equal(t, "sess-stub-1", first)
	assert.Equal(t, first, second, "Ensure() must hand back the cached session")

	stub.mu.Lock()
	defer stub.mu.Unlock()

	assert.Equal(t, 1, stub.initCalls, "handshake must run exactly once")
	assert.Equal(t, 1, stub.notifyCalls, "initialized notification must follow the handshake")
}

func TestEnsureSendsInitializedNotification(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.Sessions().Ensure(context.Background())
	require.NoError(t, err)

	stub.mu.Lock()
	defer stub.mu.Unlock()

	assert.Equal(t, 1, stub.notifyCalls)
	assert.False(t, stub.notifyHadID, "notifications carry no request id")
	assert.Equal(t, "sess-stub-1", stub.notifySession, "notification must carry the new session id")
}

func TestEnsureNotificationFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.notifyFail = true
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	id, err := client.Sessions().Ensure(context.Background())

	require.NoError(t, err, "a failed notification must not take the session down")
	assert.Equal(t, "sess-stub-1", id)
}

func TestHandshakeFallsBackOn404(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.dead["/mcp"] = true
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	id, err := client.Sessions().Ensure(context.Background())

	require.NoError(t, err, "404 on /mcp must advance to /")
	assert.Equal(t, "sess-stub-1", id)

	stub.mu.Lock()
	defer stub.mu.Unlock()

	assert.Equal(t, 1, stub.initCalls)
	assert.Equal(t, "/", stub.notifyPath, "notification must go to the resolved path")
	require.GreaterOrEqual(t, len(stub.hits), 2)
	assert.Equal(t, "/mcp", stub.hits[0], "probing starts at /mcp")
}

func TestHandshakeAllPathsNotFound(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.dead["/mcp"] = true
	stub.dead["/"] = true
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.Sessions().Ensure(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all candidate paths returned 404")
}

func TestHandshakeNon404StatusIsTerminal(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.statuses["/mcp"] = http.StatusInternalServerError
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.Sessions().Ensure(context.Background())

	require.Error(t, err, "only a 404 advances path probing")
	assert.Contains(t, err.Error(), "initialize returned HTTP 500")

	stub.mu.Lock()
	defer stub.mu.Unlock()

	assert.Equal(t, 0, stub.initCalls, "the fallback path must never be reached")
}

func TestHandshakeMissingSessionHeader(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.sessionID = ""
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.Sessions().Ensure(context.Background())

	require.Error(t, err, "a 200 without the session header is terminal")
	assert.Contains(t, err.Error(), SessionHeader)
}

func TestHandshakeRejectedByServer(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.initError = &RPCError{Code: -32600, Message: "unsupported protocol version"}
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	_, err := client.Sessions().Ensure(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "initialize rejected")
	assert.Contains(t, err.Error(), "unsupported protocol version")
}

func TestFailedHandshakeIsRetried(t *testing.T) {
	t.Parallel()

	stub := newStubMCP(t)
	stub.sessionID = ""
	server := stub.start()

	client := NewClient(server.URL, 5*time.Second, testLogger())

	ctx := context.Background()

	_, err := client.Sessions().Ensure(ctx)
	require.Error(t, err)

	// The server starts handing out sessions; the next Ensure must retry
	// rather than cache the failure.
	stub.mu.Lock()
	stub.sessionID = "sess-stub-2"
	stub.mu.Unlock()

	id, err := client.Sessions().Ensure(ctx)

	require.NoError(t, err, "a failed handshake must not be cached")
	assert.Equal(t, "sess-stub-2", id)

	stub.mu.Lock()
	defer stub.mu.Unlock()

	assert.Equal(t, 2, stub.initCalls)
}
