package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvaldez/termfolio/internal/provider"
)

func dialBridge(t *testing.T, s *Server) (*websocket.Conn, context.Context) {
	t.Helper()
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) BridgeMessage {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg BridgeMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func sendMessage(t *testing.T, ctx context.Context, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	msg, err := NewMessage(msgType, payload)
	require.NoError(t, err)
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestBridgeExecuteFlow(t *testing.T) {
	s, _ := newTestServer(t)
	conn, ctx := dialBridge(t, s)

	// The bridge sends the initial state first.
	initial := readMessage(t, ctx, conn)
	assert.Equal(t, MsgState, initial.Type)
	state, err := ParsePayload[StatePayload](initial)
	require.NoError(t, err)
	assert.Equal(t, "visitor:~$", state.Prompt)
	assert.Equal(t, "#50fa7b", state.PromptColor)

	sendMessage(t, ctx, conn, MsgExecute, ExecutePayload{Input: "help"})

	resp := readMessage(t, ctx, conn)
	assert.Equal(t, MsgResult, resp.Type)
	result, err := ParsePayload[ResultPayload](resp)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(result.Result.Output, "\n"), "help")
	assert.Equal(t, "visitor:~$", result.Prompt)
}

func TestBridgeUnknownMessageType(t *testing.T) {
	s, _ := newTestServer(t)
	conn, ctx := dialBridge(t, s)

	readMessage(t, ctx, conn) // initial state

	sendMessage(t, ctx, conn, "bogus", struct{}{})
	resp := readMessage(t, ctx, conn)
	assert.Equal(t, MsgError, resp.Type)
}

func TestBridgeSessionsAreIsolated(t *testing.T) {
	s, _ := newTestServer(t)
	connA, ctxA := dialBridge(t, s)
	connB, ctxB := dialBridge(t, s)

	readMessage(t, ctxA, connA)
	readMessage(t, ctxB, connB)

	// Promote session A to root; session B must stay unprivileged.
	sendMessage(t, ctxA, connA, MsgExecute, ExecutePayload{Input: "root"})
	resA := readMessage(t, ctxA, connA)
	resultA, err := ParsePayload[ResultPayload](resA)
	require.NoError(t, err)
	assert.True(t, resultA.State.IsRoot)

	sendMessage(t, ctxB, connB, MsgGetState, struct{}{})
	resB := readMessage(t, ctxB, connB)
	stateB, err := ParsePayload[StatePayload](resB)
	require.NoError(t, err)
	assert.False(t, stateB.State.IsRoot)
}

func TestBridgeBroadcastRepos(t *testing.T) {
	s, _ := newTestServer(t)
	conn, ctx := dialBridge(t, s)

	readMessage(t, ctx, conn) // initial state

	s.bridge.BroadcastRepos([]provider.Repository{{Name: "termfolio"}})

	resp := readMessage(t, ctx, conn)
	assert.Equal(t, MsgSetRepos, resp.Type)
	payload, err := ParsePayload[SetReposPayload](resp)
	require.NoError(t, err)
	require.Len(t, payload.Repos, 1)
	assert.Equal(t, "termfolio", payload.Repos[0].Name)

	// The session's engine saw the new snapshot too.
	sendMessage(t, ctx, conn, MsgExecute, ExecutePayload{Input: "projects"})
	result := readMessage(t, ctx, conn)
	parsed, err := ParsePayload[ResultPayload](result)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(parsed.Result.Output, "\n"), "termfolio")
}

func TestBridgeWriteHonorsClientContext(t *testing.T) {
	s, _ := newTestServer(t)
	conn, ctx := dialBridge(t, s)

	readMessage(t, ctx, conn) // initial state

	// A client whose connection context is already dead must not hold up
	// the caller; the write aborts instead of blocking.
	gone, cancel := context.WithCancel(context.Background())
	cancel()
	stalled := &wsClient{conn: conn, engine: s.newEngine(), ctx: gone}

	done := make(chan struct{})
	go func() {
		s.bridge.sendTo(stalled, MsgSetRepos, SetReposPayload{})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("write to dead client did not return")
	}
}
