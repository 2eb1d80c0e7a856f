package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/dvaldez/termfolio/internal/provider"
	"github.com/dvaldez/termfolio/internal/terminal"
)

// Bridge manages WebSocket connections. Each connection gets its own
// terminal engine, so every visitor runs an isolated session.
type Bridge struct {
	newEngine      func() *terminal.Engine
	originPatterns []string

	mu      sync.RWMutex
	clients map[string]*wsClient
	nextID  int
}

type wsClient struct {
	conn   *websocket.Conn
	engine *terminal.Engine
	ctx    context.Context // the connection's request context
	mu     sync.Mutex      // serializes writes
}

// writeTimeout bounds a single outbound frame so a stalled peer cannot hold
// its write mutex, or the broadcast goroutine, indefinitely.
const writeTimeout = 10 * time.Second

// NewBridge creates a Bridge that builds one engine per connection via
// newEngine. originPatterns restricts the accepted Origin headers; empty
// means accept any origin.
func NewBridge(newEngine func() *terminal.Engine, originPatterns []string) *Bridge {
	return &Bridge{
		newEngine:      newEngine,
		originPatterns: originPatterns,
		clients:        make(map[string]*wsClient),
	}
}

// HandleWS is the HTTP handler for the /ws endpoint.
func (b *Bridge) HandleWS(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{}
	if len(b.originPatterns) > 0 {
		opts.OriginPatterns = b.originPatterns
	} else {
		opts.InsecureSkipVerify = true
	}
	c, err := websocket.Accept(w, r, opts)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}

	ctx := r.Context()
	client := &wsClient{conn: c, engine: b.newEngine(), ctx: ctx}

	b.mu.Lock()
	b.nextID++
	id := fmt.Sprintf("client-%d", b.nextID)
	b.clients[id] = client
	b.mu.Unlock()

	slog.Info("websocket client connected", "id", id, "remote", r.RemoteAddr)

	// Send the initial session state so the client can draw its prompt.
	b.sendState(client)

	b.readLoop(ctx, id, client)
}

// BroadcastRepos pushes a fresh snapshot to every connected session.
func (b *Bridge) BroadcastRepos(repos []provider.Repository) {
	b.mu.RLock()
	clients := make([]*wsClient, 0, len(b.clients))
	for _, c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, client := range clients {
		client.engine.SetRepositories(repos)
		b.sendTo(client, MsgSetRepos, SetReposPayload{Repos: repos})
	}
}

// ClientCount returns the number of connected sessions.
func (b *Bridge) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// --- Internal helpers ---

func (b *Bridge) readLoop(ctx context.Context, id string, client *wsClient) {
	defer func() {
		b.mu.Lock()
		delete(b.clients, id)
		b.mu.Unlock()
		client.conn.Close(websocket.StatusNormalClosure, "")
		slog.Info("websocket client disconnected", "id", id)
	}()

	for {
		_, data, err := client.conn.Read(ctx)
		if err != nil {
			return // client disconnected
		}

		var msg BridgeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid ws message", "error", err, "client", id)
			continue
		}

		b.handleClientMessage(ctx, client, msg)
	}
}

func (b *Bridge) handleClientMessage(ctx context.Context, client *wsClient, msg BridgeMessage) {
	switch msg.Type {
	case MsgExecute:
		p, err := ParsePayload[ExecutePayload](msg)
		if err != nil {
			b.sendTo(client, MsgError, ErrorPayload{Message: "invalid execute payload"})
			return
		}
		result := client.engine.Execute(ctx, p.Input)
		b.sendTo(client, MsgResult, ResultPayload{
			Result:      result,
			State:       client.engine.State(),
			Prompt:      client.engine.Prompt(),
			PromptColor: client.engine.PromptColor(),
		})

	case MsgGetState:
		b.sendState(client)

	default:
		b.sendTo(client, MsgError, ErrorPayload{Message: "unknown message type: " + msg.Type})
	}
}

func (b *Bridge) sendState(client *wsClient) {
	b.sendTo(client, MsgState, StatePayload{
		State:       client.engine.State(),
		Prompt:      client.engine.Prompt(),
		PromptColor: client.engine.PromptColor(),
	})
}

func (b *Bridge) sendTo(client *wsClient, msgType string, payload any) {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		slog.Warn("building ws message", "type", msgType, "error", err)
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Warn("marshaling ws message", "type", msgType, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(client.ctx, writeTimeout)
	defer cancel()
	client.mu.Lock()
	defer client.mu.Unlock()
	if err := client.conn.Write(ctx, websocket.MessageText, data); err != nil {
		slog.Debug("ws write failed", "error", err)
	}
}
