package server

import (
	"encoding/json"
	"fmt"

	"github.com/dvaldez/termfolio/internal/provider"
	"github.com/dvaldez/termfolio/internal/terminal"
)

// BridgeMessage is the envelope for all WebSocket messages between the
// server and browser terminals.
type BridgeMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage constructs a BridgeMessage by marshaling the given payload.
func NewMessage[T any](msgType string, payload T) (BridgeMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return BridgeMessage{}, fmt.Errorf("marshal payload: %w", err)
	}
	return BridgeMessage{Type: msgType, Payload: raw}, nil
}

// ParsePayload unmarshals the raw payload of a BridgeMessage into T.
func ParsePayload[T any](msg BridgeMessage) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("unmarshal payload: %w", err)
	}
	return v, nil
}

// Client → Server message types.
const (
	MsgExecute  = "execute"
	MsgGetState = "get_state"
)

// Server → Client message types.
const (
	MsgResult   = "result"
	MsgState    = "state"
	MsgSetRepos = "set_repos"
	MsgError    = "error"
)

// ExecutePayload carries one line of terminal input.
type ExecutePayload struct {
	Input string `json:"input"`
}

// ResultPayload carries the outcome of one executed input plus the session
// state snapshot the client needs to redraw its prompt.
type ResultPayload struct {
	Result      terminal.Result `json:"result"`
	State       terminal.State  `json:"state"`
	Prompt      string          `json:"prompt"`
	PromptColor string          `json:"promptColor"`
}

// StatePayload carries the current session state without executing anything.
type StatePayload struct {
	State       terminal.State `json:"state"`
	Prompt      string         `json:"prompt"`
	PromptColor string         `json:"promptColor"`
}

// SetReposPayload pushes a fresh repository snapshot to connected clients.
type SetReposPayload struct {
	Repos []provider.Repository `json:"repos"`
}

// ErrorPayload reports a client-message handling failure.
type ErrorPayload struct {
	Message string `json:"message"`
}
