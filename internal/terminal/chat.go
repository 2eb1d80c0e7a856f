package terminal

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// chatFailureLine is what the user sees when a chat turn cannot complete.
// Failures never close the session.
const chatFailureLine = "The assistant is unavailable right now. Try again in a moment, or type bye to leave."

// chatTurn forwards one chat-session input to the relay. The user/assistant
// message pair is appended together only after a reply is obtained, keeping
// the pair atomic in the log; a failed turn appends nothing.
//
// chatTurn is called with e.mu held and returns with it held, but releases it
// for the duration of the relay round trip so snapshot pushes and state reads
// are not held up behind a slow upstream.
func (e *Engine) chatTurn(ctx context.Context, input string) Result {
	if e.relay == nil {
		return Result{Output: []string{chatFailureLine}}
	}

	repos := e.repos
	e.mu.Unlock()
	reply, err := e.relay.SendMessage(ctx, input, repos)
	e.mu.Lock()
	if err != nil {
		slog.Warn("chat relay failed", "error", err)
		return Result{Output: []string{chatFailureLine}}
	}

	cur := e.state.ChatSession
	if cur == nil || !cur.IsActive {
		// The session closed while the call was in flight. Deliver the
		// late reply without reopening it.
		return Result{Output: []string{reply}}
	}

	session := *cur
	now := time.Now()
	session.Messages = append(append([]ChatMessage{}, session.Messages...),
		ChatMessage{Role: "user", Content: input, Timestamp: now},
		ChatMessage{Role: "assistant", Content: reply, Timestamp: now},
	)

	out := make([]string, 0, 4)
	for i, line := range strings.Split(reply, "\n") {
		if i == 0 {
			line = session.Agent.Name + ": " + line
		}
		out = append(out, line)
	}

	return Result{
		Output:   out,
		NewState: &Patch{ChatSession: &session},
	}
}

// closeChat ends the session and restores the anonymous user state. Exiting
// chat always demotes to user mode, even when root was active before the chat
// opened.
func (e *Engine) closeChat() Result {
	patch := e.userPatch()
	patch.ClearChatSession = true
	return Result{
		Output:   []string{"Chat ended. Come back any time."},
		NewState: patch,
	}
}
