package relay

import (
	"context"
	"sync"

	"github.com/dvaldez/termfolio/internal/provider"
	"github.com/dvaldez/termfolio/internal/terminal"
)

// Mock is a scripted relay for tests and offline development. It records
// every message it receives and returns the configured reply or error.
type Mock struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls []string
}

var _ terminal.ChatRelay = (*Mock)(nil)

// SendMessage records the message and returns the scripted result.
func (m *Mock) SendMessage(_ context.Context, message string, _ []provider.Repository) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, message)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return "mock reply", nil
}

// Calls returns a copy of the recorded messages.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
