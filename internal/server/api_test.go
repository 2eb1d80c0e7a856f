package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvaldez/termfolio/internal/config"
	"github.com/dvaldez/termfolio/internal/outbox"
	"github.com/dvaldez/termfolio/internal/provider"
	"github.com/dvaldez/termfolio/internal/relay"
)

func newTestServer(t *testing.T) (*Server, *relay.Mock) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.OutboxDir = filepath.Join(t.TempDir(), "outbox")

	mock := &relay.Mock{Reply: "hi from the assistant"}
	s := NewServer(&cfg, nil, mock, outbox.New(cfg.Server.OutboxDir))
	s.startTime = time.Now()
	return s, mock
}

func TestHandleStatus(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "running", resp.Status)
	assert.NotEmpty(t, resp.Uptime)
	assert.Equal(t, 0, resp.RepoCount)
	assert.Equal(t, 0, resp.Sessions)
}

func TestHandleListRepos(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("empty snapshot yields empty array", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/repos", nil)
		rec := httptest.NewRecorder()
		s.handleListRepos(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})

	t.Run("returns the snapshot", func(t *testing.T) {
		s.mu.Lock()
		s.repos = []provider.Repository{{Name: "termfolio", HTMLURL: "https://github.com/dvaldez/termfolio"}}
		s.mu.Unlock()

		req := httptest.NewRequest(http.MethodGet, "/api/repos", nil)
		rec := httptest.NewRecorder()
		s.handleListRepos(rec, req)

		var repos []provider.Repository
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&repos))
		require.Len(t, repos, 1)
		assert.Equal(t, "termfolio", repos[0].Name)
	})
}

func TestHandleChat(t *testing.T) {
	s, mock := newTestServer(t)

	t.Run("relays the message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"who are you"}`))
		rec := httptest.NewRecorder()
		s.handleChat(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp ChatResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "hi from the assistant", resp.Reply)
		assert.Equal(t, []string{"who are you"}, mock.Calls())
	})

	t.Run("empty message rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
		rec := httptest.NewRecorder()
		s.handleChat(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{bad json"))
		rec := httptest.NewRecorder()
		s.handleChat(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no relay configured", func(t *testing.T) {
		s.relay = nil
		defer func() { s.relay = mock }()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
		rec := httptest.NewRecorder()
		s.handleChat(rec, req)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestHandleContact(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("valid submission saved", func(t *testing.T) {
		body := `{"name":"Alice","contactOption":"email","contactDetails":"alice@example.com","message":"Hello!"}`
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body))
		rec := httptest.NewRecorder()
		s.handleContact(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)

		subs, err := s.outbox.List()
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, "Alice", subs[0].Name)
		assert.Equal(t, "Hello!", subs[0].Message)
	})

	t.Run("missing name rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"message":"hi"}`))
		rec := httptest.NewRecorder()
		s.handleContact(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing message rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(`{"name":"Bob"}`))
		rec := httptest.NewRecorder()
		s.handleContact(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWithCORS(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed origin echoed", func(t *testing.T) {
		h := withCORS([]string{"https://dvaldez.dev"}, inner)
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.Header.Set("Origin", "https://dvaldez.dev")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, "https://dvaldez.dev", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("disallowed origin ignored", func(t *testing.T) {
		h := withCORS([]string{"https://dvaldez.dev"}, inner)
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight answered", func(t *testing.T) {
		h := withCORS(nil, inner)
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://anywhere.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}
