// Package server exposes the terminal engine over HTTP and WebSocket for the
// portfolio frontend, along with a small REST surface for one-shot calls.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dvaldez/termfolio/internal/config"
	"github.com/dvaldez/termfolio/internal/outbox"
	"github.com/dvaldez/termfolio/internal/provider"
	"github.com/dvaldez/termfolio/internal/terminal"
)

// Server hosts the REST API and the WebSocket terminal bridge, and keeps the
// repository snapshot fresh in the background.
type Server struct {
	cfg        *config.Config
	source     provider.Source
	relay      terminal.ChatRelay
	submit     terminal.Submitter
	outbox     *outbox.Outbox
	webhookURL string
	bridge     *Bridge
	startTime  time.Time

	mu    sync.RWMutex
	repos []provider.Repository
}

// NewServer wires the server from its collaborators. source and relay may be
// nil; the affected surfaces then report themselves unavailable.
func NewServer(cfg *config.Config, source provider.Source, relay terminal.ChatRelay, box *outbox.Outbox) *Server {
	s := &Server{
		cfg:        cfg,
		source:     source,
		relay:      relay,
		outbox:     box,
		webhookURL: cfg.Server.ContactWebhook,
	}
	s.submit = NewContactSubmitter(box, cfg.Server.ContactWebhook)
	s.bridge = NewBridge(s.newEngine, cfg.Server.AllowedOrigins)
	return s
}

// Repos returns the current repository snapshot.
func (s *Server) Repos() []provider.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repos
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.startTime = time.Now()

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           withCORS(s.cfg.Server.AllowedOrigins, mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // websocket connections stay open
		IdleTimeout:       120 * time.Second,
	}

	var wg sync.WaitGroup

	// Keep the repository snapshot fresh in the background.
	if s.source != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.runSnapshotLoop(ctx)
		}()
	}

	// Shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("starting HTTP server", "addr", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	wg.Wait()
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /api/repos", s.handleListRepos)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("POST /api/contact", s.handleContact)
	mux.HandleFunc("GET /ws", s.bridge.HandleWS)
}

// --- Internal helpers ---

// newEngine builds a fresh terminal session seeded with the current snapshot.
func (s *Server) newEngine() *terminal.Engine {
	e := terminal.NewEngine(EngineOptions(s.cfg), s.relay, s.submit)
	e.SetRepositories(s.Repos())
	return e
}

// EngineOptions maps the configuration onto terminal engine options.
func EngineOptions(cfg *config.Config) terminal.Options {
	return terminal.Options{
		PromptName:   cfg.Terminal.PromptName,
		RootPassword: cfg.Terminal.RootPassword,
		UserTheme:    terminal.Theme(cfg.Terminal.UserTheme),
		RootTheme:    terminal.Theme(cfg.Terminal.RootTheme),
		ResumeURL:    cfg.Terminal.ResumeURL,
		SourceURL:    cfg.Terminal.SourceURL,
		OwnerName:    cfg.Owner.Name,
		Agent: terminal.ChatAgent{
			ID:          cfg.Chat.AgentName,
			Name:        cfg.Chat.AgentName,
			Description: fmt.Sprintf("%s's portfolio assistant", cfg.Owner.Name),
			Status:      "online",
			Icon:        "◆",
		},
	}
}

// runSnapshotLoop fetches the repository snapshot immediately and then on a
// ticker, pushing every successful refresh to connected sessions.
func (s *Server) runSnapshotLoop(ctx context.Context) {
	interval := s.cfg.GitHub.ParseCacheTTL()
	s.refreshSnapshot(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshSnapshot(ctx)
		}
	}
}

func (s *Server) refreshSnapshot(ctx context.Context) {
	fetchCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	repos, err := s.source.ListRepositories(fetchCtx)
	if err != nil {
		slog.Warn("repository snapshot refresh failed", "error", err)
		return
	}

	s.mu.Lock()
	s.repos = repos
	s.mu.Unlock()

	slog.Info("repository snapshot refreshed", "count", len(repos))
	s.bridge.BroadcastRepos(repos)
}

// withCORS allows the configured browser origins to call the REST surface.
// An empty allow list permits any origin.
func withCORS(allowed []string, next http.Handler) http.Handler {
	allowedSet := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		allowedSet[o] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (len(allowedSet) == 0 || allowedSet[origin]) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
