package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dvaldez/termfolio/internal/outbox"
	"github.com/dvaldez/termfolio/internal/provider"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Status    string `json:"status"`
	Uptime    string `json:"uptime"`
	RepoCount int    `json:"repo_count"`
	Sessions  int    `json:"sessions"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:    "running",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		RepoCount: len(s.Repos()),
		Sessions:  s.bridge.ClientCount(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	repos := s.Repos()
	if repos == nil {
		repos = []provider.Repository{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(repos)
}

// ChatRequest is the JSON body for POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the JSON response for POST /api/chat.
type ChatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10) // 64 KB limit
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	if s.relay == nil {
		http.Error(w, "chat is not configured", http.StatusServiceUnavailable)
		return
	}
	reply, err := s.relay.SendMessage(r.Context(), req.Message, s.Repos())
	if err != nil {
		slog.Error("chat relay failed", "error", err)
		http.Error(w, "chat relay failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ChatResponse{Reply: reply})
}

// ContactRequest is the JSON body for POST /api/contact.
type ContactRequest struct {
	Name           string `json:"name"`
	ContactOption  string `json:"contactOption"`
	ContactDetails string `json:"contactDetails"`
	Message        string `json:"message"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10) // 64 KB limit
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Message) == "" {
		http.Error(w, "name and message are required", http.StatusBadRequest)
		return
	}

	sub := outbox.Submission{
		Name:           req.Name,
		ContactOption:  req.ContactOption,
		ContactDetails: req.ContactDetails,
		Message:        req.Message,
		ReceivedAt:     time.Now(),
	}
	if s.outbox != nil {
		if _, err := s.outbox.Save(sub); err != nil {
			slog.Error("saving contact submission", "error", err)
			http.Error(w, "failed to save submission", http.StatusInternalServerError)
			return
		}
	}

	// Respond immediately — webhook forwarding runs asynchronously.
	go func() {
		if err := ForwardSubmission(context.Background(), s.webhookURL, sub); err != nil {
			slog.Error("forwarding contact submission", "error", err)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "Thanks! Your message is on its way."})
}
