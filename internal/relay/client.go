// Package relay implements the chat relay client: it assembles a
// repository-aware prompt context for each visitor message and forwards the
// prompt to a Gemini-compatible generateContent endpoint.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dvaldez/termfolio/internal/provider"
	"github.com/dvaldez/termfolio/internal/terminal"
)

// failureReply is shown to the visitor when every upstream attempt fails.
// Upstream trouble is an expected condition, not an error the caller can act
// on, so SendMessage absorbs it and returns this string with a nil error.
const failureReply = "I'm having trouble reaching my brain right now. Please try again in a moment."

// fetchTimeout bounds a background snapshot refresh from the source.
const fetchTimeout = 30 * time.Second

// Config carries the relay client's wiring.
type Config struct {
	// Endpoint is the full generateContent URL, without the key parameter.
	Endpoint string
	// APIKey is tried first; FallbackAPIKey is tried when the primary fails.
	APIKey         string
	FallbackAPIKey string
	// Persona is the rendered system prompt prepended to every request.
	Persona string
	// Source refreshes the repository snapshot when the cache goes stale.
	// May be nil, in which case only pushed snapshots are used.
	Source provider.Source
	// CacheTTL is how long a snapshot stays fresh. Zero means never refetch.
	CacheTTL time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// GeminiClient relays chat messages to a Gemini generateContent endpoint,
// enriching each prompt with context assembled from the repository snapshot.
type GeminiClient struct {
	cfg  Config
	http *http.Client

	mu          sync.Mutex
	repos       []provider.Repository
	fetchedAt   time.Time
	lastProject *provider.Repository
}

var _ terminal.ChatRelay = (*GeminiClient)(nil)

// NewGeminiClient builds a relay client from cfg.
func NewGeminiClient(cfg Config) *GeminiClient {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &GeminiClient{cfg: cfg, http: hc}
}

// SendMessage assembles the prompt for one visitor message and relays it
// upstream. The repos argument, when non-empty, becomes the new snapshot;
// otherwise the cached snapshot is used, refetched from the source when
// stale. Upstream failure is absorbed into a generic reply with a nil error.
func (c *GeminiClient) SendMessage(ctx context.Context, message string, repos []provider.Repository) (string, error) {
	snapshot := c.snapshot(ctx, repos)
	prompt := c.buildPrompt(message, snapshot)

	for _, key := range c.keys() {
		reply, err := c.generate(ctx, key, prompt)
		if err == nil {
			return reply, nil
		}
		slog.Warn("chat relay attempt failed", "error", err)
	}
	return failureReply, nil
}

// --- Internal helpers ---

// keys returns the key order to try, skipping unset keys.
func (c *GeminiClient) keys() []string {
	var out []string
	if c.cfg.APIKey != "" {
		out = append(out, c.cfg.APIKey)
	}
	if c.cfg.FallbackAPIKey != "" {
		out = append(out, c.cfg.FallbackAPIKey)
	}
	if len(out) == 0 {
		// An unset key still gets one attempt so local endpoints that
		// ignore the key parameter keep working.
		out = append(out, "")
	}
	return out
}

// snapshot returns the repository set to build context from. Pushed repos
// take precedence and reseed the cache.
func (c *GeminiClient) snapshot(ctx context.Context, pushed []provider.Repository) []provider.Repository {
	c.mu.Lock()
	if len(pushed) > 0 {
		c.repos = pushed
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		return pushed
	}
	cached := c.repos
	fresh := c.cfg.CacheTTL == 0 || time.Since(c.fetchedAt) < c.cfg.CacheTTL
	c.mu.Unlock()

	if (fresh && len(cached) > 0) || c.cfg.Source == nil {
		return cached
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()
	fetched, err := c.cfg.Source.ListRepositories(fetchCtx)
	if err != nil {
		slog.Warn("repository snapshot refresh failed", "error", err)
		return cached
	}

	c.mu.Lock()
	c.repos = fetched
	c.fetchedAt = time.Now()
	c.mu.Unlock()
	return fetched
}

// buildPrompt stitches the persona, the assembled repository context, and the
// visitor's message into one prompt.
func (c *GeminiClient) buildPrompt(message string, repos []provider.Repository) string {
	var b strings.Builder
	if c.cfg.Persona != "" {
		b.WriteString(c.cfg.Persona)
		b.WriteString("\n\n")
	}
	if ctx := c.buildContext(message, repos); ctx != "" {
		b.WriteString(ctx)
		b.WriteString("\n")
	}
	b.WriteString("Visitor: ")
	b.WriteString(message)
	return b.String()
}

// buildContext assembles the repository context for one message: a project
// detail when a project can be resolved (or the conversation is following up
// on the last one), suggestions when a named project cannot be found, and the
// grouped listing for general project questions.
func (c *GeminiClient) buildContext(message string, repos []provider.Repository) string {
	lower := strings.ToLower(message)
	extracted := extractProjectName(message)

	if repo := resolveProject(message, extracted, repos); repo != nil {
		c.rememberProject(repo)
		return formatProjectDetail(*repo)
	}

	if isFollowUp(lower) {
		if last := c.recallProject(); last != nil {
			return formatProjectDetail(*last)
		}
	}

	// A failed name lookup only yields suggestions when something is
	// actually close; otherwise a message that still reads as a general
	// project question gets the full listing.
	if extracted != "" && len(suggestFor(extracted, repos)) > 0 {
		return formatSuggestions(extracted, repos)
	}

	if isGeneralQuery(lower) {
		return formatRepoListing(repos)
	}

	if extracted != "" {
		return formatSuggestions(extracted, repos)
	}
	return ""
}

func (c *GeminiClient) rememberProject(r *provider.Repository) {
	cp := *r
	c.mu.Lock()
	c.lastProject = &cp
	c.mu.Unlock()
}

func (c *GeminiClient) recallProject() *provider.Repository {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastProject
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

// generate performs one upstream attempt with the given key.
func (c *GeminiClient) generate(ctx context.Context, key, prompt string) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			TopK:            40,
			TopP:            0.95,
			MaxOutputTokens: 1024,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := c.cfg.Endpoint + "?key=" + key
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("response contained no candidates")
	}
	reply := strings.TrimSpace(decoded.Candidates[0].Content.Parts[0].Text)
	if reply == "" {
		return "", fmt.Errorf("response candidate was empty")
	}
	return reply, nil
}
