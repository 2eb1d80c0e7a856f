package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dvaldez/termfolio/internal/outbox"
	"github.com/dvaldez/termfolio/internal/terminal"
)

// forwardHTTPClient is a dedicated HTTP client for webhook forwarding,
// isolated from http.DefaultClient to avoid global state mutation.
var forwardHTTPClient = &http.Client{Timeout: 15 * time.Second}

// ForwardSubmission posts a contact submission to the configured webhook.
// Returns nil immediately if no webhook is configured.
func ForwardSubmission(ctx context.Context, webhookURL string, sub outbox.Submission) error {
	if webhookURL == "" {
		return nil
	}

	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("marshaling submission: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := forwardHTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending webhook: %w", err)
	}
	defer resp.Body.Close()

	// Drain the body so the connection can be reused.
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// contactSubmitter persists completed forms to the outbox and forwards them
// to the webhook when one is configured.
type contactSubmitter struct {
	outbox     *outbox.Outbox
	webhookURL string
}

var _ terminal.Submitter = (*contactSubmitter)(nil)

// NewContactSubmitter wires the outbox and webhook into one submitter.
func NewContactSubmitter(o *outbox.Outbox, webhookURL string) terminal.Submitter {
	return &contactSubmitter{outbox: o, webhookURL: webhookURL}
}

func (s *contactSubmitter) Submit(form terminal.ContactForm) {
	sub := outbox.Submission{
		Name:           form.Name,
		ContactOption:  form.ContactOption,
		ContactDetails: form.ContactDetails,
		Message:        form.Message,
		ReceivedAt:     time.Now(),
	}

	if s.outbox != nil {
		if path, err := s.outbox.Save(sub); err != nil {
			slog.Error("saving contact submission", "error", err)
		} else {
			slog.Info("contact submission saved", "path", path, "from", sub.Name)
		}
	}

	if err := ForwardSubmission(context.Background(), s.webhookURL, sub); err != nil {
		slog.Error("forwarding contact submission", "error", err)
	}
}
