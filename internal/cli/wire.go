package cli

import (
	"fmt"
	"strings"

	"github.com/dvaldez/termfolio/internal/config"
	"github.com/dvaldez/termfolio/internal/outbox"
	"github.com/dvaldez/termfolio/internal/prompts"
	"github.com/dvaldez/termfolio/internal/provider"
	"github.com/dvaldez/termfolio/internal/provider/github"
	"github.com/dvaldez/termfolio/internal/relay"
	"github.com/dvaldez/termfolio/internal/terminal"
)

// buildSource returns the repository snapshot source, or nil when no GitHub
// username is configured.
func buildSource(cfg *config.Config) provider.Source {
	if cfg.GitHub.Username == "" {
		return nil
	}
	return github.NewBackend(cfg.GitHub.Username, cfg.GitHub.Orgs, cfg.GitHub.Token)
}

// buildRelay returns the chat relay client, or nil when no endpoint is
// configured.
func buildRelay(cfg *config.Config, source provider.Source) (terminal.ChatRelay, error) {
	if cfg.Chat.Endpoint == "" {
		return nil, nil
	}
	persona, err := prompts.Execute(prompts.Persona, map[string]string{
		"AgentName":   cfg.Chat.AgentName,
		"OwnerName":   cfg.Owner.Name,
		"OwnerTitle":  cfg.Owner.Title,
		"OwnerBio":    cfg.Owner.Bio,
		"OwnerSkills": strings.Join(cfg.Owner.Skills, ", "),
	})
	if err != nil {
		return nil, fmt.Errorf("rendering persona prompt: %w", err)
	}
	return relay.NewGeminiClient(relay.Config{
		Endpoint:       cfg.Chat.Endpoint,
		APIKey:         cfg.Chat.APIKey,
		FallbackAPIKey: cfg.Chat.FallbackAPIKey,
		Persona:        persona,
		Source:         source,
		CacheTTL:       cfg.GitHub.ParseCacheTTL(),
	}), nil
}

// buildOutbox returns the contact outbox for the configured directory.
func buildOutbox(cfg *config.Config) *outbox.Outbox {
	return outbox.New(config.ExpandPath(cfg.Server.OutboxDir))
}
