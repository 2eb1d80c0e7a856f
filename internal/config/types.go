package config

import "time"

// Config is the top-level termfolio configuration.
type Config struct {
	Owner    OwnerConfig    `json:"owner"`
	GitHub   GitHubConfig   `json:"github"`
	Chat     ChatConfig     `json:"chat"`
	Terminal TerminalConfig `json:"terminal"`
	Server   ServerConfig   `json:"server"`
}

// OwnerConfig describes the portfolio subject. It feeds the chat persona
// prompt and the terminal's cosmetic identity.
type OwnerConfig struct {
	Name   string   `json:"name"`
	Title  string   `json:"title"`
	Bio    string   `json:"bio"`
	Skills []string `json:"skills"`
	Email  string   `json:"email"`
}

// GitHubConfig controls the repository snapshot source.
type GitHubConfig struct {
	Username string   `json:"username"`
	Orgs     []string `json:"orgs"`
	Token    string   `json:"token"`
	CacheTTL string   `json:"cache_ttl"`
}

// ParseCacheTTL returns the snapshot cache freshness window.
func (g GitHubConfig) ParseCacheTTL() time.Duration {
	d, err := time.ParseDuration(g.CacheTTL)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// ChatConfig holds the generative-language endpoint settings. Keys are never
// compiled into source; they arrive from the config file or environment.
type ChatConfig struct {
	Endpoint       string `json:"endpoint"`
	APIKey         string `json:"api_key"`
	FallbackAPIKey string `json:"fallback_api_key"`
	AgentName      string `json:"agent_name"`
}

// TerminalConfig holds the terminal engine's cosmetic and privilege settings.
type TerminalConfig struct {
	PromptName   string      `json:"prompt_name"`
	RootPassword string      `json:"root_password"`
	UserTheme    ThemeConfig `json:"user_theme"`
	RootTheme    ThemeConfig `json:"root_theme"`
	ResumeURL    string      `json:"resume_url"`
	SourceURL    string      `json:"source_url"`
}

// ThemeConfig is a display-only color set carried through session state for
// the presentation layer to read.
type ThemeConfig struct {
	PromptColor  string `json:"prompt_color"`
	TextColor    string `json:"text_color"`
	ErrorColor   string `json:"error_color"`
	SuccessColor string `json:"success_color"`
}

// ServerConfig holds the HTTP/WebSocket server settings.
type ServerConfig struct {
	Port           int      `json:"port"`
	OutboxDir      string   `json:"outbox_dir"`
	ContactWebhook string   `json:"contact_webhook"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Owner: OwnerConfig{
			Name:  "Daniel Valdez",
			Title: "Software Engineer",
			Bio:   "Full-stack engineer who enjoys building developer tools and delightful web experiences.",
			Skills: []string{
				"Go", "TypeScript", "React", "PostgreSQL", "Docker", "AWS",
			},
		},
		GitHub: GitHubConfig{
			Username: "dvaldez",
			CacheTTL: "5m",
		},
		Chat: ChatConfig{
			Endpoint:  "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent",
			AgentName: "folio",
		},
		Terminal: TerminalConfig{
			PromptName: "visitor",
			UserTheme: ThemeConfig{
				PromptColor:  "#50fa7b",
				TextColor:    "#f8f8f2",
				ErrorColor:   "#ff5555",
				SuccessColor: "#50fa7b",
			},
			RootTheme: ThemeConfig{
				PromptColor:  "#ff5555",
				TextColor:    "#f8f8f2",
				ErrorColor:   "#ff5555",
				SuccessColor: "#f1fa8c",
			},
			ResumeURL: "/resume.pdf",
			SourceURL: "https://github.com/dvaldez/termfolio",
		},
		Server: ServerConfig{
			Port:      4210,
			OutboxDir: "~/.local/share/termfolio/outbox",
		},
	}
}
