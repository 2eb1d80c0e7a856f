package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.GitHub.Username == "" {
		t.Error("expected a default github username")
	}
	if cfg.Server.Port != 4210 {
		t.Errorf("expected server port 4210, got %d", cfg.Server.Port)
	}
	if cfg.Terminal.PromptName != "visitor" {
		t.Errorf("expected prompt name visitor, got %s", cfg.Terminal.PromptName)
	}
	if cfg.GitHub.ParseCacheTTL() != 5*time.Minute {
		t.Errorf("expected cache TTL 5m, got %v", cfg.GitHub.ParseCacheTTL())
	}
	if cfg.Chat.APIKey != "" {
		t.Error("default config must not carry an API key")
	}
}

func TestLoadJSONC(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.jsonc")

	content := []byte(`{
  // This is a JSONC comment
  "github": {
    "username": "octocat"
  },
  "server": {
    "port": 9999
  }
}`)

	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	m, err := loadJSONC(path)
	if err != nil {
		t.Fatalf("loadJSONC failed: %v", err)
	}

	gh, ok := m["github"].(map[string]any)
	if !ok {
		t.Fatal("expected github to be a map")
	}
	if gh["username"] != "octocat" {
		t.Errorf("expected username=octocat, got %v", gh["username"])
	}

	server, ok := m["server"].(map[string]any)
	if !ok {
		t.Fatal("expected server to be a map")
	}
	if server["port"] != float64(9999) {
		t.Errorf("expected port=9999, got %v", server["port"])
	}
}

func TestLoadJSONC_FileNotFound(t *testing.T) {
	_, err := loadJSONC("/nonexistent/path/termfolio.jsonc")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestMergeIntoConfig(t *testing.T) {
	cfg := DefaultConfig()

	src := map[string]any{
		"github": map[string]any{
			"username": "override-user",
		},
		"server": map[string]any{
			"port": json.Number("8080"),
		},
	}

	if err := mergeIntoConfig(&cfg, src); err != nil {
		t.Fatalf("mergeIntoConfig failed: %v", err)
	}

	if cfg.GitHub.Username != "override-user" {
		t.Errorf("expected username=override-user, got %s", cfg.GitHub.Username)
	}
	// Untouched fields survive the merge.
	if cfg.GitHub.CacheTTL != "5m" {
		t.Errorf("expected cache_ttl preserved as 5m, got %s", cfg.GitHub.CacheTTL)
	}
	if cfg.Terminal.PromptName != "visitor" {
		t.Errorf("expected prompt_name preserved as visitor, got %s", cfg.Terminal.PromptName)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("GITHUB_TOKEN", "gh-token-456")
	t.Setenv("TERMFOLIO_API_KEY", "primary-key")
	t.Setenv("TERMFOLIO_FALLBACK_API_KEY", "backup-key")
	t.Setenv("TERMFOLIO_ROOT_PASSWORD", "hunter2")

	applyEnvOverrides(&cfg)

	if cfg.GitHub.Token != "gh-token-456" {
		t.Errorf("expected token=gh-token-456, got %s", cfg.GitHub.Token)
	}
	if cfg.Chat.APIKey != "primary-key" {
		t.Errorf("expected api key=primary-key, got %s", cfg.Chat.APIKey)
	}
	if cfg.Chat.FallbackAPIKey != "backup-key" {
		t.Errorf("expected fallback key=backup-key, got %s", cfg.Chat.FallbackAPIKey)
	}
	if cfg.Terminal.RootPassword != "hunter2" {
		t.Errorf("expected root password=hunter2, got %s", cfg.Terminal.RootPassword)
	}
}

func TestParseCacheTTL_Invalid(t *testing.T) {
	g := GitHubConfig{CacheTTL: "not-a-duration"}
	if g.ParseCacheTTL() != 5*time.Minute {
		t.Error("expected fallback to 5m for invalid duration")
	}
}

func TestLoadMergesUserConfig(t *testing.T) {
	userConfigDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", userConfigDir)

	// Clear env vars that would override config fields.
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("TERMFOLIO_API_KEY", "")
	t.Setenv("TERMFOLIO_FALLBACK_API_KEY", "")
	t.Setenv("TERMFOLIO_ROOT_PASSWORD", "")
	t.Setenv("TERMFOLIO_CONTACT_WEBHOOK", "")

	// Run from a directory without a local termfolio.jsonc.
	cwd := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(cwd); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(orig) })

	tfDir := filepath.Join(userConfigDir, "termfolio")
	if err := os.MkdirAll(tfDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	userConfig := []byte(`{"github":{"username":"user-from-file"},"server":{"port":5555}}`)
	if err := os.WriteFile(filepath.Join(tfDir, FileName), userConfig, 0644); err != nil {
		t.Fatalf("failed to write user config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GitHub.Username != "user-from-file" {
		t.Errorf("expected username=user-from-file, got %s", cfg.GitHub.Username)
	}
	if cfg.Server.Port != 5555 {
		t.Errorf("expected server.port=5555, got %d", cfg.Server.Port)
	}
	// Defaults preserved for fields the user config didn't set.
	if cfg.Terminal.PromptName != "visitor" {
		t.Errorf("expected prompt_name=visitor, got %s", cfg.Terminal.PromptName)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got := ExpandPath("~/outbox")
	want := filepath.Join(home, "outbox")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
	if ExpandPath("/abs/path") != "/abs/path" {
		t.Error("absolute paths must pass through unchanged")
	}
}
