package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/tidwall/jsonc"
)

// FileName is the JSONC config file name looked up in both config locations.
const FileName = "termfolio.jsonc"

// Load reads and merges configuration from the user config directory and the
// working directory. Resolution order: defaults → user config
// (~/.config/termfolio/termfolio.jsonc) → working-directory termfolio.jsonc →
// environment variable overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	userDir, err := os.UserConfigDir()
	if err == nil {
		userPath := filepath.Join(userDir, "termfolio", FileName)
		if userMap, err := loadJSONC(userPath); err == nil {
			if err := mergeIntoConfig(&cfg, userMap); err != nil {
				return nil, fmt.Errorf("merging user config: %w", err)
			}
		}
	}

	if cwd, err := os.Getwd(); err == nil {
		localPath := filepath.Join(cwd, FileName)
		if localMap, err := loadJSONC(localPath); err == nil {
			if err := mergeIntoConfig(&cfg, localMap); err != nil {
				return nil, fmt.Errorf("merging local config: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// UserConfigPath returns the user-level config file path.
func UserConfigPath() (string, error) {
	userDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(userDir, "termfolio", FileName), nil
}

// loadJSONC reads a JSONC file and returns it as a map.
func loadJSONC(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jsonData := jsonc.ToJSON(data)
	var m map[string]any
	if err := json.Unmarshal(jsonData, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// mergeIntoConfig marshals the config to a map, deep-merges the source map
// over it, then unmarshals back to the Config struct.
func mergeIntoConfig(cfg *Config, src map[string]any) error {
	cfgBytes, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var dst map[string]any
	if err := json.Unmarshal(cfgBytes, &dst); err != nil {
		return err
	}

	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		return err
	}

	merged, err := json.Marshal(dst)
	if err != nil {
		return err
	}
	return json.Unmarshal(merged, cfg)
}

// applyEnvOverrides applies environment variable overrides to the config.
// Secrets are expected to arrive this way in deployed environments.
func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHub.Token = token
	}
	if key := os.Getenv("TERMFOLIO_API_KEY"); key != "" {
		cfg.Chat.APIKey = key
	}
	if key := os.Getenv("TERMFOLIO_FALLBACK_API_KEY"); key != "" {
		cfg.Chat.FallbackAPIKey = key
	}
	if pw := os.Getenv("TERMFOLIO_ROOT_PASSWORD"); pw != "" {
		cfg.Terminal.RootPassword = pw
	}
	if hook := os.Getenv("TERMFOLIO_CONTACT_WEBHOOK"); hook != "" {
		cfg.Server.ContactWebhook = hook
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
