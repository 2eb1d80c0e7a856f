package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/dvaldez/termfolio/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the user configuration interactively",
	Long: `Launch an interactive form to set up the portfolio: owner identity,
GitHub username, and the terminal prompt name. The result is written to
the user config file; secrets (API keys, tokens) are expected from the
environment and are never written.`,
	Example: `  termfolio init`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Seed defaults from the merged config so re-running keeps values.
		ownerName := appConfig.Owner.Name
		ownerTitle := appConfig.Owner.Title
		username := appConfig.GitHub.Username
		promptName := appConfig.Terminal.PromptName
		agentName := appConfig.Chat.AgentName

		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Your name").
					Value(&ownerName).
					Validate(func(s string) error {
						if s == "" {
							return fmt.Errorf("name is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("Your title").
					Value(&ownerTitle),
				huh.NewInput().
					Title("GitHub username").
					Value(&username).
					Validate(func(s string) error {
						if s == "" {
							return fmt.Errorf("GitHub username is required")
						}
						return nil
					}),
				huh.NewInput().
					Title("Terminal prompt name").
					Value(&promptName),
				huh.NewInput().
					Title("Chat agent name").
					Value(&agentName),
			),
		)

		if err := form.Run(); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}

		settings := map[string]any{
			"owner": map[string]any{
				"name":  ownerName,
				"title": ownerTitle,
			},
			"github": map[string]any{
				"username": username,
			},
			"terminal": map[string]any{
				"prompt_name": promptName,
			},
			"chat": map[string]any{
				"agent_name": agentName,
			},
		}

		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}

		path, err := config.UserConfigPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}
