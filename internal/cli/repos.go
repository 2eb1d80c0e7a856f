package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reposCmd)
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List the repositories the portfolio shows",
	Long: `Fetch and display the repository snapshot in a table.

Shows the same set the projects command and the chat assistant see:
non-fork, non-archived repositories of the configured user plus any
configured organizations, pinned repositories first.`,
	Example: `  termfolio repos`,
	RunE: func(cmd *cobra.Command, args []string) error {
		source := buildSource(appConfig)
		if source == nil {
			return fmt.Errorf("no GitHub username configured — run termfolio init or set github.username")
		}

		repos, err := source.ListRepositories(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing repositories: %w", err)
		}
		if len(repos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No repositories found.")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(repos))
		for _, r := range repos {
			kind := "personal"
			if r.IsOrganizationRepo {
				kind = r.Owner
			}
			pinned := ""
			if r.Pinned {
				pinned = "*"
			}
			rows = append(rows, []string{
				r.Name, kind, strings.Join(r.Languages, ", "), pinned, r.Description,
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("NAME", "OWNER", "LANGUAGES", "PINNED", "DESCRIPTION").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			})

		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	},
}
