package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

func init() {
	outboxCmd.AddCommand(outboxListCmd)
	rootCmd.AddCommand(outboxCmd)
}

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Inspect contact submissions",
}

var outboxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contact submissions",
	Long: `Display saved contact-form submissions, newest first.

Submissions arrive from the website's contact wizard and the REST API and
are stored as markdown files in the outbox directory.`,
	Example: `  termfolio outbox list`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subs, err := buildOutbox(appConfig).List()
		if err != nil {
			return fmt.Errorf("listing outbox: %w", err)
		}
		if len(subs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No submissions yet.")
			return nil
		}

		headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
		cellStyle := lipgloss.NewStyle().Padding(0, 1)

		rows := make([][]string, 0, len(subs))
		for _, s := range subs {
			rows = append(rows, []string{
				s.ReceivedAt.Local().Format(time.DateTime),
				s.Name,
				s.ContactOption,
				s.ContactDetails,
				s.Message,
			})
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("RECEIVED", "NAME", "VIA", "DETAILS", "MESSAGE").
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
