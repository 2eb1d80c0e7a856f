package cli

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dvaldez/termfolio/internal/outbox"
	"github.com/dvaldez/termfolio/internal/server"
	"github.com/dvaldez/termfolio/internal/terminal"
)

func init() {
	rootCmd.AddCommand(replCmd)
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Run the portfolio terminal locally",
	Long: `Run an interactive session against the same engine the website uses.

Useful for trying out commands, the contact wizard, and the chat assistant
without a browser. Repositories load from GitHub in the background; type
help to see what's available.`,
	Example: `  termfolio repl`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig

		source := buildSource(cfg)
		chatRelay, err := buildRelay(cfg, source)
		if err != nil {
			return err
		}
		submit := outbox.NewStoreSubmitter(buildOutbox(cfg))

		engine := terminal.NewEngine(server.EngineOptions(cfg), chatRelay, submit)

		ctx := cmd.Context()

		// Load the snapshot in the background so the prompt appears instantly.
		if source != nil {
			go func() {
				repos, err := source.ListRepositories(ctx)
				if err != nil {
					slog.Warn("loading repositories", "error", err)
					return
				}
				engine.SetRepositories(repos)
			}()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "termfolio — type help for available commands, Ctrl-D to quit\n\n")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Fprint(out, promptStyle(engine).Render(engine.Prompt())+" ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				return scanner.Err()
			}

			result := engine.Execute(ctx, scanner.Text())
			renderResult(out, result)
		}
	},
}

func promptStyle(e *terminal.Engine) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if color := e.PromptColor(); color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style
}

func renderResult(out io.Writer, result terminal.Result) {
	if result.Clear {
		fmt.Fprint(out, "\033[2J\033[H")
	}
	for _, line := range result.Output {
		fmt.Fprintln(out, line)
	}
	if result.StartDownload {
		fmt.Fprintln(out, "(the website would start a download here)")
	}
	if len(result.Output) > 0 {
		fmt.Fprintln(out)
	}
}
