package logging

import (
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"golang.org/x/term"
)

// Setup initializes the global slog logger using charmbracelet/log as the backend.
// Terminal output gets the colored text format; anything else gets JSON so the
// server can run under a process supervisor with structured log collection.
func Setup(verbose bool) {
	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	})

	if verbose {
		handler.SetLevel(charmlog.DebugLevel)
	} else {
		handler.SetLevel(charmlog.InfoLevel)
	}

	if !isTerminal() {
		handler.SetFormatter(charmlog.JSONFormatter)
	}

	slog.SetDefault(slog.New(handler))
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
