package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dvaldez/termfolio/internal/server"
)

var servePortFlag int

func init() {
	serveCmd.Flags().IntVar(&servePortFlag, "port", 0, "Server port (default from config or 4210)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the portfolio backend",
	Long: `Run the HTTP and WebSocket server the portfolio frontend talks to.

Each WebSocket connection gets its own isolated terminal session. The
repository snapshot is refreshed from GitHub in the background and pushed
to connected sessions.`,
	Example: `  termfolio serve
  termfolio serve --port 8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if servePortFlag != 0 {
			cfg.Server.Port = servePortFlag
		}
		if cfg.Server.Port == 0 {
			cfg.Server.Port = 4210
		}

		source := buildSource(cfg)
		chatRelay, err := buildRelay(cfg, source)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.NewServer(cfg, source, chatRelay, buildOutbox(cfg))
		return srv.Run(ctx)
	},
}
