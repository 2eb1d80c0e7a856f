package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvaldez/termfolio/internal/config"
	"github.com/dvaldez/termfolio/internal/logging"
)

var (
	verbose   bool
	appConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:   "termfolio",
		Short: "Terminal-style portfolio engine with a repository-aware chat assistant",
		Long:  `Termfolio runs the command engine behind a terminal-style portfolio website: a session state machine with privilege modes, a GitHub-backed projects listing, a contact wizard, and a chat assistant grounded in your repositories.`,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose)
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		appConfig = cfg
		return nil
	}
}

func Execute() error {
	return rootCmd.Execute()
}
