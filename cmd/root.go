package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifier/internal/config"
)

// NewRootCmd returns the notifier root command with every subcommand attached.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:           "notifier",
		Short:         "Notification orchestrator",
		Long:          "Register named notification triggers and fire them over email, Slack or webhooks.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Data directory (overrides NOTIFIER_DATA_DIR env var)")

	root.AddCommand(NewServeCmd(cfg))
	root.AddCommand(NewImportCmd(cfg))
	root.AddCommand(NewVersionCmd())
	return root
}

// Execute loads the configuration and runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
