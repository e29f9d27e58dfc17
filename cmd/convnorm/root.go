package main

import (
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/convnorm/internal/config"
)

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:   "convnorm",
		Short: "Normalize Claude, Kura and OpenAI chat exports into one conversation schema",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cfg.LogLevel)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(&cfg), newNormalizeCmd())
	return root
}
