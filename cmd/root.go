package cmd

import (
	"github.com/Dephilia/rpoaurk/internal/logging"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var logLevel string
	var logFormat string

	rootCmd := &cobra.Command{
		Use:           "rpoaurk",
		Short:         "Plurk API client: OAuth login, API calls and realtime comet events",
		Long:          "rpoaurk authorizes against Plurk with three-legged OAuth 1.0a, signs and sends API requests, and follows the realtime comet channel of the authorized user.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logging.InitLogger(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOrDefault("RPOAURK_LOG_LEVEL", logging.DefaultLevel), "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", envOrDefault("RPOAURK_LOG_FORMAT", logging.DefaultFormat), "Log format (text|json)")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAuthCmd(app),
		newMeCmd(app),
		newProfileCmd(app),
		newPlurkCmd(app),
		newCallCmd(app),
		newCometCmd(app),
	)

	return rootCmd
}
