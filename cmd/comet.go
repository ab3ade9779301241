package cmd

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/Dephilia/rpoaurk/internal/application"
	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/spf13/cobra"
)

func newCometCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comet",
		Short: "Follow realtime events",
	}

	cmd.AddCommand(newCometWatchCmd(app))

	return cmd
}

func newCometWatchCmd(app *app) *cobra.Command {
	var maxEvents int
	var raw bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print comet events of the authorized user until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if maxEvents < 0 {
				return fmt.Errorf("%w: --max must not be negative", domain.ErrConfig)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return app.service.Watch(ctx, application.WatchCommand{MaxEvents: maxEvents}, func(event domain.CometEvent) error {
				if raw {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), string(event.Data))
					return err
				}

				rendered, err := app.eventRenderer(event)
				if err != nil {
					return fmt.Errorf("render event: %w", err)
				}

				_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return err
			})
		},
	}

	cmd.Flags().IntVar(&maxEvents, "max", 0, "Stop after this many events (0 means no limit)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print event payloads as JSON")

	return cmd
}
