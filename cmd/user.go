package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Dephilia/rpoaurk/internal/adapters/plurk"
	"github.com/spf13/cobra"
)

func newMeCmd(app *app) *cobra.Command {
	return newUserCmd(app, "me", "Show the authorized user", func(ctx context.Context, client *plurk.Client) (json.RawMessage, error) {
		return client.Me(ctx)
	})
}

func newProfileCmd(app *app) *cobra.Command {
	return newUserCmd(app, "profile", "Show the profile of the authorized user", func(ctx context.Context, client *plurk.Client) (json.RawMessage, error) {
		return client.OwnProfile(ctx)
	})
}

func newUserCmd(app *app, use, short string, request clientRequest) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := runClientRequest(cmd, app, "Fetching user...", request)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, data)
			}

			rendered, err := app.userRenderer(data)
			if err != nil {
				return fmt.Errorf("render user: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw JSON response")

	return cmd
}
