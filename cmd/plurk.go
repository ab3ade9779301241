package cmd

import (
	"context"
	"encoding/json"

	"github.com/Dephilia/rpoaurk/internal/adapters/plurk"
	"github.com/spf13/cobra"
)

func newPlurkCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plurk",
		Short: "Post to the timeline",
	}

	cmd.AddCommand(newPlurkAddCmd(app), newPlurkUploadCmd(app))

	return cmd
}

func newPlurkAddCmd(app *app) *cobra.Command {
	var qualifier string

	cmd := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a plurk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := runClientRequest(cmd, app, "Posting plurk...", func(ctx context.Context, client *plurk.Client) (json.RawMessage, error) {
				return client.AddPlurk(ctx, args[0], qualifier)
			})
			if err != nil {
				return err
			}

			return writeJSON(cmd, data)
		},
	}

	cmd.Flags().StringVar(&qualifier, "qualifier", plurk.DefaultQualifier, "Plurk qualifier (says|shares|thinks|...)")

	return cmd
}

func newPlurkUploadCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a picture and print its URLs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := runClientRequest(cmd, app, "Uploading picture...", func(ctx context.Context, client *plurk.Client) (json.RawMessage, error) {
				return client.UploadPicture(ctx, args[0])
			})
			if err != nil {
				return err
			}

			return writeJSON(cmd, data)
		},
	}
}
