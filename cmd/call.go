package cmd

import (
	"context"

	"github.com/Dephilia/rpoaurk/internal/application"
	"github.com/spf13/cobra"
)

func newCallCmd(app *app) *cobra.Command {
	var params []string
	var files []string

	cmd := &cobra.Command{
		Use:   "call <api_path>",
		Short: "Call any API path and print the JSON response",
		Example: `  rpoaurk call /APP/Timeline/getPlurks --param limit=5
  rpoaurk call /APP/Timeline/uploadPicture --file image=./cat.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paramMap, err := parsePairs("param", params)
			if err != nil {
				return err
			}
			fileMap, err := parsePairs("file", files)
			if err != nil {
				return err
			}

			var result []byte
			err = runRequestSpinner(cmd.Context(), cmd.ErrOrStderr(), "Calling "+args[0]+"...", func(ctx context.Context) error {
				data, callErr := app.service.Call(ctx, application.CallCommand{
					Path:   args[0],
					Params: paramMap,
					Files:  fileMap,
				})
				result = data
				return callErr
			})
			if err != nil {
				return err
			}

			return writeJSON(cmd, result)
		},
	}

	cmd.Flags().StringArrayVar(&params, "param", nil, "Request parameter key=value (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "Multipart file field=path (repeatable)")

	return cmd
}
