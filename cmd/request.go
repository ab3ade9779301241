package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Dephilia/rpoaurk/internal/adapters/plurk"
	"github.com/spf13/cobra"
)

type clientRequest func(ctx context.Context, client *plurk.Client) (json.RawMessage, error)

func runClientRequest(cmd *cobra.Command, app *app, label string, request clientRequest) (json.RawMessage, error) {
	creds, err := app.service.Authorized(cmd.Context())
	if err != nil {
		return nil, err
	}
	client := app.newClient(creds)

	var data json.RawMessage
	err = runRequestSpinner(cmd.Context(), cmd.ErrOrStderr(), label, func(ctx context.Context) error {
		var requestErr error
		data, requestErr = request(ctx, client)
		return requestErr
	})
	if err != nil {
		return nil, err
	}

	return data, nil
}

func writeJSON(cmd *cobra.Command, data json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("format response: %w", err)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), buf.String())
	return err
}

// parsePairs turns repeated key=value flags into a map. Later keys win.
func parsePairs(flag string, pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected key=value", flag, pair)
		}
		result[key] = value
	}

	return result, nil
}
