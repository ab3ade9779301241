package cmd

import (
	"fmt"
	"time"

	"github.com/Dephilia/rpoaurk/internal/adapters/oauth1"
	"github.com/Dephilia/rpoaurk/internal/application"
	"github.com/Dephilia/rpoaurk/internal/ports"
	"github.com/spf13/cobra"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Plurk OAuth credentials",
	}

	cmd.AddCommand(
		newAuthSetConsumerCmd(app),
		newAuthLoginCmd(app),
		newAuthStatusCmd(app),
		newAuthLogoutCmd(app),
	)

	return cmd
}

func newAuthSetConsumerCmd(app *app) *cobra.Command {
	var consumerKey string
	var consumerSecret string

	cmd := &cobra.Command{
		Use:   "set-consumer",
		Short: "Store the app consumer key and secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.service.SetConsumer(cmd.Context(), application.SetConsumerCommand{
				ConsumerKey:    consumerKey,
				ConsumerSecret: consumerSecret,
			}); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Consumer saved. Run `rpoaurk auth login` to authorize.")
			return err
		},
	}

	cmd.Flags().StringVar(&consumerKey, "key", "", "App consumer key")
	cmd.Flags().StringVar(&consumerSecret, "secret", "", "App consumer secret")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("secret")

	return cmd
}

func newAuthLoginCmd(app *app) *cobra.Command {
	var useCallback bool
	var listenAddr string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize this client with a Plurk account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var verifiers ports.VerifierSource = promptVerifier(cmd.InOrStdin(), cmd.OutOrStdout())
			if useCallback {
				callbackServer, err := oauth1.StartCallbackServer(listenAddr, timeout, func(authorizationURL string) error {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "Please access the auth url: %s\n", authorizationURL)
					return err
				})
				if err != nil {
					return err
				}
				defer func() { _ = callbackServer.Close() }()
				verifiers = callbackServer
			}

			creds, err := app.service.Login(cmd.Context(), verifiers)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Logged in (%s).\n", creds.Stage())
			return err
		},
	}

	cmd.Flags().BoolVar(&useCallback, "callback", false, "Receive the verifier through a local oauth_callback redirect")
	cmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:0", "Listen address of the callback server")
	cmd.Flags().DurationVar(&timeout, "timeout", oauth1.DefaultCallbackTimeout, "How long to wait for the callback")

	return cmd
}

func newAuthStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored authorization state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status, err := app.service.Status(cmd.Context())
			if err != nil {
				return err
			}

			rendered, err := app.statusRenderer(status)
			if err != nil {
				return fmt.Errorf("render status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}
}

func newAuthLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the access token and keep the consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.service.Logout(cmd.Context()); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return err
		},
	}
}
