package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/teemow/discal/internal/config"
	"github.com/teemow/discal/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize the Google account that owns the guild calendars",
		Long: `Authorize discal to create calendars and send alert emails with a
Google account.

The command prints a consent URL. Open it, approve the requested scopes and
paste the code shown by Google back into the terminal. The token is stored in
the user cache directory and refreshed automatically.

Requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if account == "" {
				account = cfg.GoogleAccount
			}
			creds := google.Credentials{ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret}
			if err := creds.Validate(); err != nil {
				return err
			}
			return runAuth(cmd.Context(), google.NewFileTokenProvider(creds), account, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Google account name (default from DISCAL_GOOGLE_ACCOUNT)")
	return cmd
}

// authenticator is the part of google.FileTokenProvider the auth flow uses.
type authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, account, code string) error
}

func runAuth(ctx context.Context, auth authenticator, account string, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Open this URL and authorize discal for account %q:\n\n%s\n\n", account, auth.AuthCodeURL(uuid.NewString()))
	fmt.Fprint(out, "Paste the authorization code: ")

	code, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && code == "" {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return fmt.Errorf("authorization code is empty")
	}

	if err := auth.Exchange(ctx, account, code); err != nil {
		return err
	}
	fmt.Fprintf(out, "Token saved for account %q.\n", account)
	return nil
}
