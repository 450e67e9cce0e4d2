package cli

import (
	"fmt"

	"github.com/harrisonrobin/baronboard/pkg/auth"
	"github.com/spf13/cobra"
)

func newAuthCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Drive, Sheets and Calendar",
		Long: `Run the OAuth2 browser flow and cache the token. Place the OAuth client
credentials downloaded from the Google Cloud console at
~/.config/baronboard/credentials.json first. Any cached token is replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			if err := auth.Login(ctx); err != nil {
				return fmt.Errorf("authentication failed: %w", err)
			}
			path, err := auth.TokenPath()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", path)
			return nil
		},
	}
}
