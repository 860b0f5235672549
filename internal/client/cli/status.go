package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and sync state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "=== Authentication Status ===")
				fmt.Fprintln(out)

				st, err := app.Auth.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to check authentication: %w", err)
				}
				if !st.Authenticated {
					fmt.Fprintln(out, "Status: Not authenticated")
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Run 'trendysync login' to authenticate.")
				} else {
					fmt.Fprintln(out, "Status: Authenticated")
					fmt.Fprintf(out, "Email: %s\n", st.Email)
					fmt.Fprintf(out, "Token expires: %s\n", st.ExpiresAt.Format(time.RFC3339))
				}

				syncStatus, err := app.Sync.Status(ctx)
				if err != nil {
					return fmt.Errorf("failed to read sync state: %w", err)
				}
				if err := printSyncStatus(out, syncStatus); err != nil {
					return err
				}
				if syncStatus.PendingMutations > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, "Run 'trendysync sync' to push local changes.")
				}
				return nil
			})
		},
	}
}
