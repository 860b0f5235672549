package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iudanet/trendysync/internal/client/sync"
)

func newSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle: bootstrap or pull, then push",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				return runSync(ctx, cmd, app)
			})
		},
	}
}

func newBootstrapCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Drop the cursor and re-download everything from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Sync.ForceBootstrap(ctx); err != nil {
					return fmt.Errorf("failed to schedule bootstrap: %w", err)
				}
				return runSync(ctx, cmd, app)
			})
		},
	}
}

func newBreakerCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breaker",
		Short: "Inspect or reset the rate limit circuit breaker",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Clear the breaker so the next sync runs immediately",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Sync.ResetCircuitBreaker(ctx); err != nil {
					return fmt.Errorf("failed to reset circuit breaker: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Circuit breaker reset")
				return nil
			})
		},
	})
	return cmd
}

// runSync выполняет цикл, печатает итог и экспортирует метрики
func runSync(ctx context.Context, cmd *cobra.Command, app *App) error {
	res := app.Sync.PerformSync(ctx)

	if app.Metrics != nil && app.Config != nil && app.Config.Metrics.Textfile != "" {
		if err := app.Metrics.WriteTextfile(app.Config.Metrics.Textfile); err != nil && app.Logger != nil {
			app.Logger.Warn("metrics export failed", slog.Any("error", err))
		}
	}

	if err := printResult(cmd.OutOrStdout(), res); err != nil {
		return err
	}

	if res.Outcome == sync.OutcomeSuccess {
		return nil
	}
	if err := res.Err(); isAuthError(err) {
		return WrapExitError(ExitAuthRequired, "sync failed, log in again", err)
	}
	return WrapExitError(ExitFailure, fmt.Sprintf("sync finished with outcome %s", res.Outcome), res.Err())
}
