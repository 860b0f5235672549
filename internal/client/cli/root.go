// Package cli реализует команды trendysync поверх движка синхронизации.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/iudanet/trendysync/internal/client/auth"
	"github.com/iudanet/trendysync/internal/client/sync"
	"github.com/iudanet/trendysync/internal/config"
)

// VersionInfo сведения о сборке, выставляются через ldflags
type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// App зависимости команд, открытые для одного запуска
type App struct {
	Auth    auth.Service
	Sync    sync.Service
	Metrics *sync.Metrics // nil: метрики не экспортируются
	Config  *config.Config
	Logger  *slog.Logger
	Close   func() error
}

// Builder открывает хранилища и собирает App по конфигурации
type Builder func(ctx context.Context, cfg *config.Config) (*App, error)

// RootOptions глобальные флаги и фабрика зависимостей
type RootOptions struct {
	build        Builder
	readPassword func(prompt string) (string, error)
	Version      VersionInfo
	ConfigPath   string
	ServerURL    string
	DataDir      string
}

// NewRootCommand создает корневую команду trendysync
func NewRootCommand(version VersionInfo) *cobra.Command {
	return newRootCommand(&RootOptions{
		Version:      version,
		build:        BuildApp,
		readPassword: readPassword,
	})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trendysync",
		Short: "Offline-first sync client for trendy",
		Long: `trendysync keeps a local copy of your trendy event types, events,
geofences and property definitions, queues local changes while offline
and reconciles them with the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.ServerURL, "server", "", "server URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory for local databases (overrides config)")

	cmd.AddCommand(newLoginCommand(opts))
	cmd.AddCommand(newRegisterCommand(opts))
	cmd.AddCommand(newLogoutCommand(opts))
	cmd.AddCommand(newStatusCommand(opts))
	cmd.AddCommand(newSyncCommand(opts))
	cmd.AddCommand(newBootstrapCommand(opts))
	cmd.AddCommand(newBreakerCommand(opts))
	cmd.AddCommand(newQueueCommand(opts))
	cmd.AddCommand(newVersionCommand(opts))

	return cmd
}

// loadConfig читает конфигурацию и применяет глобальные флаги
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.ServerURL != "" {
		cfg.ServerURL = o.ServerURL
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run собирает App, выполняет fn и закрывает хранилища
func (o *RootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := o.build(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open local data", err)
	}
	defer func() {
		if app.Close == nil {
			return
		}
		if err := app.Close(); err != nil && app.Logger != nil {
			app.Logger.Error("failed to close local data", slog.Any("error", err))
		}
	}()

	return fn(ctx, app)
}

func newVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "trendysync client\n")
			fmt.Fprintf(out, "Version:    %s\n", opts.Version.Version)
			fmt.Fprintf(out, "Build Date: %s\n", opts.Version.BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", opts.Version.GitCommit)
			return nil
		},
	}
}
