package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iudanet/trendysync/internal/client/api"
	"github.com/iudanet/trendysync/internal/client/auth"
)

// PasswordEnv позволяет передать пароль без интерактивного ввода
const PasswordEnv = "TRENDY_PASSWORD"

func newLoginCommand(opts *RootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				email, password, err := opts.credentials(cmd, email)
				if err != nil {
					return err
				}
				st, err := app.Auth.Login(ctx, email, password)
				if err != nil {
					return authError("login failed", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", st.Email)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newRegisterCommand(opts *RootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the server and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				email, password, err := opts.credentials(cmd, email)
				if err != nil {
					return err
				}
				st, err := app.Auth.Register(ctx, email, password)
				if err != nil {
					return authError("registration failed", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "✓ Registered %s\n", st.Email)
				fmt.Fprintln(out, "Run 'trendysync sync' to pull your data.")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Auth.Logout(ctx); err != nil {
					return fmt.Errorf("logout failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
				return nil
			})
		},
	}
}

// credentials спрашивает email (если не задан флагом) и пароль
func (o *RootOptions) credentials(cmd *cobra.Command, email string) (string, string, error) {
	if email == "" {
		fmt.Fprint(cmd.OutOrStdout(), "Email: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		return "", "", NewExitError(ExitCommandError, "email is required")
	}

	if password, ok := os.LookupEnv(PasswordEnv); ok {
		return email, password, nil
	}
	password, err := o.readPassword("Password: ")
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return email, password, nil
}

// readPassword читает пароль с терминала без эха
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// authError переводит ошибки сессии в код ExitAuthRequired
func authError(msg string, err error) error {
	if isAuthError(err) {
		return WrapExitError(ExitAuthRequired, msg, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isAuthError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, api.ErrNoToken) || errors.Is(err, auth.ErrSessionExpired) || api.IsUnauthorized(err)
}
