package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fitdesk/gymadmin/internal/dashboard"
)

func init() {
	var email, password string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Long:  "Sign in with email and password. Missing values are prompted for.",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			return app.Auth.Login(ctx, email, password)
		}),
	}
	loginCmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear cached data",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			return app.Auth.Logout(ctx)
		}),
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, app *dashboard.App, _ []string) error {
			return app.Auth.WhoAmI(ctx)
		}),
	}

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}
