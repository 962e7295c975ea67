package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/session"
	"github.com/castvote-dev/castvote/internal/cli/ui"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string
	var force bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the voting backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return runLogin(cmd.Context(), a, email, password, force)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set CASTVOTE_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set CASTVOTE_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&force, "force", false, "Log in again even if a session exists")

	return withRoute(cmd, guard.Login)
}

func runLogin(ctx context.Context, a *app.App, email, password string, force bool) error {
	if snap := a.Session.Snapshot(); snap.Authenticated() && !force {
		fmt.Fprintf(a.Console.Out, "Already logged in as %s (%s)\n", snap.Session.DisplayName, snap.Session.Email)
		a.Navigate(guard.Vote.Path)
		return nil
	}

	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("CASTVOTE_EMAIL")
	}
	if password == "" {
		password = os.Getenv("CASTVOTE_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or CASTVOTE_EMAIL env var)")
	}

	if password == "" {
		var err error
		password, err = ui.ReadSecret("Password")
		if errors.Is(err, ui.ErrNonInteractive) {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or CASTVOTE_PASSWORD env var)")
		}
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(a.Console.Out, "Logging in to %s...\n", a.Client.BaseURL())

	nav, err := a.Session.Login(ctx, email, password)
	if err != nil {
		a.Console.Notify(session.LoginFailureMessage(err), client.SeverityError)
		return fmt.Errorf("login failed: %w", err)
	}

	snap := a.Session.Snapshot()
	fmt.Fprintf(a.Console.Out, "  User: %s (%s)\n", snap.Session.DisplayName, snap.Session.Email)
	if snap.IsAdmin() {
		fmt.Fprintln(a.Console.Out, "  Role: Admin")
	}

	a.Follow(nav)
	return nil
}
