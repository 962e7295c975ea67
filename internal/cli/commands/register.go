package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/ui"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a voter account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			in := bufio.NewReader(cmd.InOrStdin())
			if name == "" {
				if name, err = ui.ReadLine(in, a.Console.Out, "Name", ""); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = ui.ReadLine(in, a.Console.Out, "Email", ""); err != nil {
					return err
				}
			}
			return runRegister(cmd.Context(), a, name, email, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set CASTVOTE_PASSWORD, will prompt if not provided)")

	return withRoute(cmd, guard.Register)
}

func runRegister(ctx context.Context, a *app.App, name, email, password string) error {
	if name == "" || email == "" {
		return fmt.Errorf("name and email are required")
	}

	if password == "" {
		password = os.Getenv("CASTVOTE_PASSWORD")
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

	nav, err := a.Session.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	a.Follow(nav)
	return nil
}
