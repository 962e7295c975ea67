package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/ui"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			snap := a.Session.Snapshot()
			if !snap.Authenticated() {
				fmt.Fprintln(a.Console.Out, "Not logged in.")
				fmt.Fprintf(a.Console.Out, "\nLog in with: %s\n", ui.CommandFor(guard.Login.Path))
				return nil
			}

			fmt.Fprintf(a.Console.Out, "%s (%s)\n", ui.Bold(snap.Session.DisplayName), snap.Session.Email)
			fmt.Fprintf(a.Console.Out, "  ID:      %s\n", snap.Session.UserID)
			if snap.IsAdmin() {
				fmt.Fprintln(a.Console.Out, "  Role:    Admin")
			} else {
				fmt.Fprintln(a.Console.Out, "  Role:    Voter")
			}
			fmt.Fprintf(a.Console.Out, "  Backend: %s\n", a.Client.BaseURL())
			return nil
		},
	}

	return withRoute(cmd, guard.Home)
}
