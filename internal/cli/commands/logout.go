package commands

import (
	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/guard"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			a.Follow(a.Session.Logout(cmd.Context()))
			return nil
		},
	}

	return withRoute(cmd, guard.Home)
}
