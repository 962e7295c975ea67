package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
)

// NewEndpointCmd creates the endpoint command group
func NewEndpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "endpoint",
		Short: "Show, change or test the backend URL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the backend URL in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.Console.Out, a.Client.BaseURL())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <url>",
		Short: "Change the backend URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			nav, err := a.Session.SetBackendEndpoint(args[0])
			if err != nil {
				return err
			}
			a.Follow(nav)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "check [url]",
		Short: "Test the connection to a backend (defaults to the one in use)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			baseURL := a.Client.BaseURL()
			if len(args) == 1 {
				baseURL = args[0]
			}
			return runEndpointCheck(cmd.Context(), a, baseURL)
		},
	})

	return withRoute(cmd, guard.Home)
}

func runEndpointCheck(ctx context.Context, a *app.App, baseURL string) error {
	fmt.Fprintf(a.Console.Out, "Checking %s...\n", baseURL)

	health := client.CheckHealth(ctx, nil, baseURL)
	if !health.Connected {
		a.Console.Notify(health.Detail, client.SeverityError)
		return fmt.Errorf("backend is not reachable")
	}

	a.Console.Success("Connected")
	return nil
}
