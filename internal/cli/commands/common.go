package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/guard"
)

const routeAnnotation = "route"

// withRoute binds a command to the view route it renders
func withRoute(cmd *cobra.Command, route guard.Route) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[routeAnnotation] = route.Path
	return cmd
}

// RouteOf returns the route a command renders. Commands without a route
// (version, help) need no session.
func RouteOf(cmd *cobra.Command) (guard.Route, bool) {
	for c := cmd; c != nil; c = c.Parent() {
		if path, ok := c.Annotations[routeAnnotation]; ok {
			return guard.Lookup(path)
		}
	}
	return guard.Route{}, false
}

// appFrom returns the App the root command prepared
func appFrom(cmd *cobra.Command) (*app.App, error) {
	a := app.FromContext(cmd.Context())
	if a == nil {
		return nil, errors.New("command context is not initialized")
	}
	return a, nil
}
