package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/manifoldco/promptui"

	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
)

// routeCommands maps view routes to the command that renders them
var routeCommands = map[string]string{
	guard.Home.Path:     "castvote whoami",
	guard.Login.Path:    "castvote login",
	guard.Register.Path: "castvote register",
	guard.Vote.Path:     "castvote vote",
	guard.Results.Path:  "castvote results",
	guard.Admin.Path:    "castvote admin candidates list",
}

// CommandFor returns the command for a route, or "" when the route has none
func CommandFor(route string) string {
	return routeCommands[route]
}

// Console renders notifications and navigation hints on a terminal
type Console struct {
	Out io.Writer
	Err io.Writer
}

// NewConsole returns a console bound to stdout and stderr
func NewConsole() *Console {
	return &Console{Out: os.Stdout, Err: os.Stderr}
}

// Notify prints a toast-style message. Errors go to Err, everything else to Out.
func (c *Console) Notify(message string, severity client.Severity) {
	switch severity {
	case client.SeverityError:
		fmt.Fprintf(c.Err, "%s %s\n", promptui.IconBad, message)
	case client.SeveritySuccess:
		fmt.Fprintf(c.Out, "%s %s\n", promptui.IconGood, message)
	default:
		fmt.Fprintf(c.Out, "%s %s\n", promptui.IconInitial, message)
	}
}

// Success is shorthand for a success notification
func (c *Console) Success(message string) {
	c.Notify(message, client.SeveritySuccess)
}

// Redirect tells the user where the flow continues
func (c *Console) Redirect(route string) {
	switch route {
	case guard.Unauthorized.Path:
		fmt.Fprintln(c.Err, "Access denied: you do not have permission to view this page.")
		fmt.Fprintf(c.Err, "  Return to the vote page with: %s\n", cyan(CommandFor(guard.Vote.Path)))
		return
	}

	cmd := CommandFor(route)
	if cmd == "" {
		return
	}
	fmt.Fprintf(c.Err, "  Next: %s\n", cyan(cmd))
}

func cyan(s string) string {
	return promptui.Styler(promptui.FGCyan)(s)
}

// Bold highlights a value in command output
func Bold(s string) string {
	return promptui.Styler(promptui.FGBold)(s)
}
