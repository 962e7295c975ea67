package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/commands"
	"github.com/castvote-dev/castvote/internal/cli/ui"
	"github.com/castvote-dev/castvote/internal/config"
	"github.com/castvote-dev/castvote/internal/logger"
)

var version = "dev" // Will be set during build

// NewRootCmd builds the command tree. opts are applied when the App for an
// invocation is created.
func NewRootCmd(opts ...app.Option) *cobra.Command {
	var ephemeral bool

	rootCmd := &cobra.Command{
		Use:   "castvote",
		Short: "castvote - vote from your terminal",
		Long: `castvote CLI - Register, log in, vote and follow the results.

Administrators can also manage the list of candidates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			route, ok := commands.RouteOf(cmd)
			if !ok {
				return nil
			}

			cfg, err := config.LoadCLI()
			if err != nil {
				return err
			}

			logger.InitWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

			appOpts := []app.Option{
				app.WithConsole(&ui.Console{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}),
			}
			if ephemeral {
				appOpts = append(appOpts, app.Ephemeral())
			}
			appOpts = append(appOpts, opts...)

			a, err := app.New(cfg, logger.GetLogger(), appOpts...)
			if err != nil {
				return err
			}
			cmd.SetContext(app.NewContext(cmd.Context(), a))

			return a.Enter(cmd.Context(), route)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only for this invocation")

	rootCmd.AddCommand(commands.NewVersionCmd(version))
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewRegisterCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewCandidatesCmd())
	rootCmd.AddCommand(commands.NewVoteCmd())
	rootCmd.AddCommand(commands.NewResultsCmd())
	rootCmd.AddCommand(commands.NewAdminCmd())
	rootCmd.AddCommand(commands.NewEndpointCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
