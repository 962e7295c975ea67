package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/tally"
)

// NewResultsCmd creates the results command
func NewResultsCmd() *cobra.Command {
	var watch bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show live election results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if watch {
				return watchResults(cmd.Context(), a, interval)
			}
			return runResults(cmd.Context(), a)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Refresh results until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 10*time.Second, "Refresh interval for --watch")

	return withRoute(cmd, guard.Results)
}

func runResults(ctx context.Context, a *app.App) error {
	results, err := a.Client.Results(ctx)
	if err != nil {
		return fmt.Errorf("failed to load voting results: %w", err)
	}

	renderResults(a.Console.Out, tally.Summarize(results))
	return nil
}

func renderResults(out io.Writer, summary tally.Summary) {
	fmt.Fprintln(out, "Election Results")
	fmt.Fprintf(out, "Live results from all votes cast. Total votes: %d\n\n", summary.Total)

	if len(summary.Rows) == 0 {
		fmt.Fprintln(out, "No candidates found.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCANDIDATE\tPARTY\tVOTES\tSHARE")
	fmt.Fprintln(w, "────\t─────────\t─────\t─────\t─────")

	for i, row := range summary.Rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			row.Rank,
			row.Candidate.Name,
			row.Candidate.Party,
			row.Votes,
			summary.Percent(i),
		)
	}

	w.Flush()
}

// watchResults re-renders results on a schedule until ctx is done or a
// refresh fails.
func watchResults(ctx context.Context, a *app.App, interval time.Duration) error {
	if interval < time.Second {
		return fmt.Errorf("--interval must be at least 1s, got %s", interval)
	}

	if err := runResults(ctx, a); err != nil {
		return err
	}

	parent := ctx
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	scheduler := cron.New()
	_, err := scheduler.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		fmt.Fprintf(a.Console.Out, "\n%s\n", time.Now().Format(time.Kitchen))
		if err := runResults(ctx, a); err != nil {
			cancel(err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}

	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()

	// Interrupts and deadlines end the watch normally
	if parent.Err() != nil {
		return nil
	}
	return context.Cause(ctx)
}
