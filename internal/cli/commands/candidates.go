package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
)

// NewCandidatesCmd creates the candidates command
func NewCandidatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "candidates [id]",
		Short: "List candidates, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				return runShowCandidate(cmd.Context(), a, client.ID(args[0]))
			}
			return runListCandidates(cmd.Context(), a)
		},
	}

	return withRoute(cmd, guard.Vote)
}

func runListCandidates(ctx context.Context, a *app.App) error {
	candidates, err := a.Client.ListCandidates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}

	if len(candidates) == 0 {
		fmt.Fprintln(a.Console.Out, "No candidates found.")
		return nil
	}

	printCandidates(a, candidates, false)
	return nil
}

func runShowCandidate(ctx context.Context, a *app.App, id client.ID) error {
	candidate, err := a.Client.GetCandidate(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load candidate: %w", err)
	}

	fmt.Fprintf(a.Console.Out, "%s\n", candidate.Name)
	fmt.Fprintf(a.Console.Out, "  ID:       %s\n", candidate.ID)
	fmt.Fprintf(a.Console.Out, "  Party:    %s\n", candidate.Party)
	fmt.Fprintf(a.Console.Out, "  Position: %s\n", candidate.Position)
	if candidate.ImageURL != "" {
		fmt.Fprintf(a.Console.Out, "  Image:    %s\n", candidate.ImageURL)
	}
	return nil
}

// printCandidates renders candidates as a table
func printCandidates(a *app.App, candidates []client.Candidate, withVotes bool) {
	w := tabwriter.NewWriter(a.Console.Out, 0, 0, 2, ' ', 0)
	if withVotes {
		fmt.Fprintln(w, "ID\tNAME\tPARTY\tPOSITION\tVOTES")
		fmt.Fprintln(w, "──\t────\t─────\t────────\t─────")
	} else {
		fmt.Fprintln(w, "ID\tNAME\tPARTY\tPOSITION")
		fmt.Fprintln(w, "──\t────\t─────\t────────")
	}

	for _, c := range candidates {
		if withVotes {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Party, c.Position, c.VoteCount)
		} else {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Party, c.Position)
		}
	}

	w.Flush()
}
