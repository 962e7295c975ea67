package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/ui"
)

// candidatePicker chooses a candidate interactively
type candidatePicker func([]client.Candidate) (*client.Candidate, error)

// NewVoteCmd creates the vote command
func NewVoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vote [candidate-id]",
		Short: "Cast your vote",
		Long: `Cast your vote for a candidate.

Without a candidate ID an interactive picker is shown. Each voter can vote once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			var candidateID client.ID
			if len(args) == 1 {
				candidateID = client.ID(args[0])
			}

			var pick candidatePicker
			if ui.IsInteractive() {
				pick = ui.PromptCandidate
			}
			return runVote(cmd.Context(), a, candidateID, pick)
		},
	}

	return withRoute(cmd, guard.Vote)
}

func runVote(ctx context.Context, a *app.App, candidateID client.ID, pick candidatePicker) error {
	snap := a.Session.Snapshot()
	if !snap.Authenticated() {
		return fmt.Errorf("not logged in")
	}
	voterID := snap.Session.UserID

	// Independent reads; a failure of one must not cancel the other
	var (
		candidates []client.Candidate
		status     *client.VoteStatus
		g          errgroup.Group
	)
	g.Go(func() error {
		var err error
		candidates, err = a.Client.ListCandidates(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		status, err = a.Client.VoteStatus(ctx, voterID)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}

	if status.HasVoted {
		fmt.Fprintln(a.Console.Out, "You have already cast your vote.")
		if chosen := findCandidate(candidates, status.CandidateID); chosen != nil {
			fmt.Fprintf(a.Console.Out, "  Your vote: %s (%s)\n", chosen.Name, chosen.Party)
		}
		a.Navigate(guard.Results.Path)
		return nil
	}

	var chosen *client.Candidate
	switch {
	case candidateID != "":
		chosen = findCandidate(candidates, candidateID)
		if chosen == nil {
			return fmt.Errorf("candidate %q not found", candidateID)
		}
	case pick != nil:
		var err error
		if chosen, err = pick(candidates); err != nil {
			return err
		}
	default:
		printCandidates(a, candidates, false)
		return fmt.Errorf("candidate ID is required in non-interactive mode (castvote vote <candidate-id>)")
	}

	if _, err := a.Client.CastVote(ctx, voterID, chosen.ID); err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}

	a.Console.Success("Your vote has been cast successfully!")
	fmt.Fprintf(a.Console.Out, "  Voted for: %s (%s)\n", chosen.Name, chosen.Party)
	a.Navigate(guard.Results.Path)
	return nil
}

func findCandidate(candidates []client.Candidate, id client.ID) *client.Candidate {
	for i := range candidates {
		if candidates[i].ID == id {
			return &candidates[i]
		}
	}
	return nil
}
