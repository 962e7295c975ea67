package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/castvote-dev/castvote/internal/cli/app"
	"github.com/castvote-dev/castvote/internal/cli/client"
	"github.com/castvote-dev/castvote/internal/cli/guard"
	"github.com/castvote-dev/castvote/internal/cli/ui"
)

// DefaultCandidateImage is used when no image URL is given
const DefaultCandidateImage = "https://randomuser.me/api/portraits/men/1.jpg"

var validate = validator.New()

// NewAdminCmd creates the admin command group
func NewAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands (admin role required)",
	}

	candidates := &cobra.Command{
		Use:     "candidates",
		Aliases: []string{"candidate"},
		Short:   "Manage candidates",
	}
	candidates.AddCommand(newAdminListCmd(), newAdminAddCmd(), newAdminRemoveCmd())
	cmd.AddCommand(candidates)

	return withRoute(cmd, guard.Admin)
}

func newAdminListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List candidates with vote counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			return runAdminList(cmd.Context(), a)
		},
	}
}

func runAdminList(ctx context.Context, a *app.App) error {
	candidates, err := a.Client.AdminListCandidates(ctx)
	if err != nil {
		return fmt.Errorf("failed to load candidates: %w", err)
	}

	if len(candidates) == 0 {
		fmt.Fprintln(a.Console.Out, "No candidates found.")
		fmt.Fprintln(a.Console.Out, "\nAdd one with: castvote admin candidates add")
		return nil
	}

	printCandidates(a, candidates, true)
	return nil
}

func newAdminAddCmd() *cobra.Command {
	var form client.NewCandidate

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			// Prompt for whatever was not given as a flag
			in := bufio.NewReader(cmd.InOrStdin())
			fields := []struct {
				label string
				value *string
				def   string
			}{
				{"Name", &form.Name, ""},
				{"Party", &form.Party, ""},
				{"Position", &form.Position, ""},
				{"Image URL", &form.ImageURL, DefaultCandidateImage},
			}
			for _, f := range fields {
				if *f.value != "" || cmd.Flags().Changed(flagName(f.label)) {
					continue
				}
				if *f.value, err = ui.ReadLine(in, a.Console.Out, f.label, f.def); err != nil {
					return err
				}
			}

			return runAdminAdd(cmd.Context(), a, form)
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Candidate name")
	cmd.Flags().StringVar(&form.Party, "party", "", "Party")
	cmd.Flags().StringVar(&form.Position, "position", "", "Position")
	cmd.Flags().StringVar(&form.ImageURL, "image-url", "", "Image URL (default "+DefaultCandidateImage+")")

	return cmd
}

func flagName(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "-")
}

func runAdminAdd(ctx context.Context, a *app.App, form client.NewCandidate) error {
	if form.ImageURL == "" {
		form.ImageURL = DefaultCandidateImage
	}

	if err := validate.Struct(form); err != nil {
		return formError(err)
	}

	created, err := a.Client.AddCandidate(ctx, form)
	if err != nil {
		return fmt.Errorf("failed to add candidate: %w", err)
	}

	a.Console.Success(fmt.Sprintf("Added candidate: %s", created.Name))
	fmt.Fprintf(a.Console.Out, "  ID: %s\n", created.ID)
	return nil
}

// formError lists invalid form fields
func formError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields = append(fields, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "url":
			fields = append(fields, fmt.Sprintf("%s must be a valid URL", strings.ToLower(fe.Field())))
		default:
			fields = append(fields, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return fmt.Errorf("invalid candidate: %s", strings.Join(fields, ", "))
}

func newAdminRemoveCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <candidate-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a candidate",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}

			if !yes {
				if !ui.IsInteractive() {
					return fmt.Errorf("refusing to remove without confirmation in non-interactive mode (use --yes)")
				}
				ok, err := ui.Confirm(fmt.Sprintf("Remove candidate %s", args[0]))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(a.Console.Out, "Cancelled.")
					return nil
				}
			}

			return runAdminRemove(cmd.Context(), a, client.ID(args[0]))
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")

	return cmd
}

func runAdminRemove(ctx context.Context, a *app.App, id client.ID) error {
	if _, err := a.Client.DeleteCandidate(ctx, id); err != nil {
		return fmt.Errorf("failed to remove candidate: %w", err)
	}

	a.Console.Success("Candidate removed")
	return nil
}
