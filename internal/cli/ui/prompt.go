package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/castvote-dev/castvote/internal/cli/client"
)

// ErrNonInteractive is returned when input is required but stdin is not a terminal
var ErrNonInteractive = errors.New("stdin is not a terminal")

// IsInteractive reports whether stdin is a terminal
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// ReadSecret prompts for a value without echoing it
func ReadSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", ErrNonInteractive
	}

	fmt.Fprintf(os.Stderr, "%s: ", label)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(secret), nil
}

// ReadLine reads one line from r, showing a default when there is one
func ReadLine(r *bufio.Reader, w io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}

	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	// Input ended: a partial line or the default still answers
	if err != nil && line == "" && def == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// PromptCandidate shows an interactive list for the voter to pick from
func PromptCandidate(candidates []client.Candidate) (*client.Candidate, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no candidates available")
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Name | cyan }} ({{ .Party }})",
		Inactive: "  {{ .Name }} ({{ .Party }})",
		Selected: "{{ .Name | green }}",
		Details: `
{{ "Position:" | faint }}	{{ .Position }}
{{ "Party:" | faint }}	{{ .Party }}`,
	}

	prompt := promptui.Select{
		Label:     "Select a candidate",
		Items:     candidates,
		Templates: templates,
		Size:      10,
	}

	index, _, err := prompt.Run()
	if err != nil {
		return nil, fmt.Errorf("candidate selection cancelled: %w", err)
	}

	return &candidates[index], nil
}

// Confirm asks a yes/no question
func Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}

	if _, err := prompt.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
