package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/the-files-must-flow/internal/service"
)

// Prompter implements the interactive decision delegate over a terminal. One
// prompt is shown per decision; answers are single letters.
type Prompter struct {
	reader *NonBlockingReader
	writer io.Writer
}

// NewPrompter creates a prompter. Nil reader or writer default to stdin and
// stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// DecideDuplicate asks what to do with one duplicate file.
func (p *Prompter) DecideDuplicate(ctx context.Context, filename string) (service.DuplicateDecision, error) {
	content := fmt.Sprintf("%s is a duplicate of a file already being organized.", filename)
	if _, err := fmt.Fprintln(p.writer, RenderBox("Duplicate Found", content)); err != nil {
		return "", fmt.Errorf("failed to write duplicate box: %w", err)
	}
	lines := []string{
		"  [c] Copy it anyway",
		"  [s] Skip it",
		"  [a] Copy this and all remaining duplicates",
		"  [n] Skip this and all remaining duplicates",
	}
	if _, err := fmt.Fprintln(p.writer, strings.Join(lines, "\n")); err != nil {
		return "", fmt.Errorf("failed to write duplicate options: %w", err)
	}

	choice, err := p.promptChoice(ctx, "Choice", []string{"c", "s", "a", "n"})
	if err != nil {
		return "", err
	}

	switch choice {
	case "c":
		return service.DecisionCopy, nil
	case "a":
		return service.DecisionCopyAll, nil
	case "n":
		return service.DecisionSkipAll, nil
	default:
		return service.DecisionSkip, nil
	}
}

// DecideFolderMove asks how to handle one scanned folder.
func (p *Prompter) DecideFolderMove(ctx context.Context, folderName string) (service.FolderMoveDecision, error) {
	content := fmt.Sprintf("%s %s is a folder.", FolderIcon, folderName)
	if _, err := fmt.Fprintln(p.writer, RenderBox("Folder Found", content)); err != nil {
		return "", fmt.Errorf("failed to write folder box: %w", err)
	}
	lines := []string{
		"  [m] Move it intact",
		"  [d] Decompose it into category folders",
		"  [x] Leave it where it is",
	}
	if _, err := fmt.Fprintln(p.writer, strings.Join(lines, "\n")); err != nil {
		return "", fmt.Errorf("failed to write folder options: %w", err)
	}

	choice, err := p.promptChoice(ctx, "Choice", []string{"m", "d", "x"})
	if err != nil {
		return "", err
	}

	switch choice {
	case "d":
		return service.Decompose, nil
	case "x":
		return service.CancelFolderMove, nil
	default:
		return service.MoveIntact, nil
	}
}

// ConfirmPlan shows a yes/no gate before execution.
func (p *Prompter) ConfirmPlan(ctx context.Context, summary string) (bool, error) {
	if _, err := fmt.Fprintln(p.writer, summary); err != nil {
		return false, fmt.Errorf("failed to write plan summary: %w", err)
	}
	choice, err := p.promptChoice(ctx, "Proceed? [y/n]", []string{"y", "n", "yes", "no"})
	if err != nil {
		return false, err
	}
	return choice == "y" || choice == "yes", nil
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if _, err := fmt.Fprintf(p.writer, "%s ", FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		choice := strings.ToLower(strings.TrimSpace(input))
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatWarning(fmt.Sprintf("Please enter one of: %s", strings.Join(validChoices, ", ")))); err != nil {
			return "", fmt.Errorf("failed to write retry message: %w", err)
		}
	}
}
