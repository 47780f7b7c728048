package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/the-files-must-flow/internal/cli"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "Show recent transfers for a target root",
		Long:  `Query the transfer journal: what was moved where, when, and whether it committed.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHistory,
	}

	cmd.Flags().Int("limit", 20, "number of transfers to show")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	targetArg := ""
	if len(args) > 0 {
		targetArg = args[0]
	}
	targetRoot, err := resolveTarget(targetArg)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")

	journal, err := openJournal(ctx, targetRoot)
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	records, err := journal.RecentTransfers(ctx, limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println(cli.FormatInfo("No transfers recorded yet."))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("When"),
		headerStyle.Render("Op"),
		headerStyle.Render("Source"),
		headerStyle.Render("Destination"),
		headerStyle.Render("State"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 16),
		strings.Repeat("-", 4),
		strings.Repeat("-", 30),
		strings.Repeat("-", 30),
		strings.Repeat("-", 9))

	for _, r := range records {
		state := string(r.State)
		if r.State == model.StateFailed && r.Error != "" {
			state = fmt.Sprintf("%s (%s)", r.State, r.Error)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.CompletedAt.Format("2006-01-02 15:04"),
			r.Operation,
			r.Source,
			r.Destination,
			state)
	}
	_ = w.Flush()

	counts, err := journal.CountsByState(ctx)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(cli.InfoStyle.Render(fmt.Sprintf(
		"committed: %d, failed: %d",
		counts[model.StateCommitted], counts[model.StateFailed])))
	return nil
}
