package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/the-files-must-flow/internal/cli"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/service"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

const timeRound = 10 * time.Millisecond

// renderPlan prints the placement table, folder list, duplicate groups, and
// scan failures for one plan.
func renderPlan(out io.Writer, plan *model.Plan, op model.Operation) {
	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Plan: %s %s → %s", op, plan.SourceDir, plan.TargetRoot)))

	if len(plan.Placements) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			headerStyle.Render("File"),
			headerStyle.Render("Destination"),
			headerStyle.Render("Resolved By"))
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			strings.Repeat("-", 20),
			strings.Repeat("-", 40),
			strings.Repeat("-", 12))
		for _, p := range plan.Placements {
			fmt.Fprintf(w, "%s\t%s\t%s\n", p.Record.Name, p.Destination, p.ResolvedBy)
		}
		_ = w.Flush()
	}

	if len(plan.FolderRecords) > 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render(fmt.Sprintf("\n%d folders need a decision:", len(plan.FolderRecords))))
		for _, folder := range plan.FolderRecords {
			fmt.Fprintf(out, "  %s %s\n", cli.FolderIcon, folder.Name)
		}
	}

	if len(plan.DuplicateGroups) > 0 {
		fmt.Fprintln(out, cli.WarningStyle.Render(fmt.Sprintf("\n%d duplicate groups:", len(plan.DuplicateGroups))))
		for _, group := range plan.DuplicateGroups {
			fmt.Fprintf(out, "  %s × %d\n", group.Representative().Name, len(group.Members))
		}
	}

	if len(plan.ScanFailures) > 0 {
		fmt.Fprintln(out, cli.ErrorStyle.Render(fmt.Sprintf("\n%d entries could not be read:", len(plan.ScanFailures))))
		for i, failure := range plan.ScanFailures {
			if i >= 5 {
				fmt.Fprintf(out, "  ... and %d more\n", len(plan.ScanFailures)-i)
				break
			}
			fmt.Fprintf(out, "  %s: %s\n", failure.Path, failure.Cause)
		}
	}
}

// renderStats prints the outcome of one organization run.
func renderStats(out io.Writer, stats service.OrganizeStats) {
	fmt.Fprintln(out)
	if stats.Failed > 0 {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf(
			"Organized %d of %d items in %s (%d skipped, %d failed)",
			stats.Transferred, stats.Planned, stats.Duration.Round(timeRound), stats.Skipped, stats.Failed)))
	} else {
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
			"Organized %d of %d items in %s (%d skipped)",
			stats.Transferred, stats.Planned, stats.Duration.Round(timeRound), stats.Skipped)))
	}
	if stats.DuplicatesResolved > 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render(fmt.Sprintf("  %d duplicates resolved", stats.DuplicatesResolved)))
	}
	if stats.LearningUpdates > 0 {
		fmt.Fprintln(out, cli.InfoStyle.Render(fmt.Sprintf("  %d learning updates recorded", stats.LearningUpdates)))
	}
}
