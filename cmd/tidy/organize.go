package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-files-must-flow/internal/cli"
	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/service"
)

func organizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize <source> [target]",
		Short: "Organize a directory into a categorized tree",
		Long: `Scan a source directory, classify every file, and move (or copy) each one
into its category folder under the target root. Duplicates and folders are
resolved interactively unless --yes is given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runOrganize,
	}

	cmd.Flags().Bool("copy", false, "copy files instead of moving them")
	cmd.Flags().Bool("dry-run", false, "show the plan without transferring anything")
	cmd.Flags().BoolP("yes", "y", false, "skip confirmation and resolve duplicates without prompting")
	cmd.Flags().String("scan-mode", "", "scan mode (top-level, recurse, files-only)")
	cmd.Flags().String("dup-key", "", "duplicate key parts, comma separated (name, size, hash)")

	_ = viper.BindPFlag("scan.mode", cmd.Flags().Lookup("scan-mode"))
	_ = viper.BindPFlag("duplicates.key", cmd.Flags().Lookup("dup-key"))

	return cmd
}

func runOrganize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	source := args[0]
	targetArg := ""
	if len(args) > 1 {
		targetArg = args[1]
	}
	targetRoot, err := resolveTarget(targetArg)
	if err != nil {
		return err
	}

	copyMode, _ := cmd.Flags().GetBool("copy")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	assumeYes, _ := cmd.Flags().GetBool("yes")

	cfg, err := plannerConfig(copyMode)
	if err != nil {
		return err
	}

	store, table, err := openStore(targetRoot)
	if err != nil {
		return err
	}

	var journal service.Journal
	if !dryRun {
		journal, err = openJournal(ctx, targetRoot)
		if err != nil {
			return err
		}
		defer func() { _ = journal.Close() }()
	}

	prompter := cli.NewPrompter(os.Stdin, os.Stdout)
	var delegate service.DecisionDelegate = prompter
	if assumeYes {
		delegate = cli.NewPresetDelegate("", "")
	}

	planner, err := buildPlanner(store, table, journal, delegate, cli.NoopProgress{}, cfg)
	if err != nil {
		return err
	}

	plan, err := planner.BuildPlan(ctx, source, targetRoot)
	if err != nil {
		return err
	}

	renderPlan(os.Stdout, plan, cfg.Operation)
	if len(plan.Placements)+len(plan.FolderRecords) == 0 {
		fmt.Println(cli.FormatInfo("Nothing to organize."))
		return nil
	}

	if dryRun {
		fmt.Println(cli.FormatInfo("Dry run: nothing was transferred."))
		return nil
	}

	if !assumeYes {
		summary := fmt.Sprintf("%d files and %d folders will be organized into %s.",
			len(plan.Placements), len(plan.FolderRecords), targetRoot)
		ok, err := prompter.ConfirmPlan(ctx, cli.FormatPrompt(summary))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println(cli.FormatInfo("Aborted."))
			return nil
		}
	}

	stats, err := planner.Execute(ctx, plan)
	renderStats(os.Stdout, stats)
	if err != nil {
		common.LogError(err, "organization run failed", common.Fields{"source": plan.SourceDir})
		return common.NewUserError("organize", plan.SourceDir, err)
	}
	common.LogInfo("organization run complete", common.Fields{
		"source":      plan.SourceDir,
		"target":      plan.TargetRoot,
		"transferred": stats.Transferred,
		"failed":      stats.Failed,
	})
	return nil
}
