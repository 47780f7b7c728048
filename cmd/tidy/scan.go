package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-files-must-flow/internal/cli"
	"github.com/Veraticus/the-files-must-flow/internal/service"
)

func scanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <source> [target]",
		Short: "Preview how a directory would be organized",
		Long: `Scan a source directory and print the classification plan and duplicate
groups without transferring anything. Equivalent to 'organize --dry-run'.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runScan,
	}

	cmd.Flags().String("scan-mode", "", "scan mode (top-level, recurse, files-only)")
	cmd.Flags().String("dup-key", "", "duplicate key parts, comma separated (name, size, hash)")

	_ = viper.BindPFlag("scan.mode", cmd.Flags().Lookup("scan-mode"))
	_ = viper.BindPFlag("duplicates.key", cmd.Flags().Lookup("dup-key"))

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
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

	cfg, err := plannerConfig(false)
	if err != nil {
		return err
	}

	store, table, err := openStore(targetRoot)
	if err != nil {
		return err
	}

	// The delegate is never consulted while building an inert plan.
	var delegate service.DecisionDelegate = cli.NewPresetDelegate("", "")
	planner, err := buildPlanner(store, table, nil, delegate, cli.NoopProgress{}, cfg)
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
	}
	return nil
}
