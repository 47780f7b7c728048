package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Veraticus/the-files-must-flow/internal/category"
	"github.com/Veraticus/the-files-must-flow/internal/dedupe"
	"github.com/Veraticus/the-files-must-flow/internal/engine"
	"github.com/Veraticus/the-files-must-flow/internal/hashing"
	"github.com/Veraticus/the-files-must-flow/internal/learning"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/scan"
	"github.com/Veraticus/the-files-must-flow/internal/service"
	"github.com/Veraticus/the-files-must-flow/internal/storage"
	"github.com/Veraticus/the-files-must-flow/internal/target"
	"github.com/Veraticus/the-files-must-flow/internal/transfer"
)

// resolveTarget expands the target root from an argument or config.
func resolveTarget(arg string) (string, error) {
	root := arg
	if root == "" {
		root = viper.GetString("target.root")
	}
	if root == "" {
		return "", fmt.Errorf("no target root: pass one as an argument or set target.root in config")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target root: %w", err)
	}
	return abs, nil
}

// openStore loads the learning store for a target root.
func openStore(targetRoot string) (*learning.Store, *category.Table, error) {
	table := category.NewTable()
	store, err := learning.Load(targetRoot, table)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load learning store: %w", err)
	}
	return store, table, nil
}

// openJournal opens and migrates the transfer journal for a target root.
func openJournal(ctx context.Context, targetRoot string) (service.Journal, error) {
	journal, err := storage.NewSQLiteJournal(storage.JournalPath(targetRoot))
	if err != nil {
		return nil, err
	}
	if err := journal.Migrate(ctx); err != nil {
		_ = journal.Close()
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}
	return journal, nil
}

// plannerConfig reads planner tunables from flags-backed config.
func plannerConfig(copyMode bool) (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if copyMode {
		cfg.Operation = model.OperationCopy
	}

	mode, err := scan.ParseMode(viper.GetString("scan.mode"))
	if err != nil {
		return engine.Config{}, err
	}
	cfg.ScanMode = mode

	if keySpec := viper.GetString("duplicates.key"); keySpec != "" {
		parts, err := dedupe.ParseKeyParts(keySpec)
		if err != nil {
			return engine.Config{}, err
		}
		cfg.KeyParts = parts
	}
	return cfg, nil
}

// buildPlanner assembles a planner against one target root.
func buildPlanner(store *learning.Store, table *category.Table, journal service.Journal, delegate service.DecisionDelegate, progress service.ProgressSink, cfg engine.Config) (*engine.Planner, error) {
	hasher := hashing.New()

	transferCfg := transfer.DefaultConfig()
	if workers := viper.GetInt("transfer.folder_workers"); workers > 0 {
		transferCfg.FolderWorkers = workers
	}
	if threshold := viper.GetInt64("transfer.small_file_threshold"); threshold > 0 {
		transferCfg.SmallFileThreshold = threshold
	}

	analyzer := target.NewAnalyzer(progress)
	if depth := viper.GetInt("target.max_depth"); depth > 0 {
		analyzer = target.NewAnalyzerWithDepth(progress, depth)
	}

	return engine.New(
		scan.New(),
		dedupe.New(hasher, progress),
		analyzer,
		table,
		store,
		transfer.NewWithConfig(hasher, progress, transferCfg),
		journal,
		delegate,
		cfg,
	)
}
