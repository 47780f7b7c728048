// Package engine composes scanning, duplicate detection, classification, and
// transfer into full organization runs.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/category"
	"github.com/Veraticus/the-files-must-flow/internal/classify"
	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/dedupe"
	"github.com/Veraticus/the-files-must-flow/internal/learning"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/scan"
	"github.com/Veraticus/the-files-must-flow/internal/service"
	"github.com/Veraticus/the-files-must-flow/internal/target"
	"github.com/Veraticus/the-files-must-flow/internal/transfer"
)

// Config holds configuration options for the planner.
type Config struct {
	Operation model.Operation
	ScanMode  scan.Mode
	KeyParts  []dedupe.KeyPart
}

// DefaultConfig returns the default planner configuration: move files,
// top-level scan, duplicates keyed by name and size.
func DefaultConfig() Config {
	return Config{
		Operation: model.OperationMove,
		ScanMode:  scan.ModeTopLevel,
		KeyParts:  []dedupe.KeyPart{dedupe.KeyName, dedupe.KeySize},
	}
}

// Planner builds and executes organization plans for one target root.
type Planner struct {
	walker   *scan.Walker
	detector *dedupe.Detector
	analyzer *target.Analyzer
	table    *category.Table
	store    *learning.Store
	transfer *transfer.Engine
	journal  service.Journal
	delegate service.DecisionDelegate
	cfg      Config
}

// New creates a planner with the given dependencies. The journal may be nil
// when history recording is disabled; everything else is required.
func New(
	walker *scan.Walker,
	detector *dedupe.Detector,
	analyzer *target.Analyzer,
	table *category.Table,
	store *learning.Store,
	engine *transfer.Engine,
	journal service.Journal,
	delegate service.DecisionDelegate,
	cfg Config,
) (*Planner, error) {
	if walker == nil || detector == nil || analyzer == nil || engine == nil {
		return nil, fmt.Errorf("%w: planner requires walker, detector, analyzer, and transfer engine", common.ErrMissingConfig)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: planner requires a learning store", common.ErrMissingConfig)
	}
	if delegate == nil {
		return nil, fmt.Errorf("%w: planner requires a decision delegate", common.ErrMissingConfig)
	}
	if cfg.Operation == "" {
		cfg.Operation = model.OperationMove
	}
	if cfg.ScanMode == "" {
		cfg.ScanMode = scan.ModeTopLevel
	}
	if len(cfg.KeyParts) == 0 {
		cfg.KeyParts = DefaultConfig().KeyParts
	}
	if table == nil {
		table = category.NewTable()
	}
	return &Planner{
		walker:   walker,
		detector: detector,
		analyzer: analyzer,
		table:    table,
		store:    store,
		transfer: engine,
		journal:  journal,
		delegate: delegate,
		cfg:      cfg,
	}, nil
}

// BuildPlan scans sourceDir and maps every unique record to a destination
// under targetRoot. The plan is inert; nothing is transferred.
func (p *Planner) BuildPlan(ctx context.Context, sourceDir, targetRoot string) (*model.Plan, error) {
	sourceAbs, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source %s: %w", sourceDir, err)
	}
	targetAbs, err := filepath.Abs(targetRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve target %s: %w", targetRoot, err)
	}

	scanned, err := p.walker.Scan(ctx, sourceAbs, p.cfg.ScanMode)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", sourceAbs, err)
	}

	grouped, err := p.detector.Group(ctx, scanned.Records, p.cfg.KeyParts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect duplicates: %w", err)
	}

	// The source directory is excluded so the analyzer never profiles the
	// tree being organized out of existence.
	profiles, err := p.analyzer.Analyze(ctx, targetAbs, []string{sourceAbs})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze target %s: %w", targetAbs, err)
	}

	p.inferFromProfiles(profiles)

	classifier := classify.New(targetAbs, p.table, p.store, profiles)

	plan := &model.Plan{
		TargetRoot:      targetAbs,
		SourceDir:       sourceAbs,
		DuplicateGroups: grouped.Groups,
		ScanFailures:    append(scanned.Failures, grouped.Failures...),
	}

	classifyInto := func(record model.FileRecord) {
		if record.IsFolder {
			plan.FolderRecords = append(plan.FolderRecords, record)
			return
		}
		plan.Placements = append(plan.Placements, classifier.Classify(record))
	}

	for _, record := range grouped.Unique {
		classifyInto(record)
	}
	// Each duplicate group still needs one representative placed; the rest
	// of the group is resolved by the duplicate policy during execution.
	for _, group := range grouped.Groups {
		classifyInto(group.Representative())
	}

	slog.Info("plan built",
		"source", sourceAbs,
		"target", targetAbs,
		"placements", len(plan.Placements),
		"folders", len(plan.FolderRecords),
		"duplicate_groups", len(plan.DuplicateGroups),
		"scan_failures", len(plan.ScanFailures))
	return plan, nil
}

// Organize is the full pipeline: build a plan for sourceDir and execute it.
func (p *Planner) Organize(ctx context.Context, sourceDir, targetRoot string) (service.OrganizeStats, error) {
	plan, err := p.BuildPlan(ctx, sourceDir, targetRoot)
	if err != nil {
		return service.OrganizeStats{}, err
	}
	return p.Execute(ctx, plan)
}

// learningEvent is a deferred learning update observed during execution.
// Transfer workers never touch the store; events are applied sequentially
// after the batch.
type learningEvent struct {
	extension string
	category  model.CategoryKey
	teach     bool
}

// Execute performs every transfer in the plan, resolving duplicates and
// folder moves through the decision delegate, then applies the accumulated
// learning updates and journals the outcomes.
func (p *Planner) Execute(ctx context.Context, plan *model.Plan) (service.OrganizeStats, error) {
	start := time.Now()
	stats := service.OrganizeStats{Planned: len(plan.Placements) + len(plan.FolderRecords)}
	var events []learningEvent

	for _, placement := range plan.Placements {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		p.executePlacement(ctx, placement, &stats, &events)
	}

	if err := p.resolveDuplicates(ctx, plan, &stats, &events); err != nil {
		stats.Duration = time.Since(start)
		return stats, err
	}

	if err := p.moveFolders(ctx, plan, &stats, &events); err != nil {
		stats.Duration = time.Since(start)
		return stats, err
	}

	p.applyLearning(events, &stats)

	stats.Duration = time.Since(start)
	slog.Info("organization run finished",
		"transferred", stats.Transferred,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"duplicates_resolved", stats.DuplicatesResolved,
		"learning_updates", stats.LearningUpdates,
		"duration", stats.Duration)
	return stats, nil
}

// executePlacement transfers one classified file and records the outcome.
func (p *Planner) executePlacement(ctx context.Context, placement model.Placement, stats *service.OrganizeStats, events *[]learningEvent) {
	record := placement.Record
	task := model.TransferTask{
		Source:       record.Path,
		Destination:  availableName(filepath.Join(placement.Destination, record.Name)),
		Operation:    p.cfg.Operation,
		ExpectedSize: record.SizeBytes,
		ExpectedHash: record.ContentHash,
	}

	startedAt := time.Now()
	var result model.TransferResult
	if p.cfg.Operation == model.OperationCopy {
		result = p.transfer.Copy(ctx, task)
	} else {
		result = p.transfer.Move(ctx, task)
	}

	p.journalResult(ctx, task, result, startedAt)

	if result.State != model.StateCommitted {
		stats.Failed++
		slog.Warn("transfer failed",
			"source", task.Source,
			"destination", task.Destination,
			"error", result.Err)
		return
	}

	stats.Transferred++
	if placement.ResolvedBy != model.ResolvedByLearning && record.Extension != "" {
		// A completed default or folder-matched placement is a weak signal:
		// it can reinforce or contest an already-learned entry but carries
		// no user intent on its own.
		*events = append(*events, learningEvent{
			extension: record.Extension,
			category:  placement.Category,
			teach:     false,
		})
	}
}

// inferFromProfiles learns from the target tree itself: a folder whose name
// maps to a known category teaches the extensions found inside it, but only
// those the static table does not already claim. Inference strength grows
// with the number of backing files; disagreement with a user-sourced entry
// is recorded as a conflict, never applied.
func (p *Planner) inferFromProfiles(profiles []model.TargetFolderProfile) {
	for _, profile := range profiles {
		def, ok := p.table.ForFolderName(filepath.Base(profile.AbsolutePath))
		if !ok {
			continue
		}
		for ext, count := range profile.ExtensionCounts {
			if ext == "" {
				continue
			}
			if _, claimed := p.table.ForExtension(ext); claimed {
				continue
			}
			if err := p.store.RecordScanInference(ext, def.Key, count); err != nil {
				slog.Warn("failed to record scan inference",
					"extension", ext,
					"category", def.Key,
					"error", err)
			}
		}
	}
}

// resolveDuplicates walks every duplicate group's non-representative members
// through the duplicate policy. CopyAll and SkipAll latch for the remainder
// of the run.
func (p *Planner) resolveDuplicates(ctx context.Context, plan *model.Plan, stats *service.OrganizeStats, events *[]learningEvent) error {
	var latched service.DuplicateDecision

	classifier := p.classifierFor(ctx, plan)

	for _, group := range plan.DuplicateGroups {
		for _, member := range group.Members[1:] {
			if err := ctx.Err(); err != nil {
				return err
			}

			decision := latched
			if decision == "" {
				var err error
				decision, err = p.delegate.DecideDuplicate(ctx, member.Name)
				if err != nil {
					return fmt.Errorf("duplicate decision failed for %s: %w", member.Name, err)
				}
			}

			switch decision {
			case service.DecisionCopyAll:
				latched = service.DecisionCopyAll
				decision = service.DecisionCopy
			case service.DecisionSkipAll:
				latched = service.DecisionSkipAll
				decision = service.DecisionSkip
			}

			stats.DuplicatesResolved++
			if decision == service.DecisionSkip {
				stats.Skipped++
				continue
			}

			p.executePlacement(ctx, classifier.Classify(member), stats, events)
		}
	}
	return nil
}

// moveFolders resolves each scanned folder through the folder move policy.
func (p *Planner) moveFolders(ctx context.Context, plan *model.Plan, stats *service.OrganizeStats, events *[]learningEvent) error {
	for _, folder := range plan.FolderRecords {
		if err := ctx.Err(); err != nil {
			return err
		}

		decision, err := p.delegate.DecideFolderMove(ctx, folder.Name)
		if err != nil {
			return fmt.Errorf("folder move decision failed for %s: %w", folder.Name, err)
		}

		switch decision {
		case service.CancelFolderMove:
			stats.Skipped++
		case service.Decompose:
			if err := p.decomposeFolder(ctx, plan, folder, stats, events); err != nil {
				return err
			}
		default:
			p.moveFolderIntact(ctx, plan, folder, stats)
		}
	}
	return nil
}

// moveFolderIntact relocates a folder unchanged into the folder bucket.
func (p *Planner) moveFolderIntact(ctx context.Context, plan *model.Plan, folder model.FileRecord, stats *service.OrganizeStats) {
	destination := availableName(filepath.Join(plan.TargetRoot, model.FolderBucket, folder.Name))
	startedAt := time.Now()

	result, err := p.transfer.MoveFolder(ctx, folder.Path, destination)
	state := model.StateCommitted
	errText := ""
	if err != nil {
		state = model.StateFailed
		errText = err.Error()
		stats.Failed++
	} else {
		stats.Transferred++
		stats.Failed += len(result.Failures)
	}

	p.journalRecord(ctx, service.TransferRecord{
		Operation:   model.OperationMove,
		Source:      folder.Path,
		Destination: destination,
		State:       state,
		Error:       errText,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
	})
}

// decomposeFolder splits a folder's files into categorized destinations.
// Every extension observed records a teaching event; a deliberate
// folder-to-category move is one of the strongest learning signals. The
// source folder itself is only removed when it ends up empty.
func (p *Planner) decomposeFolder(ctx context.Context, plan *model.Plan, folder model.FileRecord, stats *service.OrganizeStats, events *[]learningEvent) error {
	contents, err := p.walker.Scan(ctx, folder.Path, scan.ModeRecurse)
	if err != nil {
		return fmt.Errorf("failed to scan folder %s: %w", folder.Path, err)
	}

	classifier := p.classifierFor(ctx, plan)
	taught := make(map[string]model.CategoryKey)

	for _, record := range contents.Records {
		if err := ctx.Err(); err != nil {
			return err
		}

		placement := classifier.Classify(record)
		p.executePlacement(ctx, placement, stats, events)
		if record.Extension != "" {
			taught[record.Extension] = placement.Category
		}
	}

	for ext, cat := range taught {
		*events = append(*events, learningEvent{extension: ext, category: cat, teach: true})
	}

	removeIfEmpty(folder.Path)
	return nil
}

// classifierFor builds a classifier against the plan's target, re-profiling
// the tree so folders created earlier in the run are visible.
func (p *Planner) classifierFor(ctx context.Context, plan *model.Plan) *classify.Classifier {
	profiles, err := p.analyzer.Analyze(ctx, plan.TargetRoot, []string{plan.SourceDir})
	if err != nil {
		slog.Warn("target re-analysis failed, classifying without profiles", "error", err)
		profiles = nil
	}
	return classify.New(plan.TargetRoot, p.table, p.store, profiles)
}

// applyLearning feeds accumulated events into the learning store, strongest
// signal semantics per extension: teaching events from deliberate folder
// decomposition override passive placements.
func (p *Planner) applyLearning(events []learningEvent, stats *service.OrganizeStats) {
	for _, event := range events {
		applied, err := p.ObserveUserPlacement(event.extension, event.category, event.teach)
		if err != nil {
			slog.Warn("failed to apply learning update",
				"extension", event.extension,
				"category", event.category,
				"error", err)
			continue
		}
		if applied {
			stats.LearningUpdates++
		}
	}
}

// ObserveUserPlacement records one extension-to-category placement outcome.
// Strong signals come from deliberate user actions and may teach or override;
// weak signals come from placements the run resolved on its own and only
// reinforce or contest an entry that already exists. Returns whether the
// store changed.
func (p *Planner) ObserveUserPlacement(ext string, cat model.CategoryKey, strong bool) (bool, error) {
	if ext == "" {
		return false, nil
	}

	entry, ok := p.store.Entry(ext)
	if !ok || entry.Source == model.SourceDefault {
		if !strong {
			// An automated placement must not mint a user-taught entry.
			return false, nil
		}
		return true, p.store.RecordTeaching(ext, cat)
	}
	if entry.Category == cat {
		return true, p.store.RecordReinforcement(ext, cat)
	}
	if strong {
		return true, p.store.RecordOverride(ext, entry.Category, cat)
	}
	// A weak signal that disagrees with learned state is noted, not applied.
	return true, p.store.RecordConflict(ext, cat, model.SourceUserReinforcement)
}

func (p *Planner) journalResult(ctx context.Context, task model.TransferTask, result model.TransferResult, startedAt time.Time) {
	errText := ""
	if result.Err != nil {
		errText = result.Err.Error()
	}
	p.journalRecord(ctx, service.TransferRecord{
		Operation:   task.Operation,
		Source:      task.Source,
		Destination: task.Destination,
		State:       result.State,
		Bytes:       result.BytesCopied,
		Hash:        result.Hash,
		Error:       errText,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
	})
}

func (p *Planner) journalRecord(ctx context.Context, record service.TransferRecord) {
	if p.journal == nil {
		return
	}
	if err := p.journal.RecordTransfer(ctx, record); err != nil {
		slog.Warn("failed to journal transfer",
			"source", record.Source,
			"error", err)
	}
}
