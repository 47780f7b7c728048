// Package learning maintains the persistent, per-target-root adaptive
// overrides of the static category table, with confidence-scored entries
// learned from user actions and target tree scans.
package learning

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/category"
	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

const (
	// StoreDirName is the per-target-root metadata directory.
	StoreDirName = ".tidy"
	// storeFileName is the learning store file inside StoreDirName.
	storeFileName = "learning.json"
)

// StorePath returns the learning store location for a target root.
func StorePath(targetRoot string) string {
	return filepath.Join(targetRoot, StoreDirName, storeFileName)
}

// Store holds the learned extension mappings for one target root. Mutations
// are write-through: every recorded event is flushed to disk before the
// method returns, so a crash loses at most one event.
type Store struct {
	now        func() time.Time
	table      *category.Table
	entries    map[string]model.LearningEntry
	conflicts  map[string][]model.ConflictRecord
	targetRoot string
	path       string
	mu         sync.Mutex
}

// Load reads the persisted store for targetRoot, seeding defaults for every
// table extension so the store is never empty for a touched target. A
// corrupt or unreadable store degrades to empty rather than failing the
// session.
func Load(targetRoot string, table *category.Table) (*Store, error) {
	if targetRoot == "" {
		return nil, fmt.Errorf("%w: target root is required", common.ErrInvalidConfig)
	}
	if table == nil {
		table = category.NewTable()
	}

	s := &Store{
		targetRoot: targetRoot,
		path:       StorePath(targetRoot),
		table:      table,
		entries:    make(map[string]model.LearningEntry),
		conflicts:  make(map[string][]model.ConflictRecord),
		now:        time.Now,
	}

	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First touch of this target; defaults only.
	case err != nil:
		slog.Warn("learning store unreadable, rebuilding from defaults",
			"path", s.path,
			"error", err)
	default:
		entries, conflicts, decodeErr := decodeStore(data, s.now())
		if decodeErr != nil {
			slog.Warn("learning store corrupted, rebuilding from defaults",
				"path", s.path,
				"error", decodeErr)
		} else {
			s.entries = entries
			s.conflicts = conflicts
		}
	}

	s.syncWithDefaultsLocked()
	return s, nil
}

// TargetRoot returns the root this store is scoped to.
func (s *Store) TargetRoot() string {
	return s.targetRoot
}

// Resolve returns the learned mapping for ext if its confidence clears the
// threshold. Seeded defaults carry no confidence and never resolve; entries
// whose category key has left the table are treated as absent.
func (s *Store) Resolve(ext string) (model.CategoryKey, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[ext]
	if !ok || entry.Source == model.SourceDefault {
		return "", 0, false
	}
	if entry.Confidence < model.ConfidenceThreshold {
		return "", 0, false
	}
	if _, known := s.table.ByKey(entry.Category); !known {
		return "", 0, false
	}
	return entry.Category, entry.Confidence, true
}

// RecordOverride stores an explicit user relocation that contradicts the
// current learned category. Confidence resets to 100.
func (s *Store) RecordOverride(ext string, oldCategory, newCategory model.CategoryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slog.Info("learning override",
		"extension", ext,
		"from", oldCategory,
		"to", newCategory)
	s.entries[ext] = model.LearningEntry{
		Category:   newCategory,
		Confidence: model.ConfidenceOverride,
		Source:     model.SourceUserOverride,
		UpdatedAt:  s.now(),
	}
	return s.persistLocked()
}

// RecordReinforcement bumps confidence when a user action agrees with the
// learned category.
func (s *Store) RecordReinforcement(ext string, cat model.CategoryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	confidence := model.ConfidenceReinforcement
	if entry, ok := s.entries[ext]; ok && entry.Source != model.SourceDefault {
		confidence += entry.Confidence
	}
	if confidence > model.ConfidenceMax {
		confidence = model.ConfidenceMax
	}
	s.entries[ext] = model.LearningEntry{
		Category:   cat,
		Confidence: confidence,
		Source:     model.SourceUserReinforcement,
		UpdatedAt:  s.now(),
	}
	return s.persistLocked()
}

// RecordTeaching stores a brand-new extension taught by the user.
func (s *Store) RecordTeaching(ext string, cat model.CategoryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[ext] = model.LearningEntry{
		Category:   cat,
		Confidence: model.ConfidenceTeaching,
		Source:     model.SourceUserTeaching,
		UpdatedAt:  s.now(),
	}
	return s.persistLocked()
}

// RecordScanInference stores a mapping inferred from an existing target tree,
// with confidence proportional to the number of files backing it. Inference
// never overrides an explicit user signal: a disagreement with a user-sourced
// entry is recorded as a conflict instead.
func (s *Store) RecordScanInference(ext string, cat model.CategoryKey, sampleSize int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[ext]; ok && existing.Source.IsUserDriven() {
		if existing.Category == cat {
			return nil
		}
		return s.recordConflictLocked(ext, cat, model.SourceExistingScan)
	}

	confidence := model.ConfidenceScanMin + sampleSize*5
	if confidence > model.ConfidenceScanMax {
		confidence = model.ConfidenceScanMax
	}
	s.entries[ext] = model.LearningEntry{
		Category:   cat,
		Confidence: confidence,
		Source:     model.SourceExistingScan,
		UpdatedAt:  s.now(),
	}
	return s.persistLocked()
}

// RecordConflict appends a disagreeing suggestion without changing the
// active mapping.
func (s *Store) RecordConflict(ext string, cat model.CategoryKey, source model.LearningSource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordConflictLocked(ext, cat, source)
}

func (s *Store) recordConflictLocked(ext string, cat model.CategoryKey, source model.LearningSource) error {
	slog.Debug("learning conflict recorded",
		"extension", ext,
		"suggested", cat,
		"source", source)
	s.conflicts[ext] = append(s.conflicts[ext], model.ConflictRecord{
		Category:   cat,
		Source:     source,
		RecordedAt: s.now(),
	})
	return s.persistLocked()
}

// Forget removes any learned entry and conflicts for ext, restoring the
// default seed if the category table still claims the extension.
func (s *Store) Forget(ext string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[ext]; !ok && len(s.conflicts[ext]) == 0 {
		return fmt.Errorf("%w: nothing learned for %s", common.ErrNotFound, ext)
	}

	delete(s.entries, ext)
	delete(s.conflicts, ext)
	s.seedDefaultsLocked()
	return s.persistLocked()
}

// SyncWithDefaults backfills table extensions missing from the store and
// drops entries the table no longer defines, but only when they carry no
// user history. Idempotent.
func (s *Store) SyncWithDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncWithDefaultsLocked()
	return s.persistLocked()
}

func (s *Store) syncWithDefaultsLocked() {
	s.seedDefaultsLocked()

	for ext, entry := range s.entries {
		if _, claimed := s.table.ForExtension(ext); claimed {
			continue
		}
		if entry.Source.IsUserDriven() || len(s.conflicts[ext]) > 0 {
			continue
		}
		delete(s.entries, ext)
	}
}

func (s *Store) seedDefaultsLocked() {
	for _, def := range s.table.Definitions() {
		for _, ext := range def.Extensions {
			if _, ok := s.entries[ext]; ok {
				continue
			}
			s.entries[ext] = model.LearningEntry{
				Category:  def.Key,
				Source:    model.SourceDefault,
				UpdatedAt: s.now(),
			}
		}
	}
}

// Entry returns the stored entry for ext, learned or default-seeded.
func (s *Store) Entry(ext string) (model.LearningEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[ext]
	return entry, ok
}

// Extensions returns every stored extension in sorted order.
func (s *Store) Extensions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	exts := make([]string, 0, len(s.entries))
	for ext := range s.entries {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Conflicts returns the recorded conflicts for ext.
func (s *Store) Conflicts(ext string) []model.ConflictRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.ConflictRecord(nil), s.conflicts[ext]...)
}

// Persist writes the full store atomically to its target-scoped location.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	data, err := encodeStore(s.entries, s.conflicts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	write := func() error {
		tmp := s.path + ".tmp"
		if err := os.WriteFile(tmp, data, 0o600); err != nil {
			return &common.RetryableError{Err: err, Retryable: true}
		}
		if err := os.Rename(tmp, s.path); err != nil {
			_ = os.Remove(tmp)
			return &common.RetryableError{Err: err, Retryable: true}
		}
		return nil
	}

	opts := common.RetryOptions{MaxAttempts: 3, InitialDelay: 50 * time.Millisecond, MaxDelay: time.Second}
	if err := common.WithRetry(context.Background(), write, opts); err != nil {
		return fmt.Errorf("failed to persist learning store %s: %w", s.path, err)
	}
	return nil
}
