package learning

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/the-files-must-flow/internal/category"
	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

func loadTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Load(t.TempDir(), category.NewTable())
	if err != nil {
		t.Fatalf("Failed to load store: %v", err)
	}
	return store
}

func TestLoadSeedsDefaults(t *testing.T) {
	store := loadTestStore(t)

	entry, ok := store.Entry(".pdf")
	if !ok {
		t.Fatal("store should seed .pdf from the category table")
	}
	if entry.Source != model.SourceDefault {
		t.Errorf("seed source = %q, want %q", entry.Source, model.SourceDefault)
	}

	// Seeded defaults carry no applicable learning.
	if _, _, ok := store.Resolve(".pdf"); ok {
		t.Error("default seed should not resolve as learned")
	}
}

func TestTeachingAndResolve(t *testing.T) {
	store := loadTestStore(t)

	if err := store.RecordTeaching(".xyz", "document_files"); err != nil {
		t.Fatalf("RecordTeaching failed: %v", err)
	}

	cat, confidence, ok := store.Resolve(".xyz")
	if !ok {
		t.Fatal("taught extension should resolve")
	}
	if cat != "document_files" || confidence != model.ConfidenceTeaching {
		t.Errorf("Resolve = (%q, %d), want (document_files, %d)", cat, confidence, model.ConfidenceTeaching)
	}
}

func TestReinforcementIncrementsAndCaps(t *testing.T) {
	store := loadTestStore(t)

	if err := store.RecordTeaching(".xyz", "image_files"); err != nil {
		t.Fatalf("RecordTeaching failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := store.RecordReinforcement(".xyz", "image_files"); err != nil {
			t.Fatalf("RecordReinforcement failed: %v", err)
		}
	}

	entry, _ := store.Entry(".xyz")
	if entry.Confidence != model.ConfidenceMax {
		t.Errorf("confidence after repeated reinforcement = %d, want %d", entry.Confidence, model.ConfidenceMax)
	}

	_, confidence, _ := store.Resolve(".xyz")
	if confidence != model.ConfidenceMax {
		t.Errorf("resolved confidence = %d, want capped at %d", confidence, model.ConfidenceMax)
	}
}

func TestOverrideResets(t *testing.T) {
	store := loadTestStore(t)

	if err := store.RecordTeaching(".xyz", "image_files"); err != nil {
		t.Fatalf("RecordTeaching failed: %v", err)
	}
	if err := store.RecordOverride(".xyz", "image_files", "document_files"); err != nil {
		t.Fatalf("RecordOverride failed: %v", err)
	}

	cat, confidence, ok := store.Resolve(".xyz")
	if !ok || cat != "document_files" || confidence != model.ConfidenceOverride {
		t.Errorf("Resolve after override = (%q, %d, %v), want (document_files, 100, true)", cat, confidence, ok)
	}
}

func TestScanInferenceNeverOverridesUserSignal(t *testing.T) {
	store := loadTestStore(t)

	if err := store.RecordTeaching(".xyz", "document_files"); err != nil {
		t.Fatalf("RecordTeaching failed: %v", err)
	}
	if err := store.RecordScanInference(".xyz", "image_files", 12); err != nil {
		t.Fatalf("RecordScanInference failed: %v", err)
	}

	cat, _, _ := store.Resolve(".xyz")
	if cat != "document_files" {
		t.Errorf("scan inference silently overrode a user signal: %q", cat)
	}

	conflicts := store.Conflicts(".xyz")
	if len(conflicts) != 1 {
		t.Fatalf("expected 1 recorded conflict, got %d", len(conflicts))
	}
	if conflicts[0].Category != "image_files" || conflicts[0].Source != model.SourceExistingScan {
		t.Errorf("conflict = %+v, want image_files from existing_structure_scan", conflicts[0])
	}
}

func TestScanInferenceConfidenceScalesWithSampleSize(t *testing.T) {
	store := loadTestStore(t)

	if err := store.RecordScanInference(".aaa", "video_files", 1); err != nil {
		t.Fatalf("RecordScanInference failed: %v", err)
	}
	if err := store.RecordScanInference(".bbb", "video_files", 50); err != nil {
		t.Fatalf("RecordScanInference failed: %v", err)
	}

	small, _ := store.Entry(".aaa")
	large, _ := store.Entry(".bbb")
	if small.Confidence != model.ConfidenceScanMin+5 {
		t.Errorf("small sample confidence = %d, want %d", small.Confidence, model.ConfidenceScanMin+5)
	}
	if large.Confidence != model.ConfidenceScanMax {
		t.Errorf("large sample confidence = %d, want capped at %d", large.Confidence, model.ConfidenceScanMax)
	}
}

func TestResolveRejectsUnknownCategoryKey(t *testing.T) {
	store := loadTestStore(t)

	if err := store.RecordTeaching(".xyz", "category_that_left_the_table"); err != nil {
		t.Fatalf("RecordTeaching failed: %v", err)
	}
	if _, _, ok := store.Resolve(".xyz"); ok {
		t.Error("entry with an unknown category key should be treated as absent")
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	root := t.TempDir()
	table := category.NewTable()

	store, err := Load(root, table)
	if err != nil {
		t.Fatalf("Failed to load store: %v", err)
	}
	if err := store.RecordTeaching(".xyz", "audio_files"); err != nil {
		t.Fatalf("RecordTeaching failed: %v", err)
	}

	reloaded, err := Load(root, table)
	if err != nil {
		t.Fatalf("Failed to reload store: %v", err)
	}
	cat, confidence, ok := reloaded.Resolve(".xyz")
	if !ok || cat != "audio_files" || confidence != model.ConfidenceTeaching {
		t.Errorf("reloaded Resolve = (%q, %d, %v), want (audio_files, 80, true)", cat, confidence, ok)
	}
}

func TestLegacyBareMapLoads(t *testing.T) {
	root := t.TempDir()
	path := StorePath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("Failed to create store dir: %v", err)
	}
	legacy := []byte(`{".pdf": "document_files", ".xyz": "image_files"}`)
	if err := os.WriteFile(path, legacy, 0o600); err != nil {
		t.Fatalf("Failed to write legacy store: %v", err)
	}

	store, err := Load(root, category.NewTable())
	if err != nil {
		t.Fatalf("Failed to load legacy store: %v", err)
	}

	cat, confidence, ok := store.Resolve(".xyz")
	if !ok || cat != "image_files" {
		t.Fatalf("legacy entry did not resolve: (%q, %v)", cat, ok)
	}
	if confidence != model.ConfidenceLegacy {
		t.Errorf("legacy confidence = %d, want %d", confidence, model.ConfidenceLegacy)
	}
	entry, _ := store.Entry(".xyz")
	if entry.Source != model.SourceLegacy {
		t.Errorf("legacy source = %q, want %q", entry.Source, model.SourceLegacy)
	}
}

func TestCorruptStoreDegradesToDefaults(t *testing.T) {
	root := t.TempDir()
	path := StorePath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("Failed to create store dir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json at all"), 0o600); err != nil {
		t.Fatalf("Failed to write corrupt store: %v", err)
	}

	store, err := Load(root, category.NewTable())
	if err != nil {
		t.Fatalf("corrupt store must not fail the session: %v", err)
	}
	if _, ok := store.Entry(".pdf"); !ok {
		t.Error("corrupt store should rebuild default seeds")
	}
}

func TestSyncWithDefaultsRemovalRules(t *testing.T) {
	root := t.TempDir()

	// A table that used to define .old but no longer does.
	trimmed := category.NewTableWithDefinitions([]model.CategoryDefinition{
		{Key: "document_files", DisplayFolder: "Document Files", Extensions: []string{".pdf"}},
		{Key: category.KeyOther, DisplayFolder: "Other Files"},
	})

	store, err := Load(root, trimmed)
	if err != nil {
		t.Fatalf("Failed to load store: %v", err)
	}

	// Simulate a stale default-sourced entry and a user-taught entry for
	// extensions the table no longer defines.
	store.entries[".old"] = model.LearningEntry{Category: "document_files", Source: model.SourceDefault}
	store.entries[".taught"] = model.LearningEntry{Category: "document_files", Source: model.SourceUserTeaching, Confidence: 80}

	if err := store.SyncWithDefaults(); err != nil {
		t.Fatalf("SyncWithDefaults failed: %v", err)
	}

	if _, ok := store.Entry(".old"); ok {
		t.Error("stale default entry should be removed")
	}
	if _, ok := store.Entry(".taught"); !ok {
		t.Error("user-taught entry must never be auto-removed")
	}
	if _, ok := store.Entry(".pdf"); !ok {
		t.Error("table extension should be backfilled")
	}
}

func TestForgetRestoresDefaultSeed(t *testing.T) {
	store := loadTestStore(t)

	if err := store.RecordOverride(".pdf", "document_files", "image_files"); err != nil {
		t.Fatalf("RecordOverride failed: %v", err)
	}
	if err := store.Forget(".pdf"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}

	if _, _, ok := store.Resolve(".pdf"); ok {
		t.Error("forgotten extension should no longer resolve")
	}
	entry, ok := store.Entry(".pdf")
	if !ok || entry.Source != model.SourceDefault {
		t.Errorf("forgotten table extension should return to a default seed, got %+v", entry)
	}
}

func TestForgetUnknownExtension(t *testing.T) {
	store := loadTestStore(t)

	if err := store.Forget(".nope"); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Forget of unknown extension = %v, want ErrNotFound", err)
	}
}
