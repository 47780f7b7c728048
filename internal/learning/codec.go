package learning

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/the-files-must-flow/internal/common"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// storeVersion is the current on-disk document version.
const storeVersion = 2

// storeDocument is the canonical on-disk shape of the learning store.
type storeDocument struct {
	Entries   map[string]model.LearningEntry      `json:"entries"`
	Conflicts map[string][]model.ConflictRecord   `json:"conflicts,omitempty"`
	Version   int                                 `json:"version"`
}

// decodeStore parses a persisted learning store. Two shapes load: the
// canonical versioned document, and the legacy bare extension-to-category
// map, which imports as confidence 95 / source legacy. The variant decision
// is made once here; everything downstream sees one canonical
// representation.
func decodeStore(data []byte, loadedAt time.Time) (map[string]model.LearningEntry, map[string][]model.ConflictRecord, error) {
	var doc storeDocument
	if err := json.Unmarshal(data, &doc); err == nil && doc.Version >= 1 {
		if doc.Entries == nil {
			doc.Entries = make(map[string]model.LearningEntry)
		}
		if doc.Conflicts == nil {
			doc.Conflicts = make(map[string][]model.ConflictRecord)
		}
		return doc.Entries, doc.Conflicts, nil
	}

	var legacy map[string]string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrStoreCorrupted, err)
	}

	entries := make(map[string]model.LearningEntry, len(legacy))
	for ext, cat := range legacy {
		entries[ext] = model.LearningEntry{
			Category:   model.CategoryKey(cat),
			Confidence: model.ConfidenceLegacy,
			Source:     model.SourceLegacy,
			UpdatedAt:  loadedAt,
		}
	}
	return entries, make(map[string][]model.ConflictRecord), nil
}

// encodeStore serializes the canonical document.
func encodeStore(entries map[string]model.LearningEntry, conflicts map[string][]model.ConflictRecord) ([]byte, error) {
	doc := storeDocument{
		Version:   storeVersion,
		Entries:   entries,
		Conflicts: conflicts,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode learning store: %w", err)
	}
	return data, nil
}
