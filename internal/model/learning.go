package model

import "time"

// LearningSource indicates how a learned mapping was created.
type LearningSource string

const (
	// SourceUserOverride indicates the user explicitly relocated a file into
	// a category that differed from the learned one.
	SourceUserOverride LearningSource = "user_override"
	// SourceUserReinforcement indicates the user's action agreed with the
	// existing learned category.
	SourceUserReinforcement LearningSource = "user_reinforcement"
	// SourceUserTeaching indicates a brand-new extension taught by the user.
	SourceUserTeaching LearningSource = "user_teaching"
	// SourceExistingScan indicates a mapping inferred from an existing
	// target tree.
	SourceExistingScan LearningSource = "existing_structure_scan"
	// SourceLegacy indicates an entry imported from a legacy bare-map store.
	SourceLegacy LearningSource = "legacy"
	// SourceDefault indicates a seeded default from the category table. It
	// carries no confidence and never wins over heuristics.
	SourceDefault LearningSource = "default"
)

// IsUserDriven reports whether the source represents an explicit user signal.
// User-driven entries are never auto-removed by default synchronization.
func (s LearningSource) IsUserDriven() bool {
	switch s {
	case SourceUserOverride, SourceUserReinforcement, SourceUserTeaching, SourceLegacy:
		return true
	default:
		return false
	}
}

// Confidence bounds and increments for learned mappings.
const (
	ConfidenceMax           = 100
	ConfidenceOverride      = 100
	ConfidenceTeaching      = 80
	ConfidenceThreshold     = 80
	ConfidenceLegacy        = 95
	ConfidenceReinforcement = 10
	ConfidenceScanMin       = 60
	ConfidenceScanMax       = 95
)

// LearningEntry is the learned mapping for one extension within one target
// root.
type LearningEntry struct {
	UpdatedAt  time.Time      `json:"updated_at"`
	Category   CategoryKey    `json:"category"`
	Source     LearningSource `json:"source"`
	Confidence int            `json:"confidence"`
}

// ConflictRecord notes a suggestion that disagreed with the learned mapping
// at the time it was observed. Conflicts are recorded, never auto-applied.
type ConflictRecord struct {
	RecordedAt time.Time      `json:"recorded_at"`
	Category   CategoryKey    `json:"category"`
	Source     LearningSource `json:"source"`
}
