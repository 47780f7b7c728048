package cli

import (
	"context"

	"github.com/Veraticus/the-files-must-flow/internal/service"
)

// PresetDelegate answers every decision from a pre-resolved policy instead
// of prompting. Used for non-interactive runs.
type PresetDelegate struct {
	Duplicate service.DuplicateDecision
	Folder    service.FolderMoveDecision
}

// NewPresetDelegate builds a delegate with the given answers; empty values
// default to skipping duplicates and moving folders intact.
func NewPresetDelegate(duplicate service.DuplicateDecision, folder service.FolderMoveDecision) *PresetDelegate {
	if duplicate == "" {
		duplicate = service.DecisionSkipAll
	}
	if folder == "" {
		folder = service.MoveIntact
	}
	return &PresetDelegate{Duplicate: duplicate, Folder: folder}
}

// DecideDuplicate returns the preset duplicate policy.
func (d *PresetDelegate) DecideDuplicate(_ context.Context, _ string) (service.DuplicateDecision, error) {
	return d.Duplicate, nil
}

// DecideFolderMove returns the preset folder policy.
func (d *PresetDelegate) DecideFolderMove(_ context.Context, _ string) (service.FolderMoveDecision, error) {
	return d.Folder, nil
}
