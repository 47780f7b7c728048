package model

// ResolutionSource indicates which resolver produced a placement.
type ResolutionSource string

const (
	// ResolvedByLearning means the learning store supplied the category.
	ResolvedByLearning ResolutionSource = "learning"
	// ResolvedByExistingFolder means a matching folder already existed in
	// the target tree; no new folder is created.
	ResolvedByExistingFolder ResolutionSource = "existing_folder"
	// ResolvedByDefault means the static category table supplied the
	// category.
	ResolvedByDefault ResolutionSource = "default"
)

// FolderBucket is the single fixed destination bucket for scanned folders.
// Folders are never classified by extension.
const FolderBucket = "Folders"

// Placement maps one scanned record to its destination.
type Placement struct {
	Record      FileRecord
	Category    CategoryKey
	Destination string
	ResolvedBy  ResolutionSource
}

// Plan is the full organization plan for one scanned set.
type Plan struct {
	TargetRoot      string
	SourceDir       string
	Placements      []Placement
	FolderRecords   []FileRecord
	DuplicateGroups []DuplicateGroup
	ScanFailures    []FileFailure
}
