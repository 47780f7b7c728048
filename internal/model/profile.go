package model

// TargetFolderProfile describes one existing directory inside the target
// tree: where it is and which extensions its direct files carry. Profiles are
// built fresh per analysis call and never persisted.
type TargetFolderProfile struct {
	ExtensionCounts map[string]int
	RelativePath    string
	AbsolutePath    string
	Depth           int
}

// FileCount returns the number of direct files profiled in this folder.
func (p TargetFolderProfile) FileCount() int {
	total := 0
	for _, n := range p.ExtensionCounts {
		total += n
	}
	return total
}
