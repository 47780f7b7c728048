package model

// DuplicateGroup holds files considered equivalent under the chosen grouping
// key. A group always has at least two members; its first member is the
// representative that gets placed normally.
type DuplicateGroup struct {
	Key     string
	Members []FileRecord
}

// Representative returns the member that stands in for the group in the
// placement plan.
func (g DuplicateGroup) Representative() FileRecord {
	return g.Members[0]
}
