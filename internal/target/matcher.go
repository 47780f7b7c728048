package target

import (
	"path/filepath"
	"strings"

	"github.com/Veraticus/the-files-must-flow/internal/category"
	"github.com/Veraticus/the-files-must-flow/internal/model"
)

// Matcher scores extension-to-existing-folder affinity.
type Matcher struct {
	table *category.Table
}

// NewMatcher creates a matcher backed by the given category table.
func NewMatcher(table *category.Table) *Matcher {
	if table == nil {
		table = category.NewTable()
	}
	return &Matcher{table: table}
}

// Scoring weights. A folder only wins outright when it holds the extension
// and its name matches the extension token; softer signals break ties but
// cannot clear the acceptance gate on their own.
const (
	scoreExactNameMatch  = 100
	scoreWeakCountFactor = 5
	scoreSiblingBonus    = 10
	scoreKeywordBonus    = 50
	scoreNameToken       = 100
	scoreManyFilesBonus  = 20
	scoreSomeFilesBonus  = 10
	acceptanceThreshold  = 100
)

// BestMatch returns the existing folder best suited for ext, or false when
// no folder passes the acceptance gate: the winner must both contain the
// extension and carry its token in the folder name. High keyword or sibling
// scores alone never qualify. Ties keep the first profile seen.
func (m *Matcher) BestMatch(ext string, profiles []model.TargetFolderProfile) (string, bool) {
	ext = strings.ToLower(ext)
	token := strings.TrimPrefix(ext, ".")
	if token == "" {
		return "", false
	}

	bestScore := 0
	bestPath := ""
	bestQualifies := false

	for _, profile := range profiles {
		score, qualifies := m.score(ext, token, profile)
		if score > bestScore {
			bestScore = score
			bestPath = profile.AbsolutePath
			bestQualifies = qualifies
		}
	}

	if bestScore < acceptanceThreshold || !bestQualifies {
		return "", false
	}
	return bestPath, true
}

func (m *Matcher) score(ext, token string, profile model.TargetFolderProfile) (int, bool) {
	name := strings.ToLower(filepath.Base(profile.AbsolutePath))
	nameMatches := strings.Contains(name, token)
	count := profile.ExtensionCounts[ext]

	score := 0
	if count > 0 {
		if nameMatches {
			score += count + scoreExactNameMatch
		} else {
			score += count * scoreWeakCountFactor
		}
	}

	if def, ok := m.table.ForExtension(ext); ok {
		for _, sibling := range def.Extensions {
			if sibling == ext {
				continue
			}
			if profile.ExtensionCounts[sibling] > 0 {
				score += scoreSiblingBonus
				break
			}
		}
		for _, keyword := range def.Keywords {
			if strings.Contains(name, keyword) {
				score += scoreKeywordBonus
				break
			}
		}
	}

	if nameMatches {
		score += scoreNameToken
	}

	switch files := profile.FileCount(); {
	case files > 10:
		score += scoreManyFilesBonus
	case files > 5:
		score += scoreSomeFilesBonus
	}

	return score, count > 0 && nameMatches
}
