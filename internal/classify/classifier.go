// Package classify resolves a file's destination category by consulting
// learned mappings, existing target folders, and the static category table,
// in that priority order.
package classify

import (
	"log/slog"
	"path/filepath"

	"github.com/Veraticus/the-files-must-flow/internal/category"
	"github.com/Veraticus/the-files-must-flow/internal/learning"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/target"
)

// Classifier assigns destinations within one target root.
type Classifier struct {
	table      *category.Table
	store      *learning.Store
	matcher    *target.Matcher
	profiles   []model.TargetFolderProfile
	targetRoot string
}

// New creates a classifier for one target root. The profiles come from a
// TargetFolderAnalyzer pass over the same root; store may be nil for purely
// default resolution.
func New(targetRoot string, table *category.Table, store *learning.Store, profiles []model.TargetFolderProfile) *Classifier {
	if table == nil {
		table = category.NewTable()
	}
	return &Classifier{
		targetRoot: targetRoot,
		table:      table,
		store:      store,
		matcher:    target.NewMatcher(table),
		profiles:   profiles,
	}
}

// Classify resolves the destination for one record.
//
// Resolution order: explicit past learning wins over everything else; an
// existing matching folder wins over creating a new one; the static table is
// the final fallback. Folders are never classified by extension — they route
// to a single fixed bucket and are handled by the planner's folder-move flow.
func (c *Classifier) Classify(record model.FileRecord) model.Placement {
	if record.IsFolder {
		return model.Placement{
			Record:      record,
			Category:    category.KeyOther,
			Destination: filepath.Join(c.targetRoot, model.FolderBucket),
			ResolvedBy:  model.ResolvedByDefault,
		}
	}

	if c.store != nil {
		if key, confidence, ok := c.store.Resolve(record.Extension); ok {
			def, _ := c.table.ByKey(key)
			slog.Debug("classified by learned mapping",
				"extension", record.Extension,
				"category", key,
				"confidence", confidence)
			return model.Placement{
				Record:      record,
				Category:    key,
				Destination: filepath.Join(c.targetRoot, def.DisplayFolder, def.SubfolderFor(record.Extension)),
				ResolvedBy:  model.ResolvedByLearning,
			}
		}
	}

	if path, ok := c.matcher.BestMatch(record.Extension, c.profiles); ok {
		key := category.KeyOther
		if def, found := c.table.ForExtension(record.Extension); found {
			key = def.Key
		}
		return model.Placement{
			Record:      record,
			Category:    key,
			Destination: path,
			ResolvedBy:  model.ResolvedByExistingFolder,
		}
	}

	def, found := c.table.ForExtension(record.Extension)
	if !found {
		// Ambiguity is not an error; unmatched extensions land in the
		// fallback category.
		slog.Debug("extension not in category table, using fallback",
			"extension", record.Extension,
			"name", record.Name)
		def = c.table.Other()
	}
	return model.Placement{
		Record:      record,
		Category:    def.Key,
		Destination: filepath.Join(c.targetRoot, def.DisplayFolder, def.SubfolderFor(record.Extension)),
		ResolvedBy:  model.ResolvedByDefault,
	}
}
