// Package dedupe groups scanned files into duplicate sets under a
// configurable composite key.
package dedupe

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Veraticus/the-files-must-flow/internal/hashing"
	"github.com/Veraticus/the-files-must-flow/internal/model"
	"github.com/Veraticus/the-files-must-flow/internal/service"
)

// KeyPart selects one component of the grouping key.
type KeyPart string

const (
	// KeyName groups by file name.
	KeyName KeyPart = "name"
	// KeySize groups by file size.
	KeySize KeyPart = "size"
	// KeyHash groups by content hash.
	KeyHash KeyPart = "hash"
)

// ParseKeyParts converts a comma-separated list like "name,hash" into key
// parts.
func ParseKeyParts(s string) ([]KeyPart, error) {
	var parts []KeyPart
	for _, raw := range strings.Split(s, ",") {
		switch p := KeyPart(strings.TrimSpace(strings.ToLower(raw))); p {
		case KeyName, KeySize, KeyHash:
			parts = append(parts, p)
		case "":
		default:
			return nil, fmt.Errorf("unknown duplicate key part %q", raw)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("duplicate key needs at least one of name, size, hash")
	}
	return parts, nil
}

// Result is the partition produced by grouping: every input record appears in
// exactly one of Unique or a duplicate group. Files that could not be hashed
// stay in the unique set and are reported in Failures.
type Result struct {
	Unique   []model.FileRecord
	Groups   []model.DuplicateGroup
	Failures []model.FileFailure
}

// Detector partitions scanned records into unique files and duplicate groups.
type Detector struct {
	hasher   *hashing.Hasher
	progress service.ProgressSink
}

// New creates a detector. The progress sink may be nil.
func New(hasher *hashing.Hasher, progress service.ProgressSink) *Detector {
	if hasher == nil {
		hasher = hashing.New()
	}
	return &Detector{hasher: hasher, progress: progress}
}

// Group partitions records by the composite key built from parts. Hashes are
// computed on demand, once, and cached on the record for the scan's lifetime.
func (d *Detector) Group(ctx context.Context, records []model.FileRecord, parts []KeyPart) (*Result, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("duplicate key needs at least one part")
	}

	needHash := false
	for _, p := range parts {
		if p == KeyHash {
			needHash = true
		}
	}

	result := &Result{}
	keyed := make(map[string][]int)
	order := make([]string, 0, len(records))

	for i := range records {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if needHash && !records[i].IsFolder && records[i].ContentHash == "" {
			hash, err := d.hasher.Hash(ctx, records[i].Path)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				slog.Warn("failed to hash file for duplicate detection",
					"path", records[i].Path,
					"error", err)
				result.Failures = append(result.Failures, model.FileFailure{
					Path:      records[i].Path,
					Operation: "hash",
					Cause:     err.Error(),
				})
				result.Unique = append(result.Unique, records[i])
				d.report(i+1, len(records))
				continue
			}
			records[i].ContentHash = hash
		}

		key := d.buildKey(records[i], parts)
		if _, seen := keyed[key]; !seen {
			order = append(order, key)
		}
		keyed[key] = append(keyed[key], i)
		d.report(i+1, len(records))
	}

	for _, key := range order {
		indices := keyed[key]
		if len(indices) < 2 {
			result.Unique = append(result.Unique, records[indices[0]])
			continue
		}
		group := model.DuplicateGroup{Key: key}
		for _, i := range indices {
			group.Members = append(group.Members, records[i])
		}
		result.Groups = append(result.Groups, group)
	}

	slog.Debug("duplicate detection complete",
		"records", len(records),
		"unique", len(result.Unique),
		"groups", len(result.Groups),
		"failures", len(result.Failures))

	return result, nil
}

func (d *Detector) buildKey(record model.FileRecord, parts []KeyPart) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p {
		case KeyName:
			segments = append(segments, strings.ToLower(record.Name))
		case KeySize:
			segments = append(segments, strconv.FormatInt(record.SizeBytes, 10))
		case KeyHash:
			if record.IsFolder {
				// Folders have no content hash; their path keeps them unique.
				segments = append(segments, "dir:"+record.Path)
			} else {
				segments = append(segments, record.ContentHash)
			}
		}
	}
	return strings.Join(segments, "|")
}

func (d *Detector) report(processed, total int) {
	if d.progress == nil || total == 0 {
		return
	}
	d.progress.Progress(processed*100/total, processed, total)
}
