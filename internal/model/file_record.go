// Package model defines the pure data types shared across the organizer.
package model

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// FileRecord describes a single scanned file or folder. Records are created
// fresh on every scan pass; only ContentHash is filled in lazily.
type FileRecord struct {
	ModifiedAt  time.Time
	Path        string
	Name        string
	Extension   string
	ContentHash string
	SizeBytes   int64
	IsFolder    bool
}

// NewFileRecord builds a FileRecord from a directory entry. Path must be
// absolute. The extension is lowercased and keeps its leading dot; files
// without an extension get the empty string.
func NewFileRecord(path string, info fs.FileInfo) FileRecord {
	name := info.Name()
	ext := ""
	if !info.IsDir() {
		ext = strings.ToLower(filepath.Ext(name))
	}
	return FileRecord{
		Path:       path,
		Name:       name,
		SizeBytes:  info.Size(),
		ModifiedAt: info.ModTime(),
		Extension:  ext,
		IsFolder:   info.IsDir(),
	}
}

// FileFailure records a single per-file failure inside a batch operation.
// Batches are best-effort: failures are collected, never fatal to siblings.
type FileFailure struct {
	Path      string
	Operation string
	Cause     string
}
